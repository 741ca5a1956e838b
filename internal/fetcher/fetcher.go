package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"discussioncomments/entities"
)

// Transport is one way of running the discussions query.
// Fetch returns validated data or an error; callers treat every error
// as "try the next transport".
type Transport interface {
	Name() string
	Fetch(ctx context.Context, owner, repo string) (*queryData, error)
}

// DefaultTransports is the order used when none is configured.
var DefaultTransports = []string{"gh", "http"}

// Config selects and configures transports.
type Config struct {
	// Token is an optional GitHub token for the network transports.
	Token      string
	Endpoint   string
	Timeout    time.Duration
	CLITimeout time.Duration
	GHPath     string
	// Transports names the transports to try, in order.
	Transports []string
	// Runner runs the gh binary; nil means ExecRunner.
	Runner CommandRunner
}

// Fetcher tries its transports in order until one returns data.
type Fetcher struct {
	transports []Transport
	slog       *slog.Logger
}

// New builds a Fetcher from cfg. It fails only on an unknown transport name.
func New(cfg Config, lg *slog.Logger) (*Fetcher, error) {
	names := cfg.Transports
	if len(names) == 0 {
		names = DefaultTransports
	}
	if lg == nil {
		lg = slog.Default()
	}
	runner := cfg.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	var ts []Transport
	for _, name := range names {
		switch name {
		case "gh":
			ts = append(ts, NewGHCLITransport(runner, cfg.GHPath, cfg.CLITimeout, lg))
		case "http":
			ts = append(ts, NewHTTPTransport(cfg.Endpoint, cfg.Token, cfg.Timeout, lg))
		case "githubv4":
			ts = append(ts, NewGitHubV4Transport(cfg.Endpoint, cfg.Token, cfg.Timeout, lg))
		default:
			return nil, fmt.Errorf("unknown transport %q", name)
		}
	}
	return NewWithTransports(lg, ts...), nil
}

// NewWithTransports returns a Fetcher trying ts in the given order.
func NewWithTransports(lg *slog.Logger, ts ...Transport) *Fetcher {
	if lg == nil {
		lg = slog.Default()
	}
	return &Fetcher{
		transports: ts,
		slog:       lg,
	}
}

// FetchDiscussionData returns the discussions of owner/repo keyed by number.
// It never fails: if every transport fails the result is an empty map.
func (f *Fetcher) FetchDiscussionData(ctx context.Context, owner, repo string) entities.Discussions {
	for _, t := range f.transports {
		data, err := tryFetch(ctx, t, owner, repo)
		if err != nil {
			f.slog.Debug("transport failed, trying next", "transport", t.Name(), "err", err)
			continue
		}
		discussions := Normalize(data)
		f.slog.Info("fetched discussion comments",
			"transport", t.Name(),
			"discussions", len(discussions),
			"repo", owner+"/"+repo)
		return discussions
	}

	f.slog.Warn("no discussion data available, continuing with empty result", "repo", owner+"/"+repo)
	return entities.Discussions{}
}

// tryFetch turns a panicking transport into an ordinary failure.
func tryFetch(ctx context.Context, t Transport, owner, repo string) (data *queryData, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("%s transport panicked: %v", t.Name(), r)
		}
	}()
	return t.Fetch(ctx, owner, repo)
}
