package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// CommandRunner runs an external command and returns its standard output.
// Tests substitute a fake so no real gh binary is needed.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner is the os/exec implementation of CommandRunner.
type ExecRunner struct{}

// Run executes name with args. Stderr is kept only for the error message.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return out, fmt.Errorf("%s: %w: %s", name, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return out, nil
}

// GHCLITransport queries GitHub through the gh CLI, reusing whatever
// credentials gh already holds.
type GHCLITransport struct {
	runner  CommandRunner
	path    string
	timeout time.Duration
	slog    *slog.Logger
}

// NewGHCLITransport returns a transport running the gh binary at path.
func NewGHCLITransport(runner CommandRunner, path string, timeout time.Duration, lg *slog.Logger) *GHCLITransport {
	if path == "" {
		path = "gh"
	}
	if lg == nil {
		lg = slog.Default()
	}
	return &GHCLITransport{
		runner:  runner,
		path:    path,
		timeout: timeout,
		slog:    lg,
	}
}

func (*GHCLITransport) Name() string { return "gh" }

// Fetch probes "gh auth status" before running the query, so a missing or
// logged-out gh reports ErrUnavailable without touching the network.
func (t *GHCLITransport) Fetch(ctx context.Context, owner, repo string) (*queryData, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	if _, err := t.runner.Run(ctx, t.path, "auth", "status"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	out, err := t.runner.Run(ctx, t.path,
		"api", "graphql",
		"-f", "query="+discussionsQuery,
		"-f", "owner="+owner,
		"-f", "repo="+repo,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	t.slog.Debug("gh api graphql returned", "bytes", len(out))

	return decodeEnvelope(out)
}
