package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	githubV3 "github.com/google/go-github/v48/github"
	"golang.org/x/oauth2"
)

// ErrNoToken is returned when publishing without a GitHub token.
var ErrNoToken = errors.New("publishing requires a GitHub token")

type api struct {
	clientV3 *githubV3.Client
	owner    string
	repo     string
	slog     *slog.Logger
}

func oauth2Client(ctx context.Context, accessToken string) *http.Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: accessToken},
	)
	return oauth2.NewClient(ctx, ts)
}

// NewApi returns a client that commits files to owner/repo.
func NewApi(ctx context.Context, owner, repo, accessToken string, lg *slog.Logger) (*api, error) {
	if accessToken == "" {
		return nil, ErrNoToken
	}
	if lg == nil {
		lg = slog.Default()
	}
	return &api{
		clientV3: githubV3.NewClient(oauth2Client(ctx, accessToken)),
		owner:    owner,
		repo:     repo,
		slog:     lg,
	}, nil
}

// Publish writes content to path on branch, creating or updating the file.
// It reports whether a commit was made; identical content is left alone.
func (a *api) Publish(ctx context.Context, branch, path string, content []byte) (bool, error) {
	existing, _, resp, err := a.clientV3.Repositories.GetContents(ctx, a.owner, a.repo, path,
		&githubV3.RepositoryContentGetOptions{Ref: branch})
	if err != nil && (resp == nil || resp.StatusCode != http.StatusNotFound) {
		return false, fmt.Errorf("get %s@%s: %w", path, branch, err)
	}

	opt := githubV3.RepositoryContentFileOptions{
		Message: githubV3.String("update " + path),
		Content: content,
		Branch:  githubV3.String(branch),
	}

	if existing != nil {
		current, err := existing.GetContent()
		if err != nil {
			return false, fmt.Errorf("decode %s@%s: %w", path, branch, err)
		}
		if bytes.Equal([]byte(current), content) {
			a.slog.Info("published file unchanged", "path", path, "branch", branch)
			return false, nil
		}
		opt.SHA = existing.SHA
		if _, _, err := a.clientV3.Repositories.UpdateFile(ctx, a.owner, a.repo, path, &opt); err != nil {
			return false, fmt.Errorf("update %s@%s: %w", path, branch, err)
		}
	} else {
		if _, _, err := a.clientV3.Repositories.CreateFile(ctx, a.owner, a.repo, path, &opt); err != nil {
			return false, fmt.Errorf("create %s@%s: %w", path, branch, err)
		}
	}

	a.slog.Info("published file", "repo", a.owner+"/"+a.repo, "path", path, "branch", branch)
	return true, nil
}
