package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"discussioncomments/core"
	"discussioncomments/entities"
	"discussioncomments/internal/config"
	"discussioncomments/internal/fetcher"
	"discussioncomments/internal/server"
	"discussioncomments/internal/utils"
)

// listenAndServe is replaced in tests.
var listenAndServe = http.ListenAndServe

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	slog    *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "discussions",
		Short:         "Fetch GitHub Discussion comments as site build data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.slog = newLogger(cmd.ErrOrStderr(), cfg.LogLevel())
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is config.yaml)")
	flags.String("owner", "", "repository owner")
	flags.String("repo", "", "repository name")
	flags.String("out", "", "output JSON file")
	_ = a.v.BindPFlag("github.owner", flags.Lookup("owner"))
	_ = a.v.BindPFlag("github.repo", flags.Lookup("repo"))
	_ = a.v.BindPFlag("output.path", flags.Lookup("out"))

	rootCmd.AddCommand(a.fetchCmd(), a.serveCmd())
	return rootCmd
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// fetch never fails; an unreachable GitHub yields an empty result.
func (a *app) fetch(ctx context.Context) (entities.Discussions, error) {
	f, err := fetcher.New(a.cfg.FetcherConfig(), a.slog)
	if err != nil {
		return nil, err
	}
	return f.FetchDiscussionData(ctx, a.cfg.Github.Owner, a.cfg.Github.Repo), nil
}

func (a *app) fetchCmd() *cobra.Command {
	var publish bool
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch discussion comments and write them as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			discussions, err := a.fetch(ctx)
			if err != nil {
				return err
			}

			comments, replies := discussions.Count()
			fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d discussions, %d comments, %d replies\n",
				len(discussions), comments, replies)

			path := a.cfg.Output.Path
			if err := utils.WriteJSON(path, discussions); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)

			if !publish {
				return nil
			}
			content, err := utils.ToJSON(discussions)
			if err != nil {
				return err
			}
			api, err := core.NewApi(ctx, a.cfg.Github.Owner, a.cfg.Github.Repo, a.cfg.Github.Token, a.slog)
			if err != nil {
				return err
			}
			if _, err := api.Publish(ctx, a.cfg.Publish.Branch, path, content); err != nil {
				return fmt.Errorf("publish: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&publish, "publish", false, "commit the JSON file to the publish branch")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Fetch discussion comments once and serve them locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			discussions, err := a.fetch(cmd.Context())
			if err != nil {
				return err
			}
			h := server.NewHandler(discussions, a.slog)
			fmt.Fprintf(cmd.OutOrStdout(), "Serving %d discussions at http://localhost%s/discussions\n", len(discussions), addr)
			return listenAndServe(addr, h.Router())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}
