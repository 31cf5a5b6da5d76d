package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/datasynth-backend/internal/app"
)

func newServeCmd() *cobra.Command {
	var tagMap string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (SSE generation stream and dataset downloads)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, app.Options{ConfigPath: configFile, TagMapPath: tagMap})
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				a.Close(closeCtx)
			}()
			return a.Serve(ctx)
		},
	}
	cmd.Flags().StringVar(&tagMap, "tag-map", "", "JSON or YAML tag map (defaults to TAG_MAP_PATH or the embedded map)")
	return cmd
}
