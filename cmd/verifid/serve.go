package main

import (
	"os"
	"os/signal"

	"github.com/sandevgo/verifid/internal/dataset"
	"github.com/sandevgo/verifid/internal/transport/web"
	"github.com/sandevgo/verifid/pkg/log"
	"github.com/sandevgo/verifid/pkg/srv"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the verification web server",
	Long:  `Loads the employee dataset and template bank and serves the browser verification flow.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting verifid")

		stack, err := buildStack(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize")
		}

		records, err := dataset.Load(stack.cfg.GetDatasetPath())
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load employee dataset")
		}
		logger.Info().Int("records", records.Len()).Msg("employee dataset loaded")

		services := []srv.Service{
			web.NewServer(ctx, stack.cfg, stack.engine, records),
			srv.NewCleanup(stack.Close),
		}

		srv.StartServices(ctx, services)
		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("verifid has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
