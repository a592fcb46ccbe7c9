package main

import (
	"github.com/sandevgo/verifid/pkg/log"
	"github.com/spf13/cobra"
)

var retrainCmd = &cobra.Command{
	Use:   "retrain",
	Short: "Rebuild learned selection state from the interaction log",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		stack, err := buildStack(ctx)
		if err != nil {
			log.FromCtx(ctx).Fatal().Err(err).Msg("failed to initialize")
		}
		defer stack.Close()

		// buildStack already retrains; doing it again here surfaces errors
		// instead of downgrading them to a warning.
		return stack.engine.Retrain(ctx)
	},
}

func init() {
	rootCmd.AddCommand(retrainCmd)
}
