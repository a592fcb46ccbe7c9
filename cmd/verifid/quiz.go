package main

import (
	"github.com/sandevgo/verifid/internal/transport/cli"
	"github.com/sandevgo/verifid/pkg/log"
	"github.com/spf13/cobra"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Run an interactive terminal verification",
	Long:  `Collects an employee record from the terminal, asks the generated questions and grades the answers in place.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		stack, err := buildStack(ctx)
		if err != nil {
			log.FromCtx(ctx).Fatal().Err(err).Msg("failed to initialize")
		}
		defer func() {
			if err := stack.Close(); err != nil {
				log.FromCtx(ctx).Error().Err(err).Msg("failed to close storage")
			}
		}()

		return cli.NewQuiz(stack.cfg, stack.engine).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(quizCmd)
}
