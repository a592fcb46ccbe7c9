package main

import (
	"context"
	"database/sql"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sandevgo/verifid/internal/config"
	"github.com/sandevgo/verifid/internal/service/engine"
	"github.com/sandevgo/verifid/internal/service/policy"
	"github.com/sandevgo/verifid/internal/service/session"
	"github.com/sandevgo/verifid/internal/storage/sqlite"
	"github.com/sandevgo/verifid/internal/templatebank"
	"github.com/sandevgo/verifid/pkg/log"
)

// stack is the assembled engine with everything it owns.
type stack struct {
	cfg    *config.AppConfig
	db     *sql.DB
	engine *engine.Engine
}

func buildStack(ctx context.Context) (*stack, error) {
	logger := log.FromCtx(ctx)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return nil, err
	}

	cfg := config.NewAppConfig(ctx)

	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, err
	}

	history := sqlite.NewHistory(db)
	interactions := sqlite.NewInteractions(db)

	qtable := policy.NewQTable()
	model := policy.NewSuccessModel()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ordering := policy.NewOrdering(ctx, cfg, qtable, model, rng)

	eng := engine.NewEngine(
		templatebank.New(cfg.GetTemplateBankPath()),
		history,
		interactions,
		session.NewMemory(),
		qtable,
		model,
		ordering,
	)

	// Replay past outcomes so the learned tables survive restarts. Serving
	// works fine without them, so a failure only warns.
	if err := eng.Retrain(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to retrain from interaction log")
	}

	return &stack{cfg: cfg, db: db, engine: eng}, nil
}

func (s *stack) Close() error {
	return s.db.Close()
}

func initEnv(ctx context.Context, runtimePath string) error {
	if err := os.MkdirAll(runtimePath, 0755); err != nil {
		return err
	}

	envPath := filepath.Join(runtimePath, ".env")
	if err := godotenv.Load(envPath); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		log.FromCtx(ctx).Debug().Str("path", envPath).Msg("no .env file, using environment")
	}
	return nil
}
