package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/verifid/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"VERIFID_RUNTIME_PATH" envDefault:".verifid"`

	// Reference data. Empty values resolve to defaults under RuntimePath.
	TemplateBankPath string `env:"VERIFID_TEMPLATE_BANK"`
	DatasetPath      string `env:"VERIFID_DATASET"`

	// Question selection
	QuestionCount int     `env:"VERIFID_QUESTION_COUNT" envDefault:"3"`
	Policy        string  `env:"VERIFID_POLICY" envDefault:"shuffle"`
	Exploration   float64 `env:"VERIFID_EXPLORATION" envDefault:"0.1"`

	// Web transport
	ListenAddr string `env:"VERIFID_LISTEN_ADDR" envDefault:":8080"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse app config")
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "verifid.db")
}

func (c AppConfig) GetTemplateBankPath() string {
	if c.TemplateBankPath != "" {
		return c.TemplateBankPath
	}
	return filepath.Join(c.RuntimePath, "templates_bank.json")
}

func (c AppConfig) GetDatasetPath() string {
	if c.DatasetPath != "" {
		return c.DatasetPath
	}
	return filepath.Join(c.RuntimePath, "employees.json")
}
