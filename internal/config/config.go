package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Search struct {
		// Seed drives every random draw of a suggestion run unless the
		// request overrides it.
		Seed int64 `env:"SEARCH_SEED" envDefault:"1"`
		// PlateauWalkSteps bounds moves between equal-scoring neighbors
		// during local search.
		PlateauWalkSteps int `env:"SEARCH_PLATEAU_WALK_STEPS" envDefault:"10"`
		// MaxIterations caps the steps of a single local-search climb.
		// Zero means no cap.
		MaxIterations int `env:"SEARCH_MAX_ITERATIONS" envDefault:"0"`
		// DefaultNumPoints is used when a request does not say how many
		// challengers it wants.
		DefaultNumPoints int `env:"SEARCH_DEFAULT_NUM_POINTS" envDefault:"20"`
		// IDWPower is the distance exponent of the built-in predictor.
		IDWPower float64 `env:"SEARCH_IDW_POWER" envDefault:"2"`
		// EIXi is the exploration parameter of expected improvement.
		EIXi float64 `env:"SEARCH_EI_XI" envDefault:"0.01"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Development runs default to debug logging.
	if cfg.Environment == "development" && cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}

	return cfg, nil
}
