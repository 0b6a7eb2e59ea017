package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidPort          = errors.New("server port must be in range 1..65535")
	ErrNegativeDelay        = errors.New("opponent delay must not be negative")
	ErrInvalidSessionTTL    = errors.New("session ttl must be positive")
	ErrInvalidCleanupPeriod = errors.New("cleanup period must be positive")
)

type ServerConfig struct {
	Host string `yaml:"host" env:"SERVER_HOST"`
	Port int    `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GameConfig.Seed feeds the opponent's random choice, zero seeds it from
// the clock.
type GameConfig struct {
	OpponentDelay time.Duration `yaml:"opponent_delay" env:"OPPONENT_DELAY" env-default:"250ms"`
	Seed          uint64        `yaml:"seed" env:"RANDOM_SEED"`
	SessionTTL    time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"30m"`
	CleanupPeriod time.Duration `yaml:"cleanup_period" env:"CLEANUP_PERIOD" env-default:"1m"`
}

type config struct {
	LogLevel string       `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Server   ServerConfig `yaml:"server"`
	Game     GameConfig   `yaml:"game"`
}

// New reads the YAML file at cfgPath, if any, then applies environment
// overrides and defaults for unset fields.
func New(cfgPath string) (config, error) {
	cfg := config{}
	if cfgPath != "" {
		if err := readFile(cfgPath, &cfg); err != nil {
			return config{}, err
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return config{}, errors.WithMessage(err, "read environment")
	}
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func readFile(cfgPath string, cfg *config) error {
	file, err := os.Open(cfgPath)
	if err != nil {
		return errors.WithMessage(err, "open config file")
	}
	defer func() {
		_ = file.Close()
	}()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return errors.WithMessagef(err, "decode config file '%s'", cfgPath)
	}
	return nil
}

func (c config) validate() error {
	switch {
	case c.Server.Port < 1 || c.Server.Port > 65535:
		return ErrInvalidPort
	case c.Game.OpponentDelay < 0:
		return ErrNegativeDelay
	case c.Game.SessionTTL <= 0:
		return ErrInvalidSessionTTL
	case c.Game.CleanupPeriod <= 0:
		return ErrInvalidCleanupPeriod
	}
	return nil
}
