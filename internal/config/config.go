package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"

	OpponentComputer = "computer"
	OpponentNone     = "none"
)

var (
	ErrUnknownStore    = errors.New("unknown session store")
	ErrUnknownOpponent = errors.New("unknown opponent")
)

type Config struct {
	LogLevel   string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string  `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string  `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	BasePath   string  `yaml:"base-path" env:"BASE_PATH" env-default:"/tic-tac-toe/api"`
	Redis      Redis   `yaml:"redis"`
	Session    Session `yaml:"session"`
	Game       Game    `yaml:"game"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Session struct {
	Store      string        `yaml:"store" env:"SESSION_STORE" env-default:"redis"`
	TTL        time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"24h"`
	CookieName string        `yaml:"cookie-name" env:"SESSION_COOKIE_NAME" env-default:"tictactoe_session"`
}

type Game struct {
	Opponent string `yaml:"opponent" env:"GAME_OPPONENT" env-default:"computer"`
}

// Load - loads the configuration from the YAML file at path overlaid by environment
// variables. A missing file is not an error: only the environment and defaults are used.
func Load(path string) (*Config, error) {
	config := &Config{}

	var err error
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		err = cleanenv.ReadEnv(config)
	} else {
		err = cleanenv.ReadConfig(path, config)
	}

	if err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err = config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) validate() error {
	switch that.Session.Store {
	case StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, that.Session.Store)
	}

	switch that.Game.Opponent {
	case OpponentComputer, OpponentNone:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOpponent, that.Game.Opponent)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Game) WithComputer() bool {
	return that.Opponent == OpponentComputer
}
