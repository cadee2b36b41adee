package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env-default:"8080"`
	Redis      Redis  `yaml:"redis"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

// Game holds the gameplay tuning values. Distances are thresholds the
// proximity engine evaluates against, in meters.
type Game struct {
	MinPlayers            int     `yaml:"min-players" env-default:"4"`
	TagDistanceMeters     float64 `yaml:"tag-distance-meters" env-default:"15"`
	WarningDistanceMeters float64 `yaml:"warning-distance-meters" env-default:"50"`
	ReconnectGraceSeconds int     `yaml:"reconnect-grace-seconds" env-default:"60"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
