package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// JaegerConfig ...
type JaegerConfig struct {
	Endpoint   string  `mapstructure:"endpoint"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

// Config ...
type Config struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Log      LogConfig      `mapstructure:"log"`
	Jaeger   JaegerConfig   `mapstructure:"jaeger"`
}

// Load loads config.yml from the working directory, with env overrides
func Load() Config {
	return loadFromFile("config.yml")
}

// LoadTestConfig loads config_test.yml from the module root
func LoadTestConfig(rootDir string) Config {
	return loadFromFile(filepath.Join(rootDir, "config_test.yml"))
}

func loadFromFile(file string) Config {
	vip := viper.New()
	vip.SetConfigFile(file)
	vip.SetEnvPrefix("eventstore")
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vip.AutomaticEnv()

	if err := vip.ReadInConfig(); err != nil {
		panic(err)
	}

	var conf Config
	if err := vip.Unmarshal(&conf); err != nil {
		panic(err)
	}
	return conf
}
