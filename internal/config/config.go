// Package config loads the application configuration.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	DB struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"db"`
	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
	Cache struct {
		Size int           `mapstructure:"size"`
		TTL  time.Duration `mapstructure:"ttl"`
	} `mapstructure:"cache"`
	Auth struct {
		// APIKeys maps API keys to the organization id they identify.
		APIKeys map[string]string `mapstructure:"api_keys"`
	} `mapstructure:"auth"`
	TLS struct {
		Enable    bool          `mapstructure:"enable"`
		CertFile  string        `mapstructure:"cert_file"`
		KeyFile   string        `mapstructure:"key_file"`
		Hostnames []string      `mapstructure:"hostnames"`
		ValidFor  time.Duration `mapstructure:"valid_for"`
	} `mapstructure:"tls"`
}

// LoadConfig loads the configuration from a file and the environment.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}
	viper.SetEnvPrefix("PROFILED")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("cache.size", 1024)
	viper.SetDefault("cache.ttl", time.Minute)

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine; defaults and environment cover it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
