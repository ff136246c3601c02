package util

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config stores the runtime settings of the wikitext CLI.
// The values are read by viper from app.env in the config path, with
// environment variables taking precedence over the file.
type Config struct {
	Environment      string `mapstructure:"ENVIRONMENT" validate:"oneof=development staging production"`
	LogLevel         string `mapstructure:"LOG_LEVEL" validate:"oneof=trace debug info warn error"`
	OutputFormat     string `mapstructure:"OUTPUT_FORMAT" validate:"oneof=text yaml"`
	CheckConcurrency int    `mapstructure:"CHECK_CONCURRENCY" validate:"min=1,max=256"`
}

// LoadConfig reads configuration from app.env in path, falling back to the
// defaults when no file exists. A file that cannot be parsed or a config
// that fails validation is an error.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("OUTPUT_FORMAT", "text")
	v.SetDefault("CHECK_CONCURRENCY", 8)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		// the config file is optional
		err = nil
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	err = config.Validate()
	return
}

// Validate checks the config against its struct tags.
func (config *Config) Validate() error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}
