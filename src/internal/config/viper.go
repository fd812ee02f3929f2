package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// NewViper reads config.json from the working directory when present and
// lets environment variables override every key.
func NewViper() *viper.Viper {
	config := viper.New()

	config.SetConfigName("config")
	config.SetConfigType("json")
	config.AddConfigPath("./")
	config.AddConfigPath("./../")
	_ = config.ReadInConfig()

	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()

	return config
}

func NewValidator(v *viper.Viper) *validator.Validate {
	return validator.New()
}
