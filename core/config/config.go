package config

import (
	"path/filepath"
	"reflect"
	"strings"

	"texture-manager/core/logger"
	"texture-manager/core/server"
	"texture-manager/core/vfs"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP status server.
	Server server.Config `mapstructure:"server"`
	// Assets holds configuration for the layered asset filesystem.
	Assets vfs.Config `mapstructure:"assets"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
}

// LoadConfig loads configuration from environment variables and a .env file
// under path.
func LoadConfig(path string) (*Config, error) {
	// Missing .env is fine, production sets real environment variables.
	_ = godotenv.Overload(filepath.Join(path, ".env"))

	v := viper.New()

	// Walk the struct tags to register defaults for every key.
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values
// in Viper based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set the default (even if empty) to register the key for
		// AutomaticEnv.
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
