// Package config provides configuration management for the texture daemon.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Defaults come from struct tags, so adding a setting
// means adding a field.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP status server settings (port, API key)
//   - Assets: asset root, overlay directories and the cache directory
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
