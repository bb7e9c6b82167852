package config

import (
	"log"
	"os"

	"github.com/spf13/viper"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string
	}
	Database struct {
		DSN string `mapstructure:"dsn"` // "memory" or a SQLite file path
	}
	Catalog struct {
		Dir           string `mapstructure:"dir"`            // directory of sector catalog YAML files
		DefaultSector string `mapstructure:"default_sector"` // sector used when none is given
	}
}

// AppConfig is the global configuration instance.
var AppConfig Config

// LoadConfig loads configuration from config.yaml and environment variables.
// Every key has a default, so the service starts with no config file at all:
// in-memory database, built-in catalog only.
func LoadConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../config") // for running from locations like tests

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.dsn", "memory")
	viper.SetDefault("catalog.dir", "./catalogs")
	viper.SetDefault("catalog.default_sector", "general")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("WARN: [Config] Configuration file (config.yaml) not found. Using environment variables and defaults.")
		} else {
			log.Fatalf("FATAL: [Config] Error reading configuration file: %v", err)
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("FATAL: [Config] Failed to unmarshal configuration into AppConfig struct: %v", err)
	}

	// Environment variable overrides
	if port := os.Getenv("SERVER_PORT"); port != "" {
		AppConfig.Server.Port = port
		log.Printf("INFO: [Config] Server port overridden by environment variable SERVER_PORT: %s", port)
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		AppConfig.Database.DSN = dsn
		log.Println("INFO: [Config] Database DSN overridden by environment variable DATABASE_DSN.")
	}
	if dir := os.Getenv("CATALOG_DIR"); dir != "" {
		AppConfig.Catalog.Dir = dir
		log.Printf("INFO: [Config] Catalog directory overridden by environment variable CATALOG_DIR: %s", dir)
	}

	log.Println("INFO: [Config] Configuration loading complete.")
}
