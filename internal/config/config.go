/**
 * @description
 * This file handles configuration management for the membership-service.
 * It uses the 'viper' library to load configuration from environment
 * variables, with a local .env file loaded first when present.
 */
package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort         string `mapstructure:"SERVER_PORT"`
	DatabaseURL        string `mapstructure:"DATABASE_URL"`
	AMQPURL            string `mapstructure:"AMQP_URL"`
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	ExpiryHorizonDays  int    `mapstructure:"EXPIRY_HORIZON_DAYS"`
	ExpiryScanSchedule string `mapstructure:"EXPIRY_SCAN_SCHEDULE"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("EXPIRY_HORIZON_DAYS", 7)
	viper.SetDefault("EXPIRY_SCAN_SCHEDULE", "0 8 * * *") // Daily at 08:00.
	viper.AutomaticEnv()

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("AMQP_URL")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("EXPIRY_HORIZON_DAYS")
	_ = viper.BindEnv("EXPIRY_SCAN_SCHEDULE")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
