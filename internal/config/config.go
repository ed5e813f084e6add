/**
 * @description
 * This package handles the configuration management for the service. It uses
 * the Viper library to read configuration from environment variables,
 * providing a centralized and straightforward way to manage application
 * settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the banking-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort           string `mapstructure:"SERVER_PORT"`
	JWTSecret            string `mapstructure:"JWT_SECRET"`
	DefaultCurrency      string `mapstructure:"DEFAULT_CURRENCY"`
	RabbitMQURL          string `mapstructure:"RABBITMQ_URL"`
	RedisURL             string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	StepRateLimitPerMin  int    `mapstructure:"STEP_RATE_LIMIT_PER_MINUTE"`
	BrevoAPIKey          string `mapstructure:"BREVO_API_KEY"`
	BrevoBaseURL         string `mapstructure:"BREVO_BASE_URL"`
	BrevoSenderName      string `mapstructure:"BREVO_SENDER_NAME"`
	BrevoSenderEmail     string `mapstructure:"BREVO_SENDER_EMAIL"`
	SeedDemoData         bool   `mapstructure:"SEED_DEMO_DATA"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("DEFAULT_CURRENCY", "EUR")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "euronova:rate_limit")
	viper.SetDefault("STEP_RATE_LIMIT_PER_MINUTE", 30)
	viper.SetDefault("BREVO_SENDER_NAME", "EuroNova")
	viper.SetDefault("BREVO_SENDER_EMAIL", "noreply@euronova-bank.com")
	viper.SetDefault("SEED_DEMO_DATA", true)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("DEFAULT_CURRENCY")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("STEP_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("BREVO_API_KEY")
	_ = viper.BindEnv("BREVO_BASE_URL")
	_ = viper.BindEnv("BREVO_SENDER_NAME")
	_ = viper.BindEnv("BREVO_SENDER_EMAIL")
	_ = viper.BindEnv("SEED_DEMO_DATA")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	// Hosting platforms commonly inject the listen port as PORT.
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}

	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "euronova:rate_limit"
	}
	if config.StepRateLimitPerMin <= 0 {
		config.StepRateLimitPerMin = 30
	}
	if strings.TrimSpace(config.DefaultCurrency) == "" {
		config.DefaultCurrency = "EUR"
	}

	return
}
