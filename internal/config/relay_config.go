package config

import "os"

// RelayConfig holds configuration for the notification relay process.
type RelayConfig struct {
	DatabaseURL           string
	RabbitMQURL           string
	NotificationQueueName string
	HealthAddr            string
	LogLevel              string
	Env                   string
}

func LoadRelayConfig() *RelayConfig {
	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		panic("DB_CONNECTION_STRING environment variable is required")
	}

	rabbitURL := os.Getenv("RABBITMQ_URL")
	if rabbitURL == "" {
		panic("RABBITMQ_URL environment variable is required")
	}

	return &RelayConfig{
		DatabaseURL:           dbURL,
		RabbitMQURL:           rabbitURL,
		NotificationQueueName: getEnv("NOTIFICATION_QUEUE_NAME", "notifications"),
		HealthAddr:            getEnv("RELAY_HEALTH_ADDR", ":8090"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		Env:                   getEnv("ENV", "development"),
	}
}
