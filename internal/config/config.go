package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP server
	Port string

	// Database
	DataBackend string
	DBPath      string

	// AMQP (optional; empty URL disables event publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Demo user, created on first run if absent
	DemoUsername string
	DemoEmail    string
	DemoPassword string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		DataBackend: getEnv("DATA_BACKEND", "sqlite"),
		DBPath:      getEnv("DATABASE_PATH", "./data/pennywise.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "pennywise"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_events"),

		DemoUsername: getEnv("DEMO_USERNAME", "demo_user"),
		DemoEmail:    getEnv("DEMO_EMAIL", "demo@example.com"),
		DemoPassword: getEnv("DEMO_PASSWORD", "password"),
	}
}

// Validate checks the configuration and returns an error listing every problem.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.DBPath == "" {
			problems = append(problems, "database path cannot be empty when using sqlite backend")
		}
	case "memory":
		// Nothing to check.
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of [sqlite memory]", c.DataBackend))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.DemoUsername == "" {
		problems = append(problems, "demo username cannot be empty")
	}
	if !strings.Contains(c.DemoEmail, "@") {
		problems = append(problems, fmt.Sprintf("invalid demo email '%s'", c.DemoEmail))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
