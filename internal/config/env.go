package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Env holds all runtime configuration, filled from the process environment.
type Env struct {
	AppAddr string `envconfig:"APP_ADDR" default:":8080"`
	GinMode string `envconfig:"GIN_MODE" default:"debug"`

	DBUser string `envconfig:"DB_USER" default:"root"`
	DBPass string `envconfig:"DB_PASS" default:""`
	DBHost string `envconfig:"DB_HOST" default:"127.0.0.1:3306"`
	DBName string `envconfig:"DB_NAME" default:"carpool"`

	JWTSecret string `envconfig:"JWT_SECRET" default:"dev-secret"`
	JobToken  string `envconfig:"JOB_TOKEN" default:""`

	AMQPURL        string `envconfig:"AMQP_URL" default:""`
	NotifyExchange string `envconfig:"NOTIFY_EXCHANGE" default:"carpool.events"`

	PendingTTLHours int `envconfig:"PENDING_TTL_HOURS" default:"48"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

func LoadEnv() (Env, error) {
	var e Env
	if err := envconfig.Process("", &e); err != nil {
		return Env{}, err
	}
	return e, nil
}

// DSN builds the MySQL connection string with the timeout and charset
// parameters the driver needs for stable long-lived pools.
func (e Env) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
		e.DBUser, e.DBPass, e.DBHost, e.DBName)
}
