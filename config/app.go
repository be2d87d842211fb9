package config

type App struct {
	Port            string `env:"APP_PORT" default:"8080"`
	DatabaseURL     string `env:"DATABASE_URL,required"`
	Env             string `env:"APP_ENV" default:"dev"`
	AllowedLoanDays int    `env:"ALLOWED_LOAN_DAYS" default:"14"`
}
