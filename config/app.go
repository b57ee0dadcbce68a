package config

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	GatewayURL  string `env:"PAYMENT_GATEWAY_URL"`
	GatewayKey  string `env:"PAYMENT_GATEWAY_KEY"`
	Env         string `env:"APP_ENV" default:"dev"`
}
