package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del bot.
type Config struct {
	TelegramToken string `env:"TELEGRAM_BOT_TOKEN,required"`
	DatabaseURL   string `env:"DATABASE_URL,required"`
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`

	LLMAPIKey         string `env:"LLM_API_KEY"`
	LLMBaseURL        string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel          string `env:"LLM_MODEL" envDefault:"gpt-4o"`
	LLMTimeoutSeconds int    `env:"LLM_TIMEOUT_SECONDS" envDefault:"30"`

	CascadeDir string `env:"CASCADE_DIR" envDefault:"/usr/share/opencv4/haarcascades"`

	RateLimitWindowSeconds int   `env:"RATE_LIMIT_WINDOW_SECONDS" envDefault:"60"`
	RateLimitMaxRequests   int   `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"5"`
	MaxImageSizeBytes      int64 `env:"MAX_IMAGE_SIZE_BYTES" envDefault:"10485760"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	ZarinpalMerchantID  string `env:"ZARINPAL_MERCHANT_ID"`
	ZarinpalSandbox     bool   `env:"ZARINPAL_SANDBOX" envDefault:"true"`
	ZarinpalCallbackURL string `env:"ZARINPAL_CALLBACK_URL"`
	VipPriceToman       int    `env:"VIP_PRICE_TOMAN" envDefault:"100000"`
	VipDays             int    `env:"VIP_DAYS" envDefault:"30"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
