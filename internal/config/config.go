package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AuthConfig struct {
	// Secrets come from the environment (TOKEN_SECRET, HMAC_CODE_SECRET),
	// never from the yaml file, and are passed into constructors explicitly.
	TokenSecret string `yaml:"-"`
	CodeSecret  string `yaml:"-"`
}

type Config struct {
	Server struct {
		Port          int  `yaml:"port"`
		SecureCookies bool `yaml:"secure_cookies"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Auth AuthConfig `yaml:"-"`
}

func LoadConfig() *Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	f, err := os.Open("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	cfg.Auth.TokenSecret = os.Getenv("TOKEN_SECRET")
	cfg.Auth.CodeSecret = os.Getenv("HMAC_CODE_SECRET")
	if cfg.Auth.TokenSecret == "" {
		panic("TOKEN_SECRET is required")
	}
	if cfg.Auth.CodeSecret == "" {
		panic("HMAC_CODE_SECRET is required")
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	return &cfg
}
