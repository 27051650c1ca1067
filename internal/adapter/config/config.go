package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Database *Database
	HTTP     *HTTP
	Daraja   *Daraja
	App      *App
}

const AppModeProduction = "PROD"
const AppModeDevelop = "DEV"

type App struct {
	LogLevel  string `env:"LOG_LEVEL"`
	Mode      string
	MinAmount string `env:"MIN_AMOUNT"`
	StaticDir string `env:"STATIC_DIR"`
}

type Database struct {
	DSN string `env:"DATABASE_URI"`
}

type HTTP struct {
	HostString string `env:"RUN_ADDRESS"`
}

type Daraja struct {
	APIHost        string `env:"DARAJA_API_HOST"`
	ConsumerKey    string `env:"DARAJA_CONSUMER_KEY"`
	ConsumerSecret string `env:"DARAJA_CONSUMER_SECRET"`
	ShortCode      string `env:"DARAJA_SHORT_CODE"`
	Passkey        string `env:"DARAJA_PASSKEY"`
	CallbackURL    string `env:"CALLBACK_URL"`
}

func NewConfig() (*Config, error) {
	// secrets are usually kept in a .env file in development
	_ = godotenv.Load()

	var db Database
	var http HTTP
	var daraja Daraja
	var app App

	flag.StringVar(&db.DSN, "d", "", "Database string")
	flag.StringVar(&http.HostString, "a", `localhost:8080`, "HTTP server endpoint")
	flag.StringVar(&daraja.APIHost, "g", `https://sandbox.safaricom.co.ke`, "Daraja API host")
	flag.StringVar(&app.LogLevel, "l", `error`, "Log level")
	flag.StringVar(&app.Mode, "m", `DEV`, "PROD / DEV")
	flag.StringVar(&app.MinAmount, "min", `1`, "Minimum checkout amount")
	flag.StringVar(&app.StaticDir, "s", `./public`, "Static assets directory")
	flag.Parse()

	err := env.Parse(&db)
	if err != nil {
		return nil, fmt.Errorf("error parsing env database config: %w", err)
	}
	err = env.Parse(&http)
	if err != nil {
		return nil, fmt.Errorf("error parsing http config: %w", err)
	}
	err = env.Parse(&app)
	if err != nil {
		return nil, fmt.Errorf("error parsing app config: %w", err)
	}
	err = env.Parse(&daraja)
	if err != nil {
		return nil, fmt.Errorf("error parsing daraja config: %w", err)
	}

	config := Config{
		Database: &db,
		HTTP:     &http,
		Daraja:   &daraja,
		App:      &app,
	}

	return &config, nil
}
