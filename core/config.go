package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds all runtime settings of the client. It is constructed once at
// application start and passed by reference to consumers.
type Config struct {
	Debug   bool
	Env     string // DEV (default), TEST, QA, PROD
	AppName string
	Build   string

	APIBaseURL string
	APITimeout time.Duration

	// JWTRefreshLeeway is subtracted from the token expiry when deciding
	// whether a refresh is needed, so that a token about to expire is not
	// attached to an outgoing request.
	JWTRefreshLeeway time.Duration

	CredentialsFile string
	CredentialsKey  string

	RollbarToken string
}

// NewConfig loads settings from the environment, with an optional
// config/.env.<env> dotenv file, on top of built-in defaults.
func NewConfig() (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Academia")
	v.SetDefault("apiBaseUrl", "http://localhost:8000/api")
	v.SetDefault("apiTimeout", 15*time.Second)
	v.SetDefault("jwtRefreshLeeway", 30*time.Second)
	v.SetDefault("credentialsFile", defaultCredentialsFile())
	v.SetDefault("credentialsKey", "h2y(h!x)#*c2(#yg4h^$cegm2emy-dev-only")

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "config.godotenv(%s)", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "config.os.Stat(%s)", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:            v.GetBool("debug"),
		Env:              env,
		AppName:          v.GetString("appName"),
		Build:            v.GetString("build"),
		APIBaseURL:       v.GetString("apiBaseUrl"),
		APITimeout:       v.GetDuration("apiTimeout"),
		JWTRefreshLeeway: v.GetDuration("jwtRefreshLeeway"),
		CredentialsFile:  v.GetString("credentialsFile"),
		CredentialsKey:   v.GetString("credentialsKey"),
		RollbarToken:     v.GetString("rollbarToken"),
	}
	return conf, nil
}

func defaultCredentialsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".academia-credentials"
	}
	return filepath.Join(home, ".academia", "credentials")
}
