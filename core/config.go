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

type (
	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		SecretKey    string
		RollbarToken string
		Server       ServerConfig
		Database     DatabaseConfig
		Model        ModelConfig
	}

	ServerConfig struct {
		Address                   string
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine string // memory | sqlite3 | postgres
		Path   string // sqlite3 file
		URL    string // postgres DSN
	}

	// ModelConfig selects the grade classifier.
	ModelConfig struct {
		Kind    string // linear | remote
		Path    string // linear: YAML weights (optional)
		URL     string // remote: scoring endpoint
		Timeout time.Duration
	}
)

// NewConfig loads the app configuration from the environment.
//
// ENV selects the environment (DEV by default, TEST, QA, PROD); "config/.env.<env>" is loaded when present
// and every key may be overridden by a "<ENV>_<KEY>" environment variable.
func NewConfig() (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "ScholarHelp")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "k3v@-9s0p!t6h=x(ar4w+z8c#2q&n1b7m%lo5d^e$yju_gif")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("database.engine", "sqlite3")
	v.SetDefault("database.path", "scholarhelp.db")
	v.SetDefault("database.url", "")
	v.SetDefault("model.kind", "linear")
	v.SetDefault("model.path", "")
	v.SetDefault("model.url", "")
	v.SetDefault("model.timeout", 5*time.Second)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("database.engine", "memory")
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Address:                   v.GetString("server.address"),
			Host:                      v.GetString("server.host"),
			DebugHost:                 v.GetString("server.debugHost"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine: strings.ToLower(v.GetString("database.engine")),
			Path:   v.GetString("database.path"),
			URL:    v.GetString("database.url"),
		},
		Model: ModelConfig{
			Kind:    strings.ToLower(v.GetString("model.kind")),
			Path:    v.GetString("model.path"),
			URL:     v.GetString("model.url"),
			Timeout: v.GetDuration("model.timeout"),
		},
	}, nil
}
