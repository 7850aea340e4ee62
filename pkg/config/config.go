package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config groups the application configuration (read via Viper from env and
// optionally from a .env file).
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Gateway GatewayConfig
	Client  ClientConfig
}

// AppConfig general application settings.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig listen settings for the web gateway.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GatewayConfig settings for the edge gateway process.
type GatewayConfig struct {
	// APITarget is the backend base URL every /api/* request is forwarded to.
	APITarget string
	// StaticDir is the directory holding the built client bundle.
	StaticDir string
}

// ClientConfig settings for the terminal client.
type ClientConfig struct {
	// BaseURL is the gateway (or backend) base URL the client talks to.
	BaseURL string
	// SessionDBPath is where the persisted session token lives.
	SessionDBPath string
}

// Load reads the configuration from environment variables (and optionally from
// a .env file in the working directory). Env vars take precedence. Expected
// names: APP_ENV, HTTP_PORT, API_TARGET, STATIC_DIR, API_BASE_URL, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Optional configuration file (.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignore error when the file does not exist

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "sweetshop-web"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 5173),
		},
		Gateway: GatewayConfig{
			APITarget: getString(v, "API_TARGET", "https://sweetshop-api.herokuapp.com"),
			StaticDir: getString(v, "STATIC_DIR", "./dist"),
		},
		Client: ClientConfig{
			BaseURL:       getString(v, "API_BASE_URL", "http://localhost:5173"),
			SessionDBPath: getString(v, "SESSION_DB_PATH", defaultSessionDBPath()),
		},
	}

	return cfg, nil
}

// defaultSessionDBPath places the session database under the user config dir,
// falling back to the working directory when it cannot be resolved.
func defaultSessionDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "sweetshop-session.db"
	}
	return filepath.Join(dir, "sweetshop", "session.db")
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
