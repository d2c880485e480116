package config

import (
	"time"

	"tokodash/internal/database"
	"tokodash/internal/transport"

	"github.com/spf13/viper"
)

// Configuration keys. With the TOKO prefix they map to TOKO_API_BASE_URL and so on.
const (
	KeyAPIBaseURL    = "api_base_url"
	KeyAPITimeout    = "api_timeout"
	KeyAppPort       = "app_port"
	KeyDatabaseDSN   = "database_dsn"
	KeyDatabaseDebug = "database_debug"
	KeyUploadDir     = "upload_dir"
	KeyUploadURL     = "upload_url"
	KeyRabbitMQURL   = "rabbitmq_url"
	KeyRequestLog    = "request_log"
)

// Config holds settings for the admin console and the catalog server.
type Config struct {
	APIBaseURL    string
	APITimeout    time.Duration
	AppPort       string
	DatabaseDSN   string
	DatabaseDebug bool
	UploadDir     string
	UploadURL     string
	RabbitMQURL   string
	RequestLog    bool
}

// New returns a viper instance with defaults set and TOKO_* environment
// variables bound.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("TOKO")
	v.SetDefault(KeyAPIBaseURL, transport.DefaultBaseURL)
	v.SetDefault(KeyAPITimeout, transport.DefaultTimeout)
	v.SetDefault(KeyAppPort, ":8080")
	v.SetDefault(KeyDatabaseDSN, database.DefaultDSN)
	v.SetDefault(KeyDatabaseDebug, false)
	v.SetDefault(KeyUploadDir, "uploads")
	v.SetDefault(KeyUploadURL, "/uploads")
	v.SetDefault(KeyRabbitMQURL, "")
	v.SetDefault(KeyRequestLog, true)
	v.AutomaticEnv()
	return v
}

// Load reads the current values out of v.
func Load(v *viper.Viper) Config {
	return Config{
		APIBaseURL:    v.GetString(KeyAPIBaseURL),
		APITimeout:    v.GetDuration(KeyAPITimeout),
		AppPort:       v.GetString(KeyAppPort),
		DatabaseDSN:   v.GetString(KeyDatabaseDSN),
		DatabaseDebug: v.GetBool(KeyDatabaseDebug),
		UploadDir:     v.GetString(KeyUploadDir),
		UploadURL:     v.GetString(KeyUploadURL),
		RabbitMQURL:   v.GetString(KeyRabbitMQURL),
		RequestLog:    v.GetBool(KeyRequestLog),
	}
}

// Transport returns the client settings.
func (c Config) Transport() transport.Config {
	return transport.Config{BaseURL: c.APIBaseURL, Timeout: c.APITimeout}
}
