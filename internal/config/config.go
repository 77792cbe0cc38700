// internal/config/config.go
package config

import (
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	API    APIConfig
	Server ServerConfig
	Export ExportConfig
	Log    LogConfig
}

// APIConfig points the dashboard at the reorder backend.
type APIConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// ExportConfig selects where exported reports are saved.
type ExportConfig struct {
	Sink string
	Dir  string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Region    string
	S3Prefix    string
	S3UseSSL    bool

	DriveCredentialsJSON string
	DriveFolderID        string
}

type LogConfig struct {
	Level string
	File  string
}

const (
	SinkLocal = "local"
	SinkS3    = "s3"
	SinkDrive = "drive"
)

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.AutomaticEnv()
		instance = FromViper(viper.GetViper())
	})

	return instance
}

// FromViper builds a Config from v after applying defaults. Load uses the
// global viper instance; tests pass their own.
func FromViper(v *viper.Viper) *Config {
	setDefaults(v)

	return &Config{
		API: APIConfig{
			BaseURL:        strings.TrimRight(v.GetString("REORDER_API_URL"), "/"),
			TimeoutSeconds: v.GetInt("REORDER_API_TIMEOUT_SECONDS"),
		},
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Export: ExportConfig{
			Sink:                 strings.ToLower(v.GetString("EXPORT_SINK")),
			Dir:                  v.GetString("EXPORT_DIR"),
			S3Endpoint:           v.GetString("EXPORT_S3_ENDPOINT"),
			S3AccessKey:          v.GetString("EXPORT_S3_ACCESS_KEY"),
			S3SecretKey:          v.GetString("EXPORT_S3_SECRET_KEY"),
			S3Bucket:             v.GetString("EXPORT_S3_BUCKET"),
			S3Region:             v.GetString("EXPORT_S3_REGION"),
			S3Prefix:             v.GetString("EXPORT_S3_PREFIX"),
			S3UseSSL:             v.GetBool("EXPORT_S3_USE_SSL"),
			DriveCredentialsJSON: v.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
			DriveFolderID:        v.GetString("EXPORT_DRIVE_FOLDER_ID"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
			File:  v.GetString("LOG_FILE"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("REORDER_API_URL", "http://localhost:5000/api")
	v.SetDefault("REORDER_API_TIMEOUT_SECONDS", 0)
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("EXPORT_SINK", SinkLocal)
	v.SetDefault("EXPORT_DIR", "./data/exports")
	v.SetDefault("EXPORT_S3_REGION", "us-east-1")
	v.SetDefault("EXPORT_S3_USE_SSL", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "./dashboard.log")
}

// Timeout is the per-request HTTP timeout; zero means none.
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
