package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Backend   BackendConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Media     MediaConfig
	Exports   ExportsConfig
	Map       MapConfig
	Wizard    WizardConfig
	Assistant AssistantConfig
}

// BackendConfig locates the classification backend that owns all grievance data.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MediaConfig bounds audio/image attachments and their local spool.
type MediaConfig struct {
	StorageDir       string
	MaxFileSizeBytes int64
	AllowedAudioMIME []string
	AllowedImageMIME []string
	UploadWorkers    int
	UploadRetries    int
}

// ExportsConfig controls rendered complaint exports and signed downloads.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	CleanupInterval time.Duration
}

// MapConfig describes the third-party tile provider used by the location picker.
type MapConfig struct {
	TileURL     string
	Attribution string
	ProbeURL    string
	MinZoom     int
	MaxZoom     int
}

// WizardConfig tunes submission draft behaviour.
type WizardConfig struct {
	DraftTTL          time.Duration
	MinDescriptionLen int
}

// AssistantConfig toggles the local keyword responder.
type AssistantConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Backend = BackendConfig{
		BaseURL: v.GetString("BACKEND_BASE_URL"),
		Timeout: parseDuration(v.GetString("BACKEND_TIMEOUT"), 15*time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxMediaSize := v.GetInt64("MEDIA_MAX_FILE_SIZE")
	if maxMediaSize <= 0 {
		maxMediaSize = 10 * 1024 * 1024
	}
	cfg.Media = MediaConfig{
		StorageDir:       v.GetString("MEDIA_STORAGE_DIR"),
		MaxFileSizeBytes: maxMediaSize,
		AllowedAudioMIME: splitAndTrim(v.GetString("MEDIA_ALLOWED_AUDIO_MIME_TYPES")),
		AllowedImageMIME: splitAndTrim(v.GetString("MEDIA_ALLOWED_IMAGE_MIME_TYPES")),
		UploadWorkers:    v.GetInt("MEDIA_UPLOAD_WORKERS"),
		UploadRetries:    v.GetInt("MEDIA_UPLOAD_RETRIES"),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval: parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
	}

	cfg.Map = MapConfig{
		TileURL:     v.GetString("MAP_TILE_URL"),
		Attribution: v.GetString("MAP_ATTRIBUTION"),
		ProbeURL:    v.GetString("MAP_PROBE_URL"),
		MinZoom:     v.GetInt("MAP_MIN_ZOOM"),
		MaxZoom:     v.GetInt("MAP_MAX_ZOOM"),
	}

	cfg.Wizard = WizardConfig{
		DraftTTL:          parseDuration(v.GetString("WIZARD_DRAFT_TTL"), 2*time.Hour),
		MinDescriptionLen: v.GetInt("WIZARD_MIN_DESCRIPTION_LEN"),
	}

	cfg.Assistant = AssistantConfig{
		Enabled: v.GetBool("ENABLE_ASSISTANT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("BACKEND_BASE_URL", "http://localhost:8000")
	v.SetDefault("BACKEND_TIMEOUT", "15s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "portal-gateway")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MEDIA_STORAGE_DIR", "./media")
	v.SetDefault("MEDIA_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("MEDIA_ALLOWED_AUDIO_MIME_TYPES", "audio/wav,audio/x-wav,audio/webm,audio/mpeg,audio/ogg")
	v.SetDefault("MEDIA_ALLOWED_IMAGE_MIME_TYPES", "image/jpeg,image/png,image/webp")
	v.SetDefault("MEDIA_UPLOAD_WORKERS", 2)
	v.SetDefault("MEDIA_UPLOAD_RETRIES", 3)

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")

	v.SetDefault("MAP_TILE_URL", "https://tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("MAP_ATTRIBUTION", "© OpenStreetMap contributors")
	v.SetDefault("MAP_PROBE_URL", "https://tile.openstreetmap.org/0/0/0.png")
	v.SetDefault("MAP_MIN_ZOOM", 3)
	v.SetDefault("MAP_MAX_ZOOM", 19)

	v.SetDefault("WIZARD_DRAFT_TTL", "2h")
	v.SetDefault("WIZARD_MIN_DESCRIPTION_LEN", 20)

	v.SetDefault("ENABLE_ASSISTANT", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
