package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Conf holds the application configuration, making it accessible globally.
var Conf *Config

// v is kept so Watch can register hot-reloading after the logger exists.
var v *viper.Viper

// Config struct is the top-level configuration structure.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Gaze     GazeConfig     `mapstructure:"gaze"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	LLM      LLMConfig      `mapstructure:"llm"`
	STT      STTConfig      `mapstructure:"stt"`
	Pose     PoseConfig     `mapstructure:"pose"`
	Session  SessionConfig  `mapstructure:"session"`
}

// ServerConfig holds server-related settings.
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// DatabaseConfig holds database connection settings for the result archive.
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// UploadConfig holds video upload settings.
type UploadConfig struct {
	Directory         string   `mapstructure:"directory"`
	MaxSizeMB         int64    `mapstructure:"max_size_mb"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

// GazeConfig holds the thresholds driving the gaze classifier and the
// integrity analyzer. Defaults match the tuned production values.
type GazeConfig struct {
	DeviationThreshold float64 `mapstructure:"deviation_threshold"`
	MinEyeDistance     float64 `mapstructure:"min_eye_distance"`
	FrameSkip          int     `mapstructure:"frame_skip"`
	IntegrityThreshold float64 `mapstructure:"integrity_threshold"`
	ConfidenceGate     float64 `mapstructure:"confidence_gate"`
	FrameWidth         int     `mapstructure:"frame_width"`
	FrameHeight        int     `mapstructure:"frame_height"`
}

// ScoringConfig holds the final-decision weighting inputs.
type ScoringConfig struct {
	ProjectScore  float64 `mapstructure:"project_score"`
	PassThreshold int     `mapstructure:"pass_threshold"`
	RubricsFile   string  `mapstructure:"rubrics_file"`
}

// LLMConfig selects and configures the rubric-scoring provider.
type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
}

// STTConfig points at the external transcription service.
type STTConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// PoseConfig points at the external keypoint detection service.
type PoseConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// SessionConfig holds candidate session settings.
type SessionConfig struct {
	Secret         string `mapstructure:"secret"`
	TTLMinutes     int    `mapstructure:"ttl_minutes"`
	JanitorMinutes int    `mapstructure:"janitor_minutes"`
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "5000")

	// Database defaults (archive is opt-in)
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "user")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "assessment-db")

	// Logging defaults
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true) // Compress old logs

	// Upload defaults
	v.SetDefault("upload.directory", "uploads")
	v.SetDefault("upload.max_size_mb", 50)
	v.SetDefault("upload.allowed_extensions", []string{"mp4", "mov", "avi", "mkv", "webm"})

	// Gaze analysis defaults
	v.SetDefault("gaze.deviation_threshold", 15.0) // pixels
	v.SetDefault("gaze.min_eye_distance", 30.0)    // pixels
	v.SetDefault("gaze.frame_skip", 5)             // analyze 1 of every 5 frames
	v.SetDefault("gaze.integrity_threshold", 0.20)
	v.SetDefault("gaze.confidence_gate", 0.5)
	v.SetDefault("gaze.frame_width", 640)
	v.SetDefault("gaze.frame_height", 360)

	// Scoring defaults
	v.SetDefault("scoring.project_score", 100.0)
	v.SetDefault("scoring.pass_threshold", 15)
	v.SetDefault("scoring.rubrics_file", "config/rubrics.yaml")

	// LLM defaults
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("llm.api_key", "")

	// Collaborator endpoints
	v.SetDefault("stt.base_url", "http://localhost:8801")
	v.SetDefault("stt.timeout_seconds", 120)
	v.SetDefault("pose.base_url", "http://localhost:8802")
	v.SetDefault("pose.timeout_seconds", 30)

	// Session defaults
	v.SetDefault("session.secret", "change-me")
	v.SetDefault("session.ttl_minutes", 120)
	v.SetDefault("session.janitor_minutes", 10)
}

// Init initializes the configuration with Viper. It runs before the logger is
// built, so it returns errors instead of logging them; call Watch afterwards to
// enable hot-reloading.
func Init(projectRoot string) error {
	v = viper.New()

	// Set default values
	setDefaults(v)

	// --- File Configuration ---
	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config") // Name of config file (without extension)
	v.SetConfigType("yaml")

	// --- Environment Variable Binding ---
	v.SetEnvPrefix("AIA") // e.g., AIA_SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read the initial configuration from the file.
	// It's okay if the file doesn't exist; defaults and env vars will be used.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal the config into our global Conf variable
	if err := v.Unmarshal(&Conf); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return nil
}

// Watch sets up a watch for configuration changes for hot-reloading.
func Watch(log *zap.Logger) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		if err := v.Unmarshal(&Conf); err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
		}
	})
}
