package config

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/gradebook-api/internal/gradebook"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	CORS        CORSConfig
	Log         LogConfig
	Grading     GradingConfig
	Statistics  StatisticsConfig
	Progression ProgressionConfig
	Exports     ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// GradingConfig holds the default grading scale. Institutions may override the ceiling.
type GradingConfig struct {
	ScaleMax        float64
	CutoffExcellent float64
	CutoffGood      float64
	CutoffFair      float64
	CutoffPassable  float64
	PassThresholds  []float64
	LeaderboardSize int
}

// StatisticsConfig governs caching of computed statistics.
type StatisticsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ProgressionConfig tunes the single-writer progression queue.
type ProgressionConfig struct {
	QueueBuffer int
	MaxRetries  int
	RetryDelay  time.Duration
}

// ExportsConfig controls formatting of exported reports.
type ExportsConfig struct {
	Decimals int
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Grading = GradingConfig{
		ScaleMax:        v.GetFloat64("GRADE_SCALE_MAX"),
		CutoffExcellent: v.GetFloat64("GRADE_CUTOFF_EXCELLENT"),
		CutoffGood:      v.GetFloat64("GRADE_CUTOFF_GOOD"),
		CutoffFair:      v.GetFloat64("GRADE_CUTOFF_FAIR"),
		CutoffPassable:  v.GetFloat64("GRADE_CUTOFF_PASSABLE"),
		PassThresholds:  parseFloats(v.GetString("GRADE_PASS_THRESHOLDS")),
		LeaderboardSize: v.GetInt("GRADE_LEADERBOARD_SIZE"),
	}

	cfg.Statistics = StatisticsConfig{
		CacheEnabled: v.GetBool("ENABLE_STATS_CACHE"),
		CacheTTL:     parseDuration(v.GetString("STATS_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Progression = ProgressionConfig{
		QueueBuffer: v.GetInt("PROGRESSION_QUEUE_BUFFER"),
		MaxRetries:  v.GetInt("PROGRESSION_QUEUE_RETRIES"),
		RetryDelay:  parseDuration(v.GetString("PROGRESSION_RETRY_DELAY"), time.Second),
	}

	cfg.Exports = ExportsConfig{Decimals: v.GetInt("EXPORT_DECIMALS")}

	return cfg, nil
}

// GradeScale builds the engine scale from the grading section.
func (c *Config) GradeScale() gradebook.Scale {
	return gradebook.Scale{
		Max: c.Grading.ScaleMax,
		Cutoffs: gradebook.Cutoffs{
			Excellent: c.Grading.CutoffExcellent,
			Good:      c.Grading.CutoffGood,
			Fair:      c.Grading.CutoffFair,
			Passable:  c.Grading.CutoffPassable,
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "gradebook")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("GRADE_SCALE_MAX", gradebook.DefaultScaleMax)
	v.SetDefault("GRADE_CUTOFF_EXCELLENT", gradebook.DefaultCutoffs.Excellent)
	v.SetDefault("GRADE_CUTOFF_GOOD", gradebook.DefaultCutoffs.Good)
	v.SetDefault("GRADE_CUTOFF_FAIR", gradebook.DefaultCutoffs.Fair)
	v.SetDefault("GRADE_CUTOFF_PASSABLE", gradebook.DefaultCutoffs.Passable)
	v.SetDefault("GRADE_PASS_THRESHOLDS", "")
	v.SetDefault("GRADE_LEADERBOARD_SIZE", 5)

	v.SetDefault("ENABLE_STATS_CACHE", false)
	v.SetDefault("STATS_CACHE_TTL", "10m")

	v.SetDefault("PROGRESSION_QUEUE_BUFFER", 64)
	v.SetDefault("PROGRESSION_QUEUE_RETRIES", 3)
	v.SetDefault("PROGRESSION_RETRY_DELAY", "1s")

	v.SetDefault("EXPORT_DECIMALS", 1)
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

func parseFloats(raw string) []float64 {
	parts := splitAndTrim(raw)
	if len(parts) == 0 {
		return nil
	}
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			continue
		}
		values = append(values, f)
	}
	return values
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
