package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Auth          AuthConfig
	AWS           AWSConfig
	Diarization   DiarizationConfig
	Transcription TranscriptionConfig
	Pipeline      PipelineConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	// Empty secret disables auth entirely (internal deployments).
	JWTSecret string
}

type AWSConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
}

type DiarizationConfig struct {
	// SidecarURL points at the pyannote diarization sidecar. Empty
	// means no local diarization: the remote transcription engine is
	// asked to label speakers itself.
	SidecarURL string
}

type TranscriptionConfig struct {
	Backend          string // "aws" or "whisper"
	Language         string // e.g. "ja-JP" for aws, "ja" for whisper
	MaxSpeakerLabels int
	WhisperAPIKey    string
	WhisperBaseURL   string
	WhisperModel     string
}

type PipelineConfig struct {
	TempDir      string
	MaxInference int
	CacheTTLMin  int
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxSpeakers, err := getEnvInt("TRANSCRIBE_MAX_SPEAKER_LABELS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid TRANSCRIBE_MAX_SPEAKER_LABELS: %w", err)
	}

	maxInference, err := getEnvInt("PIPELINE_MAX_INFERENCE", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid PIPELINE_MAX_INFERENCE: %w", err)
	}

	cacheTTL, err := getEnvInt("PIPELINE_CACHE_TTL_MIN", 1440)
	if err != nil {
		return nil, fmt.Errorf("invalid PIPELINE_CACHE_TTL_MIN: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		},
		AWS: AWSConfig{
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Region:          getEnv("AWS_REGION", "ap-northeast-1"),
			Bucket:          getEnv("S3_BUCKET_NAME", ""),
		},
		Diarization: DiarizationConfig{
			// Set DIARIZER_URL= (empty) to disable the sidecar and let
			// the remote engine label speakers instead.
			SidecarURL: getEnvAllowEmpty("DIARIZER_URL", "http://localhost:8090"),
		},
		Transcription: TranscriptionConfig{
			Backend:          getEnv("TRANSCRIBE_BACKEND", "aws"),
			Language:         getEnv("TRANSCRIBE_LANGUAGE", "ja-JP"),
			MaxSpeakerLabels: maxSpeakers,
			WhisperAPIKey:    getEnv("WHISPER_API_KEY", ""),
			WhisperBaseURL:   getEnv("WHISPER_BASE_URL", ""),
			WhisperModel:     getEnv("WHISPER_MODEL", ""),
		},
		Pipeline: PipelineConfig{
			TempDir:      getEnv("PIPELINE_TEMP_DIR", "temp"),
			MaxInference: maxInference,
			CacheTTLMin:  cacheTTL,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Transcription.Backend == "aws" {
		if c.AWS.AccessKeyID == "" {
			missing = append(missing, "AWS_ACCESS_KEY_ID")
		}
		if c.AWS.SecretAccessKey == "" {
			missing = append(missing, "AWS_SECRET_ACCESS_KEY")
		}
		if c.AWS.Bucket == "" {
			missing = append(missing, "S3_BUCKET_NAME")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}

	switch c.Transcription.Backend {
	case "aws", "whisper":
	default:
		return fmt.Errorf("unknown TRANSCRIBE_BACKEND: %s", c.Transcription.Backend)
	}
	if c.Diarization.SidecarURL == "" && c.Transcription.Backend != "aws" {
		return fmt.Errorf("DIARIZER_URL may only be empty with TRANSCRIBE_BACKEND=aws")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAllowEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
