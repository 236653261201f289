package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config captures the full runtime configuration for the docrepo function.
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Kafka    KafkaConfig
	Storage  StorageConfig
	Output   OutputConfig
	Search   SearchConfig
	Stream   StreamConfig
	Extract  ExtractConfig
	Tracing  TracingConfig
	Document DocumentConfig
}

type AppConfig struct {
	Name        string `env:"APP_NAME" envDefault:"docrepo"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	Version     string `env:"APP_VERSION" envDefault:"0.1.0"`
	LogLevel    string `env:"APP_LOG_LEVEL" envDefault:"info"`
	LogEncoding string `env:"APP_LOG_ENCODING" envDefault:"json"`
}

type HTTPConfig struct {
	Addr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"120s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	MaxEventSize int64         `env:"HTTP_MAX_EVENT_BYTES" envDefault:"1048576"`
}

type KafkaConfig struct {
	Brokers          []string      `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	DialTimeout      time.Duration `env:"KAFKA_DIAL_TIMEOUT" envDefault:"10s"`
	CompressionCodec string        `env:"KAFKA_COMPRESSION_CODEC" envDefault:"snappy"`
}

type StorageConfig struct {
	Provider  string `env:"STORAGE_PROVIDER" envDefault:"minio"`
	Endpoint  string `env:"STORAGE_ENDPOINT" envDefault:"localhost:9000"`
	Region    string `env:"STORAGE_REGION" envDefault:"us-east-1"`
	AccessKey string `env:"STORAGE_ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey string `env:"STORAGE_SECRET_KEY" envDefault:"minioadmin"`
	UseSSL    bool   `env:"STORAGE_USE_SSL" envDefault:"false"`
}

// OutputConfig names the bucket archived documents are written to.
type OutputConfig struct {
	Bucket string `env:"OUTPUT_BUCKET,required,notEmpty"`
}

type SearchConfig struct {
	Endpoint  string        `env:"SEARCH_ENDPOINT,required,notEmpty"`
	IndexPath string        `env:"SEARCH_INDEX_PATH" envDefault:"docrepo/document"`
	Timeout   time.Duration `env:"SEARCH_TIMEOUT" envDefault:"30s"`
}

type StreamConfig struct {
	Name string `env:"STREAM_NAME,required,notEmpty"`
}

type ExtractConfig struct {
	MaxBytes        int64 `env:"EXTRACT_MAX_BYTES" envDefault:"104857600"`
	HTMLReadability bool  `env:"EXTRACT_HTML_READABILITY" envDefault:"false"`
}

// DocumentConfig controls how canonical document locators are rendered.
type DocumentConfig struct {
	BaseURL string `env:"DOCUMENT_BASE_URL" envDefault:"https://objectstorage.eu-frankfurt-1.oraclecloud.com"`
}

type TracingConfig struct {
	Endpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	Insecure     bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	SampleRatio  float64 `env:"OTEL_TRACES_SAMPLER_RATIO" envDefault:"1.0"`
	ResourceAttr string  `env:"OTEL_RESOURCE_ATTRIBUTES" envDefault:"service.namespace=docrepo"`
}

// ConfigError reports configuration that prevents the function from becoming ready.
type ConfigError struct {
	Missing []string
	Err     error
}

func (e *ConfigError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("config: missing required values %v", e.Missing)
	}
	return fmt.Sprintf("config: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Load reads an optional .env file and parses environment variables into Config.
func Load(files ...string) (*Config, error) {
	// a missing .env is the normal case outside local development
	_ = godotenv.Load(files...)

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, newConfigError(err)
	}
	return cfg, nil
}

func newConfigError(err error) *ConfigError {
	ce := &ConfigError{Err: err}

	var agg env.AggregateError
	if !errors.As(err, &agg) {
		return ce
	}
	for _, e := range agg.Errors {
		var notSet env.VarIsNotSetError
		var empty env.EmptyVarError
		switch {
		case errors.As(e, &notSet):
			ce.Missing = append(ce.Missing, notSet.Key)
		case errors.As(e, &empty):
			ce.Missing = append(ce.Missing, empty.Key)
		}
	}
	return ce
}
