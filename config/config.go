package config

import (
	"path"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig ...
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// JaegerConfig ...
type JaegerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// MetricsConfig for the projector's /metrics listener
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// ProjectorConfig ...
type ProjectorConfig struct {
	BatchSize int           `mapstructure:"batch_size"`
	IdleSleep time.Duration `mapstructure:"idle_sleep"`
}

// Config ...
type Config struct {
	MySQL     MySQLConfig     `mapstructure:"mysql"`
	Log       LogConfig       `mapstructure:"log"`
	Jaeger    JaegerConfig    `mapstructure:"jaeger"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Projector ProjectorConfig `mapstructure:"projector"`
}

// Load reads config.yml from the working directory, with environment
// overrides (e.g. MYSQL_HOST)
func Load() Config {
	return loadFromFile("config.yml")
}

// LoadTestConfig reads config_test.yml from the repository root
func LoadTestConfig(rootDir string) Config {
	return loadFromFile(path.Join(rootDir, "config_test.yml"))
}

func loadFromFile(file string) Config {
	vip := viper.New()
	vip.SetConfigFile(file)
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vip.AutomaticEnv()

	err := vip.ReadInConfig()
	if err != nil {
		panic(err)
	}

	var conf Config
	err = vip.Unmarshal(&conf)
	if err != nil {
		panic(err)
	}
	return conf
}

// NewLogger ...
func NewLogger(conf LogConfig) *zap.Logger {
	level := zapcore.InfoLevel
	if conf.Level != "" {
		err := level.Set(conf.Level)
		if err != nil {
			panic(err)
		}
	}

	logConf := zap.NewProductionConfig()
	logConf.Level = zap.NewAtomicLevelAt(level)

	logger, err := logConf.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
