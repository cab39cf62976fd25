package logger

import (
	"os"
	"strings"

	"github.com/cyphera/remote-accounts/internal/constants"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Log is the global logger instance
	Log *zap.Logger
)

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level       string `json:"level"`
	Stage       string `json:"stage"`
	EnableJSON  bool   `json:"enable_json"`
	EnableColor bool   `json:"enable_color"`
	// Fields are attached to every entry, e.g. the chain the node serves.
	Fields map[string]interface{} `json:"fields"`
}

// InitLogger initializes the logger for stage. CHAIN_ID and SOURCE_CHAIN,
// when set, are attached to every entry so that logs from several router
// nodes can be told apart before genesis has been deployed.
func InitLogger(stage string) {
	config := LoggerConfig{
		Level:       getEnvWithDefault("LOG_LEVEL", "info"),
		Stage:       stage,
		EnableJSON:  stage == constants.ProdEnvironment,
		EnableColor: stage != constants.ProdEnvironment && stage != constants.TestEnvironment,
		Fields:      map[string]interface{}{},
	}
	if v := os.Getenv("CHAIN_ID"); v != "" {
		config.Fields[FieldChainID] = v
	}
	if v := os.Getenv("SOURCE_CHAIN"); v != "" {
		config.Fields[FieldSourceChain] = v
	}

	InitLoggerWithConfig(config)
}

// InitLoggerWithConfig initializes the logger with custom configuration
func InitLoggerWithConfig(config LoggerConfig) {
	level := ParseLevel(config.Level)

	var zapConfig zap.Config
	if config.Stage == constants.ProdEnvironment || config.EnableJSON {
		zapConfig = jsonConfig(config.Stage)
	} else {
		zapConfig = consoleConfig(config.EnableColor)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.DisableStacktrace = config.Stage == constants.ProdEnvironment && level > zapcore.DebugLevel
	if zapConfig.InitialFields == nil && len(config.Fields) > 0 {
		zapConfig.InitialFields = make(map[string]interface{}, len(config.Fields))
	}
	for k, v := range config.Fields {
		zapConfig.InitialFields[k] = v
	}

	logger, err := zapConfig.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	Log = logger
}

// jsonConfig is the structured format shipped to CloudWatch.
func jsonConfig(stage string) zap.Config {
	c := zap.NewProductionConfig()
	c.EncoderConfig.TimeKey = "timestamp"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	c.EncoderConfig.MessageKey = "message"
	c.EncoderConfig.LevelKey = "level"
	c.EncoderConfig.CallerKey = "caller"
	c.EncoderConfig.StacktraceKey = "stacktrace"
	c.InitialFields = map[string]interface{}{
		"service": constants.ServiceName,
		"stage":   stage,
	}
	return c
}

func consoleConfig(color bool) zap.Config {
	c := zap.NewDevelopmentConfig()
	c.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		c.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	c.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	return c
}

// ParseLevel maps a textual level to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case constants.ErrorLevel:
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Info logs a message at InfoLevel
func Info(msg string, fields ...zapcore.Field) {
	Log.Info(msg, fields...)
}

// Error logs a message at ErrorLevel
func Error(msg string, fields ...zapcore.Field) {
	Log.Error(msg, fields...)
}

// Debug logs a message at DebugLevel
func Debug(msg string, fields ...zapcore.Field) {
	Log.Debug(msg, fields...)
}

// Warn logs a message at WarnLevel
func Warn(msg string, fields ...zapcore.Field) {
	Log.Warn(msg, fields...)
}

// Fatal logs a message at FatalLevel and exits.
func Fatal(msg string, fields ...zapcore.Field) {
	Log.Fatal(msg, fields...)
}

// With creates a child logger and adds structured context to it
func With(fields ...zapcore.Field) *zap.Logger {
	return Log.With(fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	return Log.Sync()
}
