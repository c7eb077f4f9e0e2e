package logger

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configura el logger.
type Config struct {
	// Env: "dev" (consola con colores) o "prod" (JSON). Default: "dev".
	Env string

	// Level: "debug", "info", "warn", "error". Default: "info".
	Level string

	ServiceName string
	Version     string

	// File, si no está vacío, agrega un sink JSON con rotación (además de stdout).
	// Se escribe en File+".YYYYMMDD" y File queda como symlink al archivo actual.
	File string

	RotationTime time.Duration // default 24h
	MaxAge       time.Duration // default 30 días
	MaxSizeMB    int64         // default 100
}

// build construye el logger según la configuración.
func build(cfg Config) *zap.Logger {
	level := zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	prod := strings.ToLower(cfg.Env) == "prod"

	cores := []zapcore.Core{
		zapcore.NewCore(stdoutEncoder(prod), zapcore.Lock(os.Stdout), level),
	}
	if cfg.File != "" {
		if w, err := fileSink(cfg); err == nil {
			cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(prodEncoderConfig()), zapcore.AddSync(w), level))
		} else {
			// Seguimos solo con stdout; Init lo reporta.
			instanceErr = err
		}
	}

	l := zap.New(zapcore.NewTee(cores...), options(prod)...)

	if cfg.ServiceName != "" {
		l = l.With(zap.String("service", cfg.ServiceName))
	}
	if cfg.Version != "" {
		l = l.With(zap.String("version", cfg.Version))
	}
	return l
}

// options no agrega caller skip: L, Named, With y From devuelven el *zap.Logger y
// el log lo emite el propio caller, sin frames intermedios.
func options(prod bool) []zap.Option {
	opts := []zap.Option{zap.AddCaller()}
	if prod {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}
	return opts
}

func stdoutEncoder(prod bool) zapcore.Encoder {
	if prod {
		return zapcore.NewJSONEncoder(prodEncoderConfig())
	}
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	ec.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(ec)
}

func prodEncoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeCaller = zapcore.ShortCallerEncoder
	return ec
}

// fileSink abre el writer con rotación por tiempo y tamaño.
func fileSink(cfg Config) (*rotatelogs.RotateLogs, error) {
	rotation := cfg.RotationTime
	if rotation <= 0 {
		rotation = 24 * time.Hour
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}
	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 100
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o750); err != nil {
		return nil, err
	}
	return rotatelogs.New(
		cfg.File+".%Y%m%d",
		rotatelogs.WithLinkName(cfg.File),
		rotatelogs.WithRotationTime(rotation),
		rotatelogs.WithMaxAge(maxAge),
		rotatelogs.WithRotationSize(maxSize*1024*1024),
	)
}

// parseLevel convierte un string a zapcore.Level.
func parseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
