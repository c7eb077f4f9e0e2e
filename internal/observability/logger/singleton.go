package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	once        sync.Once
	instance    *zap.Logger
	instanceErr error // error no fatal de Init (ej: no se pudo abrir el archivo de log)
)

// Init inicializa el logger singleton. Solo la primera llamada tiene efecto.
func Init(cfg Config) {
	once.Do(func() {
		instance = build(cfg)
		if instanceErr != nil {
			instance.Warn("log file sink disabled", zap.String("file", cfg.File), zap.Error(instanceErr))
		}
	})
}

// L retorna el logger singleton. Sin Init() previo usa dev/info.
func L() *zap.Logger {
	if instance == nil {
		Init(Config{Env: "dev", Level: "info"})
	}
	return instance
}

// Named retorna un logger con nombre de componente.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// With retorna un logger con campos adicionales.
func With(fields ...zap.Field) *zap.Logger {
	return L().With(fields...)
}

// Sync flushea buffers pendientes. Llamar con defer en main.
func Sync() error {
	if instance != nil {
		return instance.Sync()
	}
	return nil
}

// ReplaceForTest reemplaza el singleton y devuelve la función que lo restaura.
// Solo para tests.
func ReplaceForTest(l *zap.Logger) (restore func()) {
	L()
	prev := instance
	instance = l
	return func() { instance = prev }
}
