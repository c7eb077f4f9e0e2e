package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

// DurationMs es la duración del request en milisegundos.
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

// Bytes son los bytes escritos en la respuesta.
func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// =================================================================================
// CLAVES Y CLIENTES
// =================================================================================

// KID identifica una clave de firma.
func KID(v string) zap.Field { return zap.String("kid", v) }

func KeySize(v int) zap.Field { return zap.Int("key_size", v) }

func Algorithm(v string) zap.Field { return zap.String("alg", v) }

// ClientID identifica un cliente OAuth registrado.
func ClientID(v string) zap.Field { return zap.String("client_id", v) }

// Principal es la identidad sintetizada por el admin gate.
func Principal(v string) zap.Field { return zap.String("principal", v) }

// =================================================================================
// SISTEMA
// =================================================================================

func Component(v string) zap.Field { return zap.String("component", v) }

func Op(v string) zap.Field { return zap.String("op", v) }

// Layer es la capa (controller, service, repository).
func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field { return zap.Error(err) }

func Attempt(v int) zap.Field { return zap.Int("attempt", v) }

func Backoff(v time.Duration) zap.Field { return zap.Duration("backoff", v) }

func Driver(v string) zap.Field { return zap.String("driver", v) }

// =================================================================================
// GENÉRICOS
// =================================================================================

// Field es un alias para no importar zap en cada paquete.
type Field = zap.Field

func String(k, v string) zap.Field { return zap.String(k, v) }

func Int(k string, v int) zap.Field { return zap.Int(k, v) }

func Bool(k string, v bool) zap.Field { return zap.Bool(k, v) }

func Any(k string, v any) zap.Field { return zap.Any(k, v) }
