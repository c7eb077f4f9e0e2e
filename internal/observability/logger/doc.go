// Package logger expone un logger Zap singleton con scoping por contexto.
//
//   - Init(Config) una vez en main; L() devuelve el singleton.
//   - Los middlewares inyectan un logger con request_id/method/path via ToContext;
//     el resto del código usa From(ctx), que cae al singleton si no hay uno.
//   - Env "dev" escribe consola con colores; "prod" escribe JSON.
//   - Config.File agrega un sink JSON con rotación (file-rotatelogs).
//
// Uso:
//
//	logger.Init(logger.Config{Env: cfg.Log.Env, Level: cfg.Log.Level, File: cfg.Log.File})
//	defer logger.Sync()
//
//	log := logger.From(ctx)
//	log.Info("signing key activated", logger.KID(kid))
package logger
