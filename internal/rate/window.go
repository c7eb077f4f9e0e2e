package rate

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// windowEntry es el estado por dirección. count nunca supera el límite mientras
// la ventana está abierta.
type windowEntry struct {
	mu    sync.Mutex
	start time.Time
	count int
}

// WindowLimiter es el limiter en memoria: ventana que se reinicia en el primer
// request posterior a start+window (no es una ventana fija alineada al reloj).
//
// Las entradas viven en un go-cache con TTL, así que una dirección que deja de
// llegar desaparece tras su ventana y el janitor la barre.
type WindowLimiter struct {
	// mu serializa lookup/alta/reemplazo en entries; no protege los contadores.
	mu      sync.Mutex
	entries *gocache.Cache
	limit   int
	window  time.Duration
	grace   time.Duration
	clock   Clock
}

// WindowOption configura un WindowLimiter.
type WindowOption func(*WindowLimiter)

// WithClock inyecta el reloj (tests).
func WithClock(c Clock) WindowOption {
	return func(l *WindowLimiter) { l.clock = c }
}

// NewWindowLimiter crea el limiter. cleanup es el intervalo del janitor de go-cache.
func NewWindowLimiter(limit int, window, cleanup time.Duration, opts ...WindowOption) *WindowLimiter {
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	l := &WindowLimiter{
		entries: gocache.New(window, cleanup),
		limit:   limit,
		window:  window,
		grace:   cleanup,
		clock:   SystemClock,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *WindowLimiter) Allow(_ context.Context, key string) (Result, error) {
	for {
		e := l.entry(key)
		e.mu.Lock()
		res, ok := l.take(key, e)
		e.mu.Unlock()
		if ok {
			return res, nil
		}
	}
}

// take aplica un request sobre e con e.mu tomado. Devuelve false si e dejó de ser
// la entrada vigente de key (venció en go-cache y otra goroutine creó una nueva);
// en ese caso no toca nada y el caller reintenta con la entrada actual.
func (l *WindowLimiter) take(key string, e *windowEntry) (Result, bool) {
	now := l.clock.Now()
	end := e.start.Add(l.window)

	switch {
	case e.count == 0 || !now.Before(end):
		// Entrada nueva o ventana vencida: reinicia.
		l.mu.Lock()
		if !l.isCurrent(key, e) {
			l.mu.Unlock()
			return Result{}, false
		}
		l.entries.Set(key, e, l.window+l.grace)
		l.mu.Unlock()
		e.start = now
		e.count = 1
		end = now.Add(l.window)
	case e.count < l.limit:
		l.mu.Lock()
		current := l.isCurrent(key, e)
		l.mu.Unlock()
		if !current {
			return Result{}, false
		}
		e.count++
	default:
		return Result{
			Allowed:     false,
			Remaining:   0,
			RetryAfter:  end.Sub(now),
			WindowTTL:   end.Sub(now),
			CurrentHits: int64(e.count),
		}, true
	}

	return Result{
		Allowed:     true,
		Remaining:   int64(l.limit - e.count),
		WindowTTL:   end.Sub(now),
		CurrentHits: int64(e.count),
	}, true
}

// isCurrent indica si e sigue siendo la entrada cacheada de key. Requiere l.mu.
func (l *WindowLimiter) isCurrent(key string, e *windowEntry) bool {
	v, ok := l.entries.Get(key)
	return ok && v.(*windowEntry) == e
}

// entry devuelve la entrada de key, creándola si no existe.
func (l *WindowLimiter) entry(key string) *windowEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.entries.Get(key); ok {
		return v.(*windowEntry)
	}
	e := &windowEntry{}
	l.entries.Set(key, e, l.window+l.grace)
	return e
}

// Len devuelve la cantidad de direcciones con entrada viva.
func (l *WindowLimiter) Len() int {
	return l.entries.ItemCount()
}
