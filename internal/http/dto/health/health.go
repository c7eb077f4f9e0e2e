// Package health contiene los DTOs de /healthz y /readyz.
package health

import "time"

// HealthStatus es el estado de un componente.
type HealthStatus struct {
	Status  string `json:"status"` // "ok" | "error"
	Message string `json:"message,omitempty"`
}

// HealthResponse es la respuesta de /readyz.
type HealthResponse struct {
	Status      string                  `json:"status"` // "ready" | "unavailable"
	Components  map[string]HealthStatus `json:"components"`
	ActiveKeyID string                  `json:"active_kid,omitempty"`
	Version     string                  `json:"version,omitempty"`
	Timestamp   time.Time               `json:"timestamp"`
}
