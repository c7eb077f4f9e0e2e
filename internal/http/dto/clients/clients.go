// Package clients contiene los DTOs de /api/clients.
package clients

import "time"

// CreateClientRequest es el body de POST /api/clients.
// ClientID y ClientSecret son opcionales: si vienen vacíos el servidor los genera.
type CreateClientRequest struct {
	ClientID                     string   `json:"clientId,omitempty"`
	ClientSecret                 string   `json:"clientSecret,omitempty"`
	ClientName                   string   `json:"clientName"`
	Scopes                       []string `json:"scopes,omitempty"`
	AccessTokenTimeToLiveSeconds *int64   `json:"accessTokenTimeToLiveSeconds,omitempty"`
}

// CreateClientResponse incluye el secreto en claro. Es la única vez que se devuelve.
type CreateClientResponse struct {
	ClientID                     string    `json:"clientId"`
	ClientSecret                 string    `json:"clientSecret"`
	ClientName                   string    `json:"clientName"`
	Scopes                       []string  `json:"scopes"`
	AccessTokenTimeToLiveSeconds int64     `json:"accessTokenTimeToLiveSeconds"`
	CreatedAt                    time.Time `json:"createdAt"`
}

// ClientResponse es la respuesta de GET /api/clients/{clientId}.
type ClientResponse struct {
	ClientID         string    `json:"clientId"`
	ClientName       string    `json:"clientName"`
	Scopes           []string  `json:"scopes"`
	ClientIDIssuedAt time.Time `json:"clientIdIssuedAt"`
}
