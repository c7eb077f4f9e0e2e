package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type client struct {
	BaseURL   string
	APIKey    string
	Header    string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
	Out       io.Writer
}

// apiError es el cuerpo de error estándar del servicio.
type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Detail  string            `json:"detail,omitempty"`
	Fields  map[string]string `json:"validationErrors,omitempty"`
}

func (c *client) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		rd = bytes.NewReader(b)
	}
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return 0, nil, err
	}
	if c.APIKey != "" {
		req.Header.Set(c.Header, c.APIKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, b, nil
}

// call ejecuta el request y convierte respuestas no-2xx en error legible.
func (c *client) call(ctx context.Context, method, path string, body any) ([]byte, error) {
	status, b, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		var ae apiError
		if json.Unmarshal(b, &ae) == nil && ae.Code != "" {
			msg := fmt.Sprintf("%s (status=%d): %s", ae.Code, status, ae.Message)
			if ae.Detail != "" {
				msg += ": " + ae.Detail
			}
			for f, reason := range ae.Fields {
				msg += fmt.Sprintf("\n  %s: %s", f, reason)
			}
			return nil, fmt.Errorf("%s", msg)
		}
		return nil, fmt.Errorf("status=%d body=%s", status, strings.TrimSpace(string(b)))
	}
	return b, nil
}

// print escribe la respuesta: JSON indentado con --out json, y con text
// aplica render si no es nil.
func (c *client) print(body []byte, render func(v any) string) {
	var v any
	if len(body) == 0 {
		fmt.Fprintln(c.Out, "ok")
		return
	}
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Fprintln(c.Out, string(body))
		return
	}
	if c.OutFormat == "json" || render == nil {
		p, _ := json.MarshalIndent(v, "", "  ")
		fmt.Fprintln(c.Out, string(p))
		return
	}
	fmt.Fprint(c.Out, render(v))
}
