package openapi

import (
	"encoding/json"
	"net/http"
)

const version = "3.1.0"

// Spec is the generated OpenAPI document.
type Spec struct {
	OpenAPI    string               `json:"openapi"`
	Info       *Info                `json:"info"`
	Servers    []*Server            `json:"servers,omitempty"`
	Paths      map[string]*PathItem `json:"paths"`
	Components *Components          `json:"components,omitempty"`
}

// NewSpec starts a document described by cfg. Each server URL, usually the
// API base path, is listed under servers.
func NewSpec(cfg *Config, apiVersion string, servers ...string) *Spec {
	s := &Spec{
		OpenAPI: version,
		Info: &Info{
			Title:       cfg.Title,
			Version:     apiVersion,
			Description: cfg.Description,
		},
		Components: NewComponents(),
		Paths:      make(map[string]*PathItem),
	}
	for _, url := range servers {
		s.Servers = append(s.Servers, &Server{URL: url})
	}
	return s
}

// Handler serializes s once and returns a handler serving the bytes.
// Routes added to s afterwards are not reflected.
func (s *Spec) Handler() (http.HandlerFunc, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write(data)
	}, nil
}
