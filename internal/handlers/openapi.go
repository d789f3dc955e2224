package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

// OpenAPIHandler serves the API description as YAML and as JSON
type OpenAPIHandler struct {
	path string

	once    sync.Once
	yamlDoc []byte
	jsonDoc []byte
	loadErr error
}

// NewOpenAPIHandler creates a handler for the YAML document at path. The file is read on first request.
func NewOpenAPIHandler(path string) *OpenAPIHandler {
	return &OpenAPIHandler{path: path}
}

// RegisterRoutes registers OpenAPI routes
func (h *OpenAPIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/openapi.yaml", h.ServeYAML).Methods(http.MethodGet)
	r.HandleFunc("/api/openapi.json", h.ServeJSON).Methods(http.MethodGet)
}

func (h *OpenAPIHandler) load() {
	h.once.Do(func() {
		data, err := os.ReadFile(h.path)
		if err != nil {
			h.loadErr = err
			return
		}
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			h.loadErr = fmt.Errorf("failed to parse OpenAPI document: %w", err)
			return
		}
		encoded, err := json.Marshal(doc)
		if err != nil {
			h.loadErr = fmt.Errorf("failed to encode OpenAPI document: %w", err)
			return
		}
		h.yamlDoc = data
		h.jsonDoc = encoded
	})
}

// ServeYAML serves the document as stored
func (h *OpenAPIHandler) ServeYAML(w http.ResponseWriter, r *http.Request) {
	h.load()
	if h.loadErr != nil {
		respondError(w, http.StatusNotFound, "OpenAPI document not found")
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(h.yamlDoc)
}

// ServeJSON serves the document converted to JSON
func (h *OpenAPIHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	h.load()
	if h.loadErr != nil {
		respondError(w, http.StatusNotFound, "OpenAPI document not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.jsonDoc)
}
