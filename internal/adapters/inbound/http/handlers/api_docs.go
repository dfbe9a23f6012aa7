package handlers

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	APIDocsPath     = "/v3/api-docs"
	APIDocsYAMLPath = "/v3/api-docs.yaml"
)

//go:embed openapi.yaml
var openAPISource []byte

// LoadOpenAPI parses and validates the embedded API description.
func LoadOpenAPI() (*openapi3.T, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(openAPISource)
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validating OpenAPI document: %w", err)
	}

	return doc, nil
}

type APIDocsHandler struct {
	document []byte
}

func NewAPIDocsHandler(doc *openapi3.T) (*APIDocsHandler, error) {
	document, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding OpenAPI document: %w", err)
	}

	return &APIDocsHandler{document: document}, nil
}

func (h *APIDocsHandler) JSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(contentTypeHeader, applicationJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.document)
}

func (h *APIDocsHandler) YAML(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(contentTypeHeader, "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPISource)
}
