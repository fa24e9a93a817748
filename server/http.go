// Package server exposes policy resolution over HTTP.
package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/policytraits/config"
	"github.com/c360studio/policytraits/metrics"
	"github.com/c360studio/policytraits/policy"
	"github.com/c360studio/policytraits/trait"
)

// maxResolveBodySize limits the size of resolve request bodies.
const maxResolveBodySize = 1 << 20 // 1 MB

// RequestIDHeader carries the caller's request ID. One is generated when absent.
const RequestIDHeader = "X-Request-ID"

// PolicyHTTPHandler provides HTTP endpoints for resolving policies.
type PolicyHTTPHandler struct {
	resolver *policy.Resolver
	logger   *slog.Logger
}

// NewPolicyHTTPHandler creates a new HTTP handler backed by resolver.
func NewPolicyHTTPHandler(resolver *policy.Resolver, logger *slog.Logger) *PolicyHTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PolicyHTTPHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// RegisterHTTPHandlers registers the policy API endpoints under prefix.
func (h *PolicyHTTPHandler) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	prefix = strings.TrimSuffix(prefix, "/")

	// POST /resolve - Resolve a trait list, optionally converting from a base policy
	mux.HandleFunc("POST "+prefix+"/resolve", h.handleResolve)

	// GET /categories - Registry order, defaults and convertibility
	mux.HandleFunc("GET "+prefix+"/categories", h.handleCategories)
}

// ResolveRequest is the request body for POST /resolve.
// When Base is set, the base policy is resolved first and converted into
// the shape described by Traits.
type ResolveRequest struct {
	Traits []config.TraitConfig `json:"traits" yaml:"traits"`
	Base   []config.TraitConfig `json:"base,omitempty" yaml:"base,omitempty"`
}

// ResolveResponse is the response for POST /resolve.
type ResolveResponse struct {
	RequestID string            `json:"request_id"`
	Policy    policy.Descriptor `json:"policy"`
	Explicit  int               `json:"explicit"`
}

// ErrorResponse is returned for failed requests.
type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorType string `json:"error_type,omitempty"`
}

// CategoryInfo describes one registry category.
type CategoryInfo struct {
	Category    trait.Category `json:"category"`
	Default     string         `json:"default"`
	DependsOn   []string       `json:"depends_on,omitempty"`
	Convertible bool           `json:"convertible"`
}

func (h *PolicyHTTPHandler) handleResolve(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	w.Header().Set(RequestIDHeader, requestID)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxResolveBodySize+1))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, ErrorResponse{Error: "failed to read body"})
		return
	}
	if len(body) > maxResolveBodySize {
		h.writeError(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large"})
		return
	}

	var req ResolveRequest
	if err := decodeBody(r.Header.Get("Content-Type"), body, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	d, err := h.resolve(req)
	if err != nil {
		h.logger.Debug("Resolve request rejected", "request_id", requestID, "error", err)
		h.writeError(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:     err.Error(),
			ErrorType: metrics.ErrorType(err),
		})
		return
	}

	h.logger.Debug("Resolve request served", "request_id", requestID, "explicit", len(d.Explicit()))
	h.writeJSON(w, http.StatusOK, ResolveResponse{RequestID: requestID, Policy: d, Explicit: len(d.Explicit())})
}

func (h *PolicyHTTPHandler) resolve(req ResolveRequest) (policy.Descriptor, error) {
	items := config.PolicyConfig{Traits: req.Traits}.Items()
	if len(req.Base) == 0 {
		return h.resolver.Resolve(items...)
	}

	base, err := h.resolver.Resolve(config.PolicyConfig{Traits: req.Base}.Items()...)
	if err != nil {
		return policy.Descriptor{}, err
	}
	return h.resolver.Convert(base, items...)
}

func (h *PolicyHTTPHandler) handleCategories(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, Categories(h.resolver.Registry()))
}

// Categories describes every category of reg in registry order.
func Categories(reg *trait.Registry) []CategoryInfo {
	cats := reg.Categories()
	infos := make([]CategoryInfo, 0, len(cats))
	defaults := policy.NewResolver(reg).Legacy().Report()
	for _, cat := range cats {
		spec := reg.Spec(cat)
		info := CategoryInfo{
			Category:    cat,
			Default:     defaults[cat].Value,
			Convertible: spec.Convertible(),
		}
		for _, dep := range spec.DependsOn() {
			info.DependsOn = append(info.DependsOn, dep.String())
		}
		infos = append(infos, info)
	}
	return infos
}

func decodeBody(contentType string, body []byte, v any) error {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return yaml.Unmarshal(body, v)
	}
	return json.Unmarshal(body, v)
}

func (h *PolicyHTTPHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("Failed to write response", "error", err)
	}
}

// writeError writes an error response.
func (h *PolicyHTTPHandler) writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	h.writeJSON(w, status, resp)
}
