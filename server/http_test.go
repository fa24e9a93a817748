package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/policytraits/metrics"
	"github.com/c360studio/policytraits/policy"
	"github.com/c360studio/policytraits/trait"
)

func newTestServer(t *testing.T, reg *trait.Registry) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewPolicyHTTPHandler(policy.NewResolver(reg, policy.WithLogger(logger)), logger)

	mux := http.NewServeMux()
	h.RegisterHTTPHandlers("/api/", mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type reportEntry struct {
	Category   string `json:"category"`
	Value      string `json:"value"`
	Provenance string `json:"provenance"`
}

type resolveResult struct {
	RequestID string        `json:"request_id"`
	Policy    []reportEntry `json:"policy"`
	Explicit  int           `json:"explicit"`
}

func post(t *testing.T, url, contentType, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, contentType, strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestResolve_JSON(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := post(t, srv.URL+"/api/resolve", "application/json",
		`{"traits":[{"kind":"execution_space","value":"cuda"},{"kind":"schedule","value":"dynamic"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got resolveResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 2, got.Explicit)
	require.Len(t, got.Policy, trait.NumCategories)
	assert.Equal(t, reportEntry{"execution_space", "Cuda", "explicit"}, got.Policy[trait.CategoryExecutionSpace])
	assert.Equal(t, reportEntry{"index_type", "uint32", "defaulted"}, got.Policy[trait.CategoryIndexType])
	assert.Equal(t, reportEntry{"schedule", "dynamic", "explicit"}, got.Policy[trait.CategorySchedule])
}

func TestResolve_YAML(t *testing.T) {
	srv := newTestServer(t, nil)

	body := `
traits:
  - kind: index_type
    value: IndexType<int32>
`
	resp := post(t, srv.URL+"/api/resolve", "application/yaml; charset=utf-8", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got resolveResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "IndexType<int32>", got.Policy[trait.CategoryIndexType].Value)
}

func TestResolve_TraitErrors(t *testing.T) {
	srv := newTestServer(t, trait.NewRegistry(trait.WithNonConvertible(trait.CategorySchedule)))

	tests := []struct {
		name     string
		body     string
		wantType string
	}{
		{
			name:     "duplicate",
			body:     `{"traits":[{"kind":"schedule","value":"static"},{"kind":"schedule","value":"dynamic"}]}`,
			wantType: metrics.ErrorDuplicate,
		},
		{
			name:     "unrecognized",
			body:     `{"traits":[{"kind":"color","value":"red"}]}`,
			wantType: metrics.ErrorUnrecognized,
		},
		{
			name:     "incompatible conversion",
			body:     `{"base":[{"kind":"schedule","value":"static"}],"traits":[{"kind":"schedule","value":"dynamic"}]}`,
			wantType: metrics.ErrorIncompatible,
		},
		{
			name:     "invalid base",
			body:     `{"base":[{"kind":"schedule","value":"sometimes"}],"traits":[]}`,
			wantType: metrics.ErrorUnrecognized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/api/resolve", "application/json", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

			var got ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, tt.wantType, got.ErrorType)
			assert.NotEmpty(t, got.Error)
		})
	}
}

func TestResolve_Convert(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := post(t, srv.URL+"/api/resolve", "application/json",
		`{"base":[{"kind":"execution_space","value":"hip"},{"kind":"index_type","value":"int64"}],"traits":[{"kind":"schedule","value":"dynamic"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got resolveResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 3, got.Explicit)
	assert.Equal(t, "HIP", got.Policy[trait.CategoryExecutionSpace].Value)
	assert.Equal(t, reportEntry{"index_type", "int64", "explicit"}, got.Policy[trait.CategoryIndexType])
}

func TestResolve_BadBody(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := post(t, srv.URL+"/api/resolve", "application/json", `{"traits":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, srv.URL+"/api/resolve", "application/yaml", "traits: [unclosed")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCategoriesEndpoint(t *testing.T) {
	srv := newTestServer(t, trait.NewRegistry(trait.WithDefaultExecutionSpace(trait.Cuda)))

	resp, err := http.Get(srv.URL + "/api/categories")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []CategoryInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, trait.NumCategories)
	assert.Equal(t, "Cuda", got[trait.CategoryExecutionSpace].Default)
	assert.Equal(t, "uint32", got[trait.CategoryIndexType].Default)
	assert.Equal(t, []string{"execution_space"}, got[trait.CategoryIndexType].DependsOn)
	assert.True(t, got[trait.CategoryWorkTag].Convertible)
}

func TestResolve_RequestID(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := post(t, srv.URL+"/api/resolve", "application/json", `{"traits":[]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	generated := resp.Header.Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)

	var got resolveResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, generated, got.RequestID)
	assert.Equal(t, 0, got.Explicit)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/resolve", strings.NewReader(`{"traits":[{"kind":"schedule","value":"static"},{"kind":"schedule","value":"static"}]}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, "caller-42")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "caller-42", resp.Header.Get(RequestIDHeader))
}
