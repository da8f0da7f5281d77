package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"models":[
			{"name":"models/embedding-001","supportedGenerationMethods":["embedContent"]},
			{"name":42},
			{"displayName":"no name"},
			{"name":"models/gemini-pro","displayName":"Gemini Pro"}
		]}`)
	}))
	defer srv.Close()

	list, err := NewClient(srv.URL).ListModels(context.Background(), "secret")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "models/embedding-001", list[0].Name)
	assert.Equal(t, []string{"embedContent"}, list[0].SupportedGenerationMethods)
	assert.Equal(t, "models/gemini-pro", list[1].Name)
	assert.Equal(t, "Gemini Pro", list[1].DisplayName)
}

func TestListModelsNoCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	list, err := NewClient(srv.URL).ListModels(context.Background(), "k")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListModelsErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-success status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			io.WriteString(w, `{"error":{"code":403}}`)
		}},
		{"invalid JSON", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `<html>oops</html>`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewClient(srv.URL).ListModels(context.Background(), "k")
			assert.Error(t, err)
		})
	}
}

func TestGenerateContentRequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models%2Fgemini-pro:generateContent", r.URL.EscapedPath())
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Contents, 1)
		require.Len(t, body.Contents[0].Parts, 1)
		assert.Equal(t, "hello", body.Contents[0].Parts[0].Text)
		assert.Nil(t, body.GenerationConfig, "no sampling parameters unless configured")

		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"{}"}]}}]}`)
	}))
	defer srv.Close()

	doc, err := NewClient(srv.URL).GenerateContent(context.Background(), "secret", "models/gemini-pro", "hello")
	require.NoError(t, err)
	assert.JSONEq(t, `{"candidates":[{"content":{"parts":[{"text":"{}"}]}}]}`, string(doc))
}

func TestGenerateContentSendsGenerationConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"temperature": 0.4, "maxOutputTokens": float64(1024)}, body["generationConfig"])
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL).WithGenerationConfig(GenerationConfig{Temperature: 0.4, MaxOutputTokens: 1024})
	_, err := c.GenerateContent(context.Background(), "k", "models/gemini-pro", "p")
	require.NoError(t, err)
}

func TestWithZeroGenerationConfig(t *testing.T) {
	c := NewClient("").WithGenerationConfig(GenerationConfig{})
	assert.Nil(t, c.genConfig)
}

func TestNewClientLeavesDeadlineToContext(t *testing.T) {
	// A fixed transport timeout would cap longer configured deadlines.
	assert.Zero(t, NewClient("").httpClient.Timeout)
}

func TestGenerateContentWrapsNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream exploded")
	}))
	defer srv.Close()

	doc, err := NewClient(srv.URL).GenerateContent(context.Background(), "k", "models/gemini-pro", "p")
	require.NoError(t, err)
	assert.JSONEq(t, `{"rawText":"upstream exploded"}`, string(doc))
}

func TestGenerateContentKeepsErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":{"code":404,"message":"model not found"}}`)
	}))
	defer srv.Close()

	doc, err := NewClient(srv.URL).GenerateContent(context.Background(), "k", "models/text-bison-001", "p")
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":{"code":404,"message":"model not found"}}`, string(doc))
}

func TestGenerateContentTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewClient(srv.URL).GenerateContent(context.Background(), "k", "models/gemini-pro", "p")
	assert.Error(t, err)
}

func TestGenerateContentHonoursCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL).GenerateContent(ctx, "k", "models/gemini-pro", "p")
	assert.ErrorIs(t, err, context.Canceled)
}
