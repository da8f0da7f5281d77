package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/thinkscotty/postcraft/internal/metrics"
	"github.com/thinkscotty/postcraft/internal/models"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com"

type Client struct {
	httpClient *http.Client
	baseURL    string
	tracer     trace.Tracer
	genConfig  *GenerationConfig
}

// NewClient creates a client for the v1beta REST API rooted at baseURL.
// An empty baseURL selects the public endpoint. Requests are bounded only by
// the caller's context.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		tracer:     otel.Tracer("github.com/thinkscotty/postcraft/internal/gemini"),
	}
}

// WithGenerationConfig sets the sampling parameters sent with every
// generation. A zero config sends none, leaving the model defaults.
func (c *Client) WithGenerationConfig(gc GenerationConfig) *Client {
	if gc == (GenerationConfig{}) {
		c.genConfig = nil
	} else {
		c.genConfig = &gc
	}
	return c
}

// ListModels returns the model descriptors from the listing endpoint, in
// upstream order. Entries whose name is not a string are skipped.
func (c *Client) ListModels(ctx context.Context, apiKey string) ([]models.ModelDescriptor, error) {
	ctx, span := c.tracer.Start(ctx, "gemini.ListModels")
	defer span.End()

	endpoint := c.baseURL + "/v1beta/models?" + url.Values{"key": {apiKey}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream("list_models", 0, err, time.Since(start))
		fail(span, err)
		return nil, fmt.Errorf("list models request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.ObserveUpstream("list_models", resp.StatusCode, nil, time.Since(start))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fail(span, err)
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("list models failed: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		fail(span, err)
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		err := fmt.Errorf("list models returned invalid JSON")
		fail(span, err)
		return nil, err
	}

	var out []models.ModelDescriptor
	gjson.GetBytes(body, "models").ForEach(func(_, m gjson.Result) bool {
		name := m.Get("name")
		if name.Type != gjson.String {
			return true
		}
		d := models.ModelDescriptor{
			Name:        name.Str,
			DisplayName: m.Get("displayName").String(),
		}
		for _, method := range m.Get("supportedGenerationMethods").Array() {
			d.SupportedGenerationMethods = append(d.SupportedGenerationMethods, method.String())
		}
		out = append(out, d)
		return true
	})

	span.SetAttributes(attribute.Int("gemini.models", len(out)))
	return out, nil
}

// GenerateContent sends a single-turn prompt to model and returns the
// response body as a JSON document. The status code is not interpreted; the
// body of an error response is returned like any other. A body that is not
// JSON is wrapped as {"rawText": body}.
func (c *Client) GenerateContent(ctx context.Context, apiKey, model, prompt string) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "gemini.GenerateContent",
		trace.WithAttributes(attribute.String("gemini.model", model)))
	defer span.End()

	reqBody := GenerateRequest{
		Contents: []Content{{
			Parts: []Part{{Text: prompt}},
		}},
		GenerationConfig: c.genConfig,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + "/v1beta/" + url.PathEscape(model) + ":generateContent?" + url.Values{"key": {apiKey}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream("generate", 0, err, time.Since(start))
		fail(span, err)
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	metrics.ObserveUpstream("generate", resp.StatusCode, err, time.Since(start))
	if err != nil {
		fail(span, err)
		return nil, fmt.Errorf("read response: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		slog.Warn("Gemini returned non-OK status", "model", model, "status", resp.StatusCode)
	}

	if !json.Valid(body) {
		wrapped, err := json.Marshal(map[string]string{"rawText": string(body)})
		if err != nil {
			return nil, fmt.Errorf("wrap raw response: %w", err)
		}
		return wrapped, nil
	}
	return body, nil
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
