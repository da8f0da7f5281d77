package ai

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/thinkscotty/postcraft/internal/gemini"
	"github.com/thinkscotty/postcraft/internal/metrics"
	"github.com/thinkscotty/postcraft/internal/models"
	"github.com/thinkscotty/postcraft/internal/normalize"
)

// ErrMissingAPIKey is returned when no Gemini credential is configured.
var ErrMissingAPIKey = errors.New("gemini API key missing")

// Upstream is the generative language API as seen by the client.
type Upstream interface {
	gemini.ModelLister
	GenerateContent(ctx context.Context, apiKey, model, prompt string) (json.RawMessage, error)
}

// Client runs the generation pipeline: model selection, one generation call,
// and normalization of the reply.
type Client struct {
	upstream Upstream
	apiKey   string
	policy   gemini.SelectionPolicy
	timeout  time.Duration
}

type Options struct {
	APIKey  string
	Policy  gemini.SelectionPolicy
	Timeout time.Duration // per upstream call; zero means no extra deadline
}

func NewClient(upstream Upstream, opts Options) *Client {
	return &Client{
		upstream: upstream,
		apiKey:   opts.APIKey,
		policy:   opts.Policy,
		timeout:  opts.Timeout,
	}
}

// Result is one completed generation. Outcome.OK reports whether a JSON value
// could be extracted; when it could not, Model, Outcome and Upstream together
// describe every intermediate step.
type Result struct {
	Model     string
	Selection gemini.Selection
	Outcome   normalize.Outcome
	// Upstream is the full generation response document.
	Upstream json.RawMessage
}

// Generate validates req and runs the pipeline. It returns
// models.ErrMissingFields, ErrMissingAPIKey, or an upstream failure; a reply
// that cannot be parsed is not an error.
func (c *Client) Generate(ctx context.Context, req models.GenerationRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		metrics.RecordGeneration(metrics.OutcomeMissingFields)
		return nil, err
	}
	if c.apiKey == "" {
		metrics.RecordGeneration(metrics.OutcomeMissingKey)
		return nil, ErrMissingAPIKey
	}

	sel := c.selectModel(ctx)
	metrics.RecordSelection(sel.Source)

	doc, err := c.generate(ctx, sel.Name, gemini.BuildPrompt(req))
	if err != nil {
		metrics.RecordGeneration(metrics.OutcomeError)
		return nil, err
	}

	outcome := normalize.NormalizeDocument(doc)
	if outcome.OK {
		metrics.RecordGeneration(metrics.OutcomeSuccess)
		metrics.RecordStrategy(string(outcome.Strategy))
		slog.Debug("Generation normalized", "model", sel.Name, "strategy", outcome.Strategy)
	} else {
		metrics.RecordGeneration(metrics.OutcomeParseFail)
		slog.Warn("Could not extract JSON from model reply", "model", sel.Name, "raw_len", len(outcome.Raw))
	}

	return &Result{
		Model:     sel.Name,
		Selection: sel,
		Outcome:   outcome,
		Upstream:  doc,
	}, nil
}

// Models lists the upstream models and the one the selector would choose.
func (c *Client) Models(ctx context.Context) ([]models.ModelDescriptor, gemini.Selection, error) {
	if c.apiKey == "" {
		return nil, gemini.Selection{}, ErrMissingAPIKey
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	list, err := c.upstream.ListModels(ctx, c.apiKey)
	if err != nil {
		return nil, gemini.Selection{Name: c.policy.DefaultModel, Source: gemini.SourceListingFailed}, err
	}
	return list, gemini.ChooseModel(list, c.policy), nil
}

func (c *Client) selectModel(ctx context.Context) gemini.Selection {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return gemini.SelectModel(ctx, c.upstream, c.apiKey, c.policy)
}

func (c *Client) generate(ctx context.Context, model, prompt string) (json.RawMessage, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.upstream.GenerateContent(ctx, c.apiKey, model, prompt)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}
