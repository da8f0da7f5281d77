package gemini

// Request types for the v1beta REST API.

type GenerateRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type Content struct {
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

// GenerationConfig holds optional sampling parameters. Zero fields are omitted.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// --- Model listing ---

// Selection source values.
const (
	SourcePrimary       = "primary"
	SourceLegacy        = "legacy"
	SourceDefault       = "default"
	SourceListingFailed = "listing_failed"
)

// Selection is the model chosen for one generation.
type Selection struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// SelectionPolicy names the families the selector looks for, in order.
type SelectionPolicy struct {
	PrimaryFamily  string
	LegacyFamilies []string
	DefaultModel   string
}

// DefaultPolicy prefers Gemini models, then the PaLM bison models.
func DefaultPolicy() SelectionPolicy {
	return SelectionPolicy{
		PrimaryFamily:  "gemini",
		LegacyFamilies: []string{"text-bison", "chat-bison"},
		DefaultModel:   "models/text-bison-001",
	}
}
