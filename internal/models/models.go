package models

import (
	"errors"
	"strings"
	"time"
)

// ErrMissingFields is returned when topic, tone or platform is empty.
var ErrMissingFields = errors.New("topic, tone and platform are required")

type GenerationRequest struct {
	Topic         string `json:"topic"`
	Tone          string `json:"tone"`
	Platform      string `json:"platform"`
	BrandKeywords string `json:"brandKeywords"`
}

// Validate reports ErrMissingFields if any required field is empty.
// brandKeywords is optional and defaults to "".
func (r GenerationRequest) Validate() error {
	if r.Topic == "" || r.Tone == "" || r.Platform == "" {
		return ErrMissingFields
	}
	return nil
}

type ModelDescriptor struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName,omitempty"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods,omitempty"`
}

// SupportsGenerate reports whether the descriptor advertises generateContent.
// Descriptors without a method list are assumed to support it.
func (m ModelDescriptor) SupportsGenerate() bool {
	if len(m.SupportedGenerationMethods) == 0 {
		return true
	}
	for _, method := range m.SupportedGenerationMethods {
		if strings.EqualFold(method, "generateContent") {
			return true
		}
	}
	return false
}

type GeneratedPackage struct {
	MainPost    string   `json:"main_post"`
	Variants    []string `json:"variants"`
	Hashtags    []string `json:"hashtags"`
	ImagePrompt string   `json:"imagePrompt"`
}

// ContentPackage is a generated package together with the form it came from,
// as kept in the local gallery.
type ContentPackage struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	Tone        string    `json:"tone"`
	Platform    string    `json:"platform"`
	MainPost    string    `json:"main_post"`
	Variants    []string  `json:"variants"`
	Hashtags    []string  `json:"hashtags"`
	ImagePrompt string    `json:"imagePrompt"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewContentPackage combines a request and its generated package.
func NewContentPackage(req GenerationRequest, pkg GeneratedPackage, now time.Time) ContentPackage {
	return ContentPackage{
		Topic:       req.Topic,
		Tone:        req.Tone,
		Platform:    req.Platform,
		MainPost:    pkg.MainPost,
		Variants:    pkg.Variants,
		Hashtags:    pkg.Hashtags,
		ImagePrompt: pkg.ImagePrompt,
		CreatedAt:   now.UTC(),
	}
}

// Generated returns the generated part of the package.
func (p ContentPackage) Generated() GeneratedPackage {
	return GeneratedPackage{
		MainPost:    p.MainPost,
		Variants:    p.Variants,
		Hashtags:    p.Hashtags,
		ImagePrompt: p.ImagePrompt,
	}
}
