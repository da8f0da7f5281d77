package gemini

import (
	"context"
	"log/slog"
	"strings"

	"github.com/thinkscotty/postcraft/internal/models"
)

// ModelLister is the part of the client the selector needs.
type ModelLister interface {
	ListModels(ctx context.Context, apiKey string) ([]models.ModelDescriptor, error)
}

// SelectModel picks the model to generate with. It never fails: a listing
// error or an empty match falls back to policy.DefaultModel.
func SelectModel(ctx context.Context, lister ModelLister, apiKey string, policy SelectionPolicy) Selection {
	list, err := lister.ListModels(ctx, apiKey)
	if err != nil {
		slog.Warn("Model listing failed, using default model", "model", policy.DefaultModel, "error", err)
		return Selection{Name: policy.DefaultModel, Source: SourceListingFailed}
	}
	return ChooseModel(list, policy)
}

// ChooseModel applies the family preference to an already fetched listing.
// The first match in upstream order wins.
func ChooseModel(list []models.ModelDescriptor, policy SelectionPolicy) Selection {
	if policy.PrimaryFamily != "" {
		if name, ok := firstMatch(list, []string{policy.PrimaryFamily}); ok {
			return Selection{Name: name, Source: SourcePrimary}
		}
	}
	if name, ok := firstMatch(list, policy.LegacyFamilies); ok {
		return Selection{Name: name, Source: SourceLegacy}
	}
	return Selection{Name: policy.DefaultModel, Source: SourceDefault}
}

func firstMatch(list []models.ModelDescriptor, tokens []string) (string, bool) {
	for _, m := range list {
		name := strings.ToLower(m.Name)
		for _, tok := range tokens {
			if tok != "" && strings.Contains(name, strings.ToLower(tok)) {
				return m.Name, true
			}
		}
	}
	return "", false
}
