// Package gallery keeps generated content packages on the local machine,
// newest first.
package gallery

import (
	"fmt"
	"time"

	"github.com/thinkscotty/postcraft/internal/models"
)

// Key is the store key holding the package list.
const Key = "ai_content_packages"

// KV is the storage the gallery needs.
type KV interface {
	GetJSON(key string, v any) (bool, error)
	SetJSON(key string, v any) error
}

type Gallery struct {
	kv  KV
	now func() time.Time
}

func New(kv KV) *Gallery {
	return &Gallery{kv: kv, now: time.Now}
}

// List returns the saved packages, newest first. A missing or unreadable list
// is empty.
func (g *Gallery) List() ([]models.ContentPackage, error) {
	var items []models.ContentPackage
	found, err := g.kv.GetJSON(Key, &items)
	if err != nil || !found {
		return nil, err
	}
	return items, nil
}

// Add prepends pkg, assigning an ID and creation time if they are unset.
func (g *Gallery) Add(pkg models.ContentPackage) (models.ContentPackage, error) {
	now := g.now()
	if pkg.ID == "" {
		pkg.ID = fmt.Sprintf("ai-%d", now.UnixMilli())
	}
	if pkg.CreatedAt.IsZero() {
		pkg.CreatedAt = now.UTC()
	}

	items, err := g.List()
	if err != nil {
		return pkg, err
	}
	items = append([]models.ContentPackage{pkg}, items...)
	if err := g.kv.SetJSON(Key, items); err != nil {
		return pkg, fmt.Errorf("save gallery: %w", err)
	}
	return pkg, nil
}

// Get returns the package with the given ID.
func (g *Gallery) Get(id string) (models.ContentPackage, bool, error) {
	items, err := g.List()
	if err != nil {
		return models.ContentPackage{}, false, err
	}
	for _, it := range items {
		if it.ID == id {
			return it, true, nil
		}
	}
	return models.ContentPackage{}, false, nil
}

// Remove deletes the package with the given ID and reports whether it existed.
func (g *Gallery) Remove(id string) (bool, error) {
	items, err := g.List()
	if err != nil {
		return false, err
	}

	kept := items[:0]
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return false, nil
	}
	if err := g.kv.SetJSON(Key, kept); err != nil {
		return false, fmt.Errorf("save gallery: %w", err)
	}
	return true, nil
}

// Stats summarizes the gallery.
type Stats struct {
	TotalPosts    int
	Platforms     int // distinct platform names
	TotalVariants int
	// LastGenerated is the newest package's creation time, zero when empty.
	LastGenerated time.Time
}

func (g *Gallery) Stats() (Stats, error) {
	items, err := g.List()
	if err != nil {
		return Stats{}, err
	}

	st := Stats{TotalPosts: len(items)}
	platforms := map[string]struct{}{}
	for _, it := range items {
		platforms[it.Platform] = struct{}{}
		st.TotalVariants += len(it.Variants)
	}
	st.Platforms = len(platforms)
	if len(items) > 0 {
		st.LastGenerated = items[0].CreatedAt
	}
	return st, nil
}
