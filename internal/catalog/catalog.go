// Package catalog is the read-only menu collaborator. The catalog
// service owns menu items; this package only fetches and indexes them.
package catalog

import (
	"context"
	"fmt"

	"github.com/Kishore-028/KoreConnect/internal/domain"
)

// Source lists the current menu. Satisfied by rest.Client.
type Source interface {
	ListMenu(ctx context.Context) ([]domain.MenuItem, error)
}

// Index resolves menu items by id for order building.
type Index struct {
	byID map[string]domain.MenuItem
}

func NewIndex(items []domain.MenuItem) *Index {
	byID := make(map[string]domain.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return &Index{byID: byID}
}

func (i *Index) Lookup(id string) (domain.MenuItem, bool) {
	item, ok := i.byID[id]
	return item, ok
}

func (i *Index) Len() int {
	return len(i.byID)
}

// Fetch lists the menu from the source and indexes it.
func Fetch(ctx context.Context, src Source) (*Index, error) {
	items, err := src.ListMenu(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu: %w", err)
	}
	return NewIndex(items), nil
}
