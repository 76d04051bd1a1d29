package catalog

import "time"

// Item is a canonical catalog entry for a physical material.
type Item struct {
	ID           int64
	Code         string
	Name         string
	MaterialType string
	Unit         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ItemRef is a caller-owned line reference passed through resolution.
// ResolveItemCode corrects MaterialType in place when the catalog
// disagrees, so the same physical item is not re-registered under a
// differently spelled type.
type ItemRef struct {
	Code         string
	MaterialName string
	MaterialType string
}
