// Package catalog resolves free-text material descriptions to canonical
// item codes.
package catalog

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/cases"

	"github.com/foundry-erp/foundry-erp/internal/shared"
)

// Resolver maps candidate codes and material names onto catalog codes.
type Resolver struct {
	repo RepositoryPort
}

// NewResolver constructs a Resolver.
func NewResolver(repo RepositoryPort) *Resolver {
	return &Resolver{repo: repo}
}

// ResolveItemCode returns the canonical code for ref, preferring in order:
// the candidate code when the catalog knows it under a matching name, a
// catalog entry matching name and normalized type, a catalog entry
// matching name alone, the candidate code as given, and finally a code
// derived from name and type. The empty string is returned only when ref
// carries neither a code nor a name; callers must treat that as
// unresolved and must not persist the line.
func (r *Resolver) ResolveItemCode(ctx context.Context, ref *ItemRef) (string, error) {
	if ref == nil {
		return "", errors.New("catalog: nil item ref")
	}
	code := strings.TrimSpace(ref.Code)
	if isPlaceholderCode(code) {
		code = ""
	}
	name := strings.TrimSpace(ref.MaterialName)
	if code == "" && name == "" {
		return "", nil
	}

	if code != "" && name != "" {
		item, err := r.repo.GetByCode(ctx, code)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return "", err
		}
		if err == nil && Normalize(item.Name) == Normalize(name) {
			r.correctType(ref, item)
			return item.Code, nil
		}
	}

	if name != "" {
		matches, err := r.repo.ListByName(ctx, Normalize(name))
		if err != nil {
			return "", err
		}
		wantType := Normalize(ref.MaterialType)
		for _, item := range matches {
			if Normalize(item.MaterialType) == wantType {
				r.correctType(ref, item)
				return item.Code, nil
			}
		}
		if len(matches) > 0 {
			item := matches[0]
			r.correctType(ref, item)
			return item.Code, nil
		}
	}

	if code != "" {
		return code, nil
	}
	return GenerateCode(name, ref.MaterialType), nil
}

func (r *Resolver) correctType(ref *ItemRef, item Item) {
	if item.MaterialType != "" && item.MaterialType != ref.MaterialType {
		ref.MaterialType = item.MaterialType
	}
}

// Normalize folds case and treats underscores and runs of whitespace as a
// single space, so "Mild_Steel" and "mild steel" compare equal.
func Normalize(s string) string {
	folded := cases.Fold().String(s)
	folded = strings.ReplaceAll(folded, "_", " ")
	return strings.Join(strings.Fields(folded), " ")
}

// GenerateCode derives a deterministic code from name and type, so the
// same unseen material always produces the same fresh code.
func GenerateCode(name, materialType string) string {
	code := slug(name)
	if t := slug(materialType); t != "" {
		code += "-" + t
	}
	return code
}

func slug(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func isPlaceholderCode(code string) bool {
	return Normalize(code) == "auto generated"
}
