package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foundry-erp/foundry-erp/internal/shared"
)

type memoryCatalog struct {
	items []Item
}

func (m *memoryCatalog) GetByCode(ctx context.Context, code string) (Item, error) {
	for _, item := range m.items {
		if item.Code == code {
			return item, nil
		}
	}
	return Item{}, shared.ErrNotFound
}

func (m *memoryCatalog) ListByName(ctx context.Context, normalizedName string) ([]Item, error) {
	var matches []Item
	for _, item := range m.items {
		if Normalize(item.Name) == normalizedName {
			matches = append(matches, item)
		}
	}
	return matches, nil
}

func TestResolvePrefersCandidateCodeWithMatchingName(t *testing.T) {
	repo := &memoryCatalog{items: []Item{
		{Code: "MS-ROD-8", Name: "MS Rod 8mm", MaterialType: "Raw Material"},
	}}
	r := NewResolver(repo)

	ref := &ItemRef{Code: "MS-ROD-8", MaterialName: "ms rod 8mm", MaterialType: "Raw Material"}
	code, err := r.ResolveItemCode(context.Background(), ref)
	require.NoError(t, err)
	require.Equal(t, "MS-ROD-8", code)
}

func TestResolveMatchesNameAndNormalizedType(t *testing.T) {
	repo := &memoryCatalog{items: []Item{
		{Code: "CU-WIRE", Name: "Copper Wire", MaterialType: "Raw_Material"},
		{Code: "CU-WIRE-FG", Name: "Copper Wire", MaterialType: "Finished Goods"},
	}}
	r := NewResolver(repo)

	ref := &ItemRef{MaterialName: "copper wire", MaterialType: "raw material"}
	code, err := r.ResolveItemCode(context.Background(), ref)
	require.NoError(t, err)
	require.Equal(t, "CU-WIRE", code)
	// The line is corrected to the catalog's spelling of the type.
	require.Equal(t, "Raw_Material", ref.MaterialType)
}

func TestResolveFallsBackToNameOnlyMatch(t *testing.T) {
	repo := &memoryCatalog{items: []Item{
		{Code: "CU-WIRE", Name: "Copper Wire", MaterialType: "Raw Material"},
	}}
	r := NewResolver(repo)

	ref := &ItemRef{MaterialName: "Copper Wire", MaterialType: "Consumable"}
	code, err := r.ResolveItemCode(context.Background(), ref)
	require.NoError(t, err)
	require.Equal(t, "CU-WIRE", code)
	require.Equal(t, "Raw Material", ref.MaterialType)
}

func TestResolveKeepsUnknownCandidateCode(t *testing.T) {
	r := NewResolver(&memoryCatalog{})
	ref := &ItemRef{Code: "EXT-99", MaterialName: "Unknown Bracket", MaterialType: "Bought Out"}
	code, err := r.ResolveItemCode(context.Background(), ref)
	require.NoError(t, err)
	require.Equal(t, "EXT-99", code)
}

func TestResolveGeneratesCodeFromNameAndType(t *testing.T) {
	r := NewResolver(&memoryCatalog{})
	ref := &ItemRef{Code: "Auto_Generated", MaterialName: "Hex Bolt M8", MaterialType: "Fastener"}
	code, err := r.ResolveItemCode(context.Background(), ref)
	require.NoError(t, err)
	require.Equal(t, "HEX-BOLT-M8-FASTENER", code)

	// Same inputs must regenerate the same code.
	again, err := r.ResolveItemCode(context.Background(), &ItemRef{MaterialName: "Hex Bolt M8", MaterialType: "Fastener"})
	require.NoError(t, err)
	require.Equal(t, code, again)
}

func TestResolveUnresolvedWhenNoCodeOrName(t *testing.T) {
	r := NewResolver(&memoryCatalog{})
	code, err := r.ResolveItemCode(context.Background(), &ItemRef{MaterialType: "Raw Material"})
	require.NoError(t, err)
	require.Empty(t, code)
}

func TestNormalizeTreatsUnderscoreAsSpace(t *testing.T) {
	require.Equal(t, Normalize("Mild_Steel"), Normalize("mild  steel"))
	require.Equal(t, "mild steel", Normalize("  MILD_STEEL "))
}

// The SQL lookup in ListByName applies the same transform, so any value
// Normalize produces must be stable under a second pass.
func TestNormalizeCollapsesWhitespaceRunsAndIsIdempotent(t *testing.T) {
	require.Equal(t, "ms rod 8mm", Normalize("MS  Rod\t8mm"))
	require.Equal(t, "copper wire", Normalize("Copper \n Wire"))
	for _, name := range []string{"MS  Rod\t8mm", " mild__steel ", "Copper Wire"} {
		once := Normalize(name)
		require.Equal(t, once, Normalize(once))
	}
}
