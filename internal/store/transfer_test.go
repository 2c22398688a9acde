package store

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acorn/internal/core"
)

func TestExport_Document(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	require.True(t, s.Add(ctx, record("a", "Cafe", 4)))
	require.True(t, s.AddCustomCategory(ctx, core.CustomCategory{ID: "garden", Name: "Garden"}))

	data, ok := s.Export(ctx)
	require.True(t, ok)
	assert.True(t, strings.Contains(string(data), "\n  \"version\""), "export is indented with two spaces")

	var doc ExportDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, SchemaVersion, doc.Version)
	assert.Equal(t, "2024-03-15T12:00:00.000Z", doc.ExportDate)
	assert.Len(t, doc.Expenses, 1)
	assert.Len(t, doc.CustomCategories, 1)
}

func TestExport_EmptyStoreHasArrays(t *testing.T) {
	s, _ := newTestStore(t)
	data, ok := s.Export(context.Background())
	require.True(t, ok)
	assert.Contains(t, string(data), `"expenses": []`)
	assert.Contains(t, string(data), `"customCategories": []`)
}

func TestImport_MalformedJSON(t *testing.T) {
	s, _ := newTestStore(t)
	res := s.Import(context.Background(), []byte("not json"))
	assert.False(t, res.Success)
	assert.True(t, strings.HasPrefix(res.Message, "Import failed: "), res.Message)
}

func TestImport_MissingExpensesArray(t *testing.T) {
	ctx := context.Background()
	for _, doc := range []string{`{}`, `{"expenses":"nope"}`, `{"expenses":null}`} {
		s, _ := newTestStore(t)
		res := s.Import(ctx, []byte(doc))
		assert.False(t, res.Success, doc)
		assert.Equal(t, "Invalid data format: expenses array not found", res.Message, doc)
	}
}

func TestImport_SkipsKnownIDs(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	require.True(t, s.Add(ctx, record("a", "Cafe", 4)))

	doc := `{"version":"1.0.0","expenses":[
		{"id":"a","amount":99,"merchant":"Changed"},
		{"id":"b","amount":10,"merchant":"Books"},
		{"id":"c","amount":"7.5","merchant":"Bus"}
	]}`
	res := s.Import(ctx, []byte(doc))

	require.True(t, res.Success)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, "Successfully imported 2 expenses", res.Message)

	records := s.Load(ctx)
	require.Len(t, records, 3)
	a, _ := s.Get(ctx, "a")
	assert.Equal(t, "Cafe", a.Merchant, "existing record is not overwritten")
	c, _ := s.Get(ctx, "c")
	assert.Equal(t, core.Amount(7.5), c.Amount)
}

func TestImport_ExportRoundTripIsIdempotent(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestStore(t)
	require.True(t, src.Add(ctx, record("a", "Cafe", 4)))
	require.True(t, src.Add(ctx, record("b", "Rent", 1200)))
	data, ok := src.Export(ctx)
	require.True(t, ok)

	dst, _ := newTestStore(t)
	first := dst.Import(ctx, data)
	require.True(t, first.Success)
	assert.Equal(t, 2, first.Imported)

	second := dst.Import(ctx, data)
	require.True(t, second.Success)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, "Successfully imported 0 expenses", second.Message)
	assert.Equal(t, src.Load(ctx), dst.Load(ctx))
}

// Custom categories are appended without an id check, so importing the same
// document twice duplicates them.
func TestImport_CustomCategoriesAppendWithoutCollisionCheck(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	doc := []byte(`{"expenses":[],"customCategories":[{"id":"food","name":"My Food"}]}`)

	require.True(t, s.Import(ctx, doc).Success)
	require.True(t, s.Import(ctx, doc).Success)

	cats := s.LoadCustomCategories(ctx)
	assert.Len(t, cats, 2)
	assert.Equal(t, "Food & Dining", core.ResolveCategory("food", cats).Name, "built-in wins over a shadowing custom id")
}
