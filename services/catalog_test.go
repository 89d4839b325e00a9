package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunalchandran/grocery-backend/models"
	"github.com/gunalchandran/grocery-backend/store"
	"github.com/gunalchandran/grocery-backend/uploads"
)

func newCatalog(t *testing.T) (*Catalog, *store.MemoryStore, *fakeImages) {
	t.Helper()
	s := store.NewMemoryStore()
	images := &fakeImages{}
	return NewCatalog(s, images), s, images
}

func TestCatalogCreate(t *testing.T) {
	ctx := context.Background()
	c, s, images := newCatalog(t)

	id, err := c.Create(ctx, ProductForm{
		Name:  strPtr("Amul Milk"),
		Brand: strPtr("Amul"),
		Price: strPtr("45.50"),
		Stock: strPtr("12"),
	}, &multipart.FileHeader{Filename: "milk.png"})
	require.NoError(t, err)
	assert.Equal(t, []string{"milk.png"}, images.saved)

	p, err := s.FindProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Amul Milk", p.Name)
	assert.Equal(t, 45.5, p.Price)
	assert.Equal(t, 12, p.Stock)
	assert.Equal(t, 1, p.SchemaVersion)
	assert.Equal(t, "http://localhost:5000/uploads/abc123_milk.png", p.ImageURL)
}

func TestCatalogCreateDefaults(t *testing.T) {
	ctx := context.Background()
	c, s, _ := newCatalog(t)

	id, err := c.Create(ctx, ProductForm{Name: strPtr("Salt")}, &multipart.FileHeader{Filename: "salt.jpg"})
	require.NoError(t, err)
	p, err := s.FindProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, 0.0, p.Price)
	assert.Equal(t, 1, p.SchemaVersion)
}

func TestCatalogCreateValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		form     ProductForm
		image    *multipart.FileHeader
		imageErr error
		msg      string
	}{
		{"no image", ProductForm{}, nil, nil, "No image uploaded"},
		{"empty filename", ProductForm{}, &multipart.FileHeader{}, nil, "No selected file"},
		{"bad stock", ProductForm{Stock: strPtr("ten")}, &multipart.FileHeader{Filename: "a.png"}, nil, "Invalid stock"},
		{"negative stock", ProductForm{Stock: strPtr("-1")}, &multipart.FileHeader{Filename: "a.png"}, nil, "Invalid stock"},
		{"bad price", ProductForm{Price: strPtr("cheap")}, &multipart.FileHeader{Filename: "a.png"}, nil, "Invalid price"},
		{"bad schema", ProductForm{SchemaVersion: strPtr("1.5")}, &multipart.FileHeader{Filename: "a.png"}, nil, "Invalid schema_version"},
		{"bad extension", ProductForm{}, &multipart.FileHeader{Filename: "a.txt"}, uploads.ErrUnsupportedType, "Invalid file type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, s, images := newCatalog(t)
			images.err = tt.imageErr

			_, err := c.Create(ctx, tt.form, tt.image)
			require.ErrorIs(t, err, ErrValidation)
			assert.EqualError(t, err, tt.msg)

			products, err := s.ListProducts(ctx)
			require.NoError(t, err)
			assert.Empty(t, products)
		})
	}
}

func TestCatalogUpdate(t *testing.T) {
	ctx := context.Background()
	c, s, _ := newCatalog(t)
	id := seedProduct(t, s, "Bread", 30, 5)

	changed, err := c.Update(ctx, id, ProductForm{Price: strPtr("35"), Stock: strPtr("8")}, nil)
	require.NoError(t, err)
	assert.True(t, changed)
	p, _ := s.FindProduct(ctx, id)
	assert.Equal(t, 35.0, p.Price)
	assert.Equal(t, 8, p.Stock)
	assert.Equal(t, "Bread", p.Name)

	changed, err = c.Update(ctx, id, ProductForm{Price: strPtr("35")}, nil)
	require.NoError(t, err)
	assert.False(t, changed, "same value is not a change")

	changed, err = c.Update(ctx, id, ProductForm{}, &multipart.FileHeader{Filename: "bread.gif"})
	require.NoError(t, err)
	assert.True(t, changed)
	p, _ = s.FindProduct(ctx, id)
	assert.Equal(t, "http://localhost:5000/uploads/abc123_bread.gif", p.ImageURL)
}

func TestCatalogUpdateFailures(t *testing.T) {
	ctx := context.Background()
	c, s, images := newCatalog(t)
	id := seedProduct(t, s, "Bread", 30, 5)

	_, err := c.Update(ctx, id, ProductForm{}, nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "No valid fields to update")

	_, err = c.Update(ctx, "not-an-id", ProductForm{Name: strPtr("x")}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	changed, err := c.Update(ctx, "64b7f0c2a1b2c3d4e5f60718", ProductForm{Name: strPtr("x")}, nil)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = c.Update(ctx, "64b7f0c2a1b2c3d4e5f60718", ProductForm{}, &multipart.FileHeader{Filename: "ghost.png"})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, images.saved, "no upload is written for an unknown product")

	images.err = uploads.ErrUnsupportedType
	_, err = c.Update(ctx, id, ProductForm{Name: strPtr("Rye")}, &multipart.FileHeader{Filename: "x.bmp"})
	assert.ErrorIs(t, err, ErrValidation)
	p, _ := s.FindProduct(ctx, id)
	assert.Equal(t, "Bread", p.Name, "a rejected image fails the whole update")
}

func TestCatalogGetAndDelete(t *testing.T) {
	ctx := context.Background()
	c, s, _ := newCatalog(t)
	id := seedProduct(t, s, "Eggs", 6, 30)

	p, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Eggs", p.Name)

	require.NoError(t, c.Delete(ctx, id))
	_, err = c.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, c.Delete(ctx, id), ErrNotFound)
	assert.ErrorIs(t, c.Delete(ctx, "zzz"), ErrValidation)
}

func TestCatalogExportImport(t *testing.T) {
	ctx := context.Background()
	c, s, _ := newCatalog(t)
	milk := seedProduct(t, s, "Milk", 45, 10)
	seedProduct(t, s, "Rice", 120, 4)

	var buf bytes.Buffer
	require.NoError(t, c.Export(ctx, &buf))

	// Change the source so the import visibly overwrites it.
	_, err := s.UpdateProduct(ctx, milk, models.ProductUpdate{Stock: intPtr(0)})
	require.NoError(t, err)

	res, err := c.Import(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Updated: 2}, res)
	assert.Equal(t, 10, stockOf(t, s, milk))

	// Into an empty catalog every row is new.
	other, fresh, _ := newCatalog(t)
	res, err = other.Import(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 2}, res)
	products, err := fresh.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestCatalogImportSkipsBadRows(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newCatalog(t)

	var buf bytes.Buffer
	require.NoError(t, WriteProductSheet(&buf, []models.Product{
		{Name: "Good", Price: 10, Stock: 1, SchemaVersion: 1},
		{Name: "", Price: 10, Stock: 1, SchemaVersion: 1},
	}))

	res, err := c.Import(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 1, Skipped: 1}, res)

	_, err = c.Import(ctx, bytes.NewReader([]byte("not a workbook")), 14)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseSheetInt(t *testing.T) {
	n, err := parseSheetInt("12")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	n, err = parseSheetInt("7.0")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = parseSheetInt("7.5")
	assert.Error(t, err)
	_, err = parseSheetInt("-2")
	assert.Error(t, err)
}

func intPtr(n int) *int { return &n }
