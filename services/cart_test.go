package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunalchandran/grocery-backend/models"
	"github.com/gunalchandran/grocery-backend/store"
)

const shopper = "ravi@example.com"

func TestCartAddAccumulates(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	cart := NewCart(s, s)
	pid := seedProduct(t, s, "Milk", 45, 10)

	require.NoError(t, cart.AddItem(ctx, shopper, pid, 1))
	require.NoError(t, cart.AddItem(ctx, shopper, pid, 2))

	lines, err := cart.List(ctx, shopper)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, 135.0, lines[0].TotalPrice)
	assert.Equal(t, "Milk", lines[0].ProductName)
}

func TestCartAddNormalizesProductID(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	cart := NewCart(s, s)
	pid := seedProduct(t, s, "Milk", 45, 10)

	require.NoError(t, cart.AddItem(ctx, shopper, pid, 1))
	require.NoError(t, cart.AddItem(ctx, shopper, strings.ToUpper(pid), 2))

	lines, err := cart.List(ctx, shopper)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, pid, lines[0].ProductID)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestCartAddFailures(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	cart := NewCart(s, s)
	pid := seedProduct(t, s, "Milk", 45, 10)

	assert.ErrorIs(t, cart.AddItem(ctx, "", pid, 1), ErrValidation)
	assert.ErrorIs(t, cart.AddItem(ctx, shopper, "", 1), ErrValidation)
	assert.ErrorIs(t, cart.AddItem(ctx, shopper, pid, 0), ErrValidation)
	assert.ErrorIs(t, cart.AddItem(ctx, shopper, "64b7f0c2a1b2c3d4e5f60718", 1), ErrNotFound)

	lines, err := cart.List(ctx, shopper)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCartSnapshotIsNotRefreshed(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	cart := NewCart(s, s)
	pid := seedProduct(t, s, "Milk", 45, 10)

	require.NoError(t, cart.AddItem(ctx, shopper, pid, 1))
	price := 60.0
	_, err := s.UpdateProduct(ctx, pid, models.ProductUpdate{Price: &price})
	require.NoError(t, err)

	lines, err := cart.List(ctx, shopper)
	require.NoError(t, err)
	assert.Equal(t, 45.0, lines[0].Price)
}

func TestCartUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	cart := NewCart(s, s)
	pid := seedProduct(t, s, "P1", 50, 10)
	require.NoError(t, cart.AddItem(ctx, shopper, pid, 2))
	lines, _ := cart.List(ctx, shopper)
	itemID := lines[0].ID.Hex()

	err := cart.UpdateQuantity(ctx, shopper, itemID, 0)
	assert.ErrorIs(t, err, ErrValidation)
	lines, _ = cart.List(ctx, shopper)
	assert.Equal(t, 2, lines[0].Quantity, "rejected update leaves the cart unchanged")

	require.NoError(t, cart.UpdateQuantity(ctx, shopper, itemID, 5))
	lines, _ = cart.List(ctx, shopper)
	assert.Equal(t, 5, lines[0].Quantity)

	assert.ErrorIs(t, cart.UpdateQuantity(ctx, "someone@else.com", itemID, 1), ErrNotFound)
	assert.ErrorIs(t, cart.UpdateQuantity(ctx, shopper, "bad", 1), ErrValidation)
}

func TestCartRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	cart := NewCart(s, s)
	a := seedProduct(t, s, "A", 10, 10)
	b := seedProduct(t, s, "B", 20, 10)
	require.NoError(t, cart.AddItem(ctx, shopper, a, 1))
	require.NoError(t, cart.AddItem(ctx, shopper, b, 1))
	require.NoError(t, cart.AddItem(ctx, "other@example.com", a, 1))

	lines, _ := cart.List(ctx, shopper)
	require.Len(t, lines, 2)

	assert.ErrorIs(t, cart.RemoveItem(ctx, "other@example.com", lines[0].ID.Hex()), ErrNotFound)
	require.NoError(t, cart.RemoveItem(ctx, shopper, lines[0].ID.Hex()))
	assert.ErrorIs(t, cart.RemoveItem(ctx, shopper, lines[0].ID.Hex()), ErrNotFound)

	n, err := cart.Clear(ctx, shopper)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	lines, _ = cart.List(ctx, shopper)
	assert.Empty(t, lines)
	others, _ := cart.List(ctx, "other@example.com")
	assert.Len(t, others, 1)

	_, err = cart.Clear(ctx, " ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNormalizeImage(t *testing.T) {
	tests := []struct {
		name      string
		item      models.CartItem
		wantURL   string
		wantImage string
	}{
		{"explicit url", models.CartItem{ImageURL: "http://x/uploads/a.png", Image: "old.png"}, "http://x/uploads/a.png", "old.png"},
		{"legacy bare", models.CartItem{Image: "a.png"}, "", "uploads/a.png"},
		{"legacy prefixed", models.CartItem{Image: "uploads/a.png"}, "", "uploads/a.png"},
		{"nothing", models.CartItem{}, "", "uploads/default.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := tt.item
			normalizeImage(&item)
			assert.Equal(t, tt.wantURL, item.ImageURL)
			assert.Equal(t, tt.wantImage, item.Image)
		})
	}
}

func TestLineTotalRounds(t *testing.T) {
	assert.Equal(t, 0.3, lineTotal(0.1, 3))
	assert.Equal(t, 100.05, lineTotal(33.35, 3))
}
