package services

import (
	"context"
	"mime/multipart"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gunalchandran/grocery-backend/events"
	"github.com/gunalchandran/grocery-backend/models"
	"github.com/gunalchandran/grocery-backend/store"
)

type fakeImages struct {
	saved   []string
	removed []string
	err     error
}

func (f *fakeImages) SaveImage(fh *multipart.FileHeader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, fh.Filename)
	return "abc123_" + fh.Filename, nil
}

func (f *fakeImages) Remove(filename string) error {
	f.removed = append(f.removed, filename)
	return nil
}

func (f *fakeImages) URL(filename string) string {
	return "http://localhost:5000/uploads/" + filename
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (r *recordingPublisher) Publish(_ context.Context, ev events.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func seedProduct(t *testing.T, s store.ProductStore, name string, price float64, stock int) string {
	t.Helper()
	id, err := s.InsertProduct(context.Background(), &models.Product{
		Name:          name,
		Price:         price,
		Stock:         stock,
		ImageURL:      "http://localhost:5000/uploads/" + name + ".png",
		SchemaVersion: 1,
	})
	require.NoError(t, err)
	return id
}

func stockOf(t *testing.T, s store.ProductStore, id string) int {
	t.Helper()
	p, err := s.FindProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func strPtr(s string) *string { return &s }
