package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/outfit-stylist/internal/predictor"
)

func TestSelectImageReleasesReplacedPreview(t *testing.T) {
	store := NewMemoryPreviewStore()
	m := NewManager(store, testPlaceholder, zap.NewNop())
	ctx := context.Background()

	first, err := m.SelectImage(ctx, "s1", shirt())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Preview(ctx, "s1", first.PreviewID); err != nil {
		t.Fatalf("expected first preview to be served, got %v", err)
	}

	second, err := m.SelectImage(ctx, "s1", shirt())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.PreviewID == first.PreviewID {
		t.Fatal("expected a fresh preview id")
	}
	if store.Len() != 1 {
		t.Fatalf("expected one live preview, got %d", store.Len())
	}
	if _, err := m.Preview(ctx, "s1", first.PreviewID); !errors.Is(err, ErrPreviewNotFound) {
		t.Fatalf("expected released preview to be gone, got %v", err)
	}
	if _, err := m.Preview(ctx, "s2", second.PreviewID); !errors.Is(err, ErrPreviewNotFound) {
		t.Fatal("preview must not be visible to other sessions")
	}
}

func TestManySelectionsDoNotAccumulatePreviews(t *testing.T) {
	store := NewMemoryPreviewStore()
	m := NewManager(store, testPlaceholder, zap.NewNop())

	for i := 0; i < 50; i++ {
		if _, err := m.SelectImage(context.Background(), "s1", shirt()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if store.Len() != 1 {
		t.Fatalf("expected one live preview, got %d", store.Len())
	}
}

func TestSweepEndsIdleSessions(t *testing.T) {
	store := NewMemoryPreviewStore()
	m := NewManager(store, testPlaceholder, zap.NewNop())
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	ctx := context.Background()
	if _, err := m.SelectImage(ctx, "idle", shirt()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.SelectImage(ctx, "busy", shirt()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := m.Begin("busy"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = now.Add(2 * time.Hour)
	m.View("fresh")

	if swept := m.Sweep(ctx, time.Hour); swept != 1 {
		t.Fatalf("expected 1 swept session, got %d", swept)
	}
	if m.Len() != 2 {
		t.Fatalf("expected busy and fresh sessions to survive, got %d", m.Len())
	}
	if store.Len() != 1 {
		t.Fatalf("expected idle preview to be released, got %d live", store.Len())
	}
}

func TestApplyImageFallbackUnknownSession(t *testing.T) {
	m := NewManager(NewMemoryPreviewStore(), testPlaceholder, zap.NewNop())

	if _, _, err := m.ApplyImageFallback("missing", 0); !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("expected ErrUnknownSession, got %v", err)
	}
}

func TestManagerFallbackReturnsPlaceholderOnce(t *testing.T) {
	m := NewManager(NewMemoryPreviewStore(), testPlaceholder, zap.NewNop())
	if _, err := m.SelectImage(context.Background(), "s1", shirt()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ticket, _, _ := m.Begin("s1")
	m.Complete("s1", ticket, threeItemResult())

	src, ok, err := m.ApplyImageFallback("s1", 0)
	if err != nil || !ok || src != testPlaceholder {
		t.Fatalf("expected placeholder, got %q %v %v", src, ok, err)
	}
	if _, ok, _ := m.ApplyImageFallback("s1", 0); ok {
		t.Fatal("expected no second substitution")
	}
}

type failingStore struct{}

func (failingStore) Put(context.Context, string, predictor.Image) error {
	return errors.New("store down")
}

func (failingStore) Get(context.Context, string) (*predictor.Image, error) {
	return nil, ErrPreviewNotFound
}

func (failingStore) Delete(context.Context, string) error { return nil }

func TestSelectImageKeepsStateWhenStoreFails(t *testing.T) {
	m := NewManager(failingStore{}, testPlaceholder, zap.NewNop())

	if _, err := m.SelectImage(context.Background(), "s1", shirt()); err == nil {
		t.Fatal("expected store error")
	}
	if view := m.View("s1"); view.Status != StatusIdle || view.CanSubmit {
		t.Fatalf("expected session to stay idle, got %+v", view)
	}
}
