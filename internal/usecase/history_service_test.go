package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/nutricalc/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushHistory(t *testing.T) {
	t.Run("re-searched entry moves to front", func(t *testing.T) {
		var h []string
		for _, q := range []string{"apple", "banana", "apple"} {
			h = PushHistory(h, q, 5)
		}
		assert.Equal(t, []string{"apple", "banana"}, h)
	})

	t.Run("capped at limit", func(t *testing.T) {
		var h []string
		for _, q := range []string{"a", "b", "c", "d", "e", "f"} {
			h = PushHistory(h, q, 5)
		}
		assert.Equal(t, []string{"f", "e", "d", "c", "b"}, h)
	})

	t.Run("duplicates are case-sensitive", func(t *testing.T) {
		h := PushHistory([]string{"apple"}, "Apple", 5)
		assert.Equal(t, []string{"Apple", "apple"}, h)
	})

	t.Run("non-positive limit uses default", func(t *testing.T) {
		h := PushHistory([]string{"a", "b", "c", "d", "e"}, "f", 0)
		assert.Len(t, h, DefaultHistorySize)
	})

	t.Run("input is not modified", func(t *testing.T) {
		in := []string{"a", "b"}
		_ = PushHistory(in, "b", 5)
		assert.Equal(t, []string{"a", "b"}, in)
	})
}

func TestHistoryService(t *testing.T) {
	ctx := context.Background()

	t.Run("records and lists", func(t *testing.T) {
		store := &MockHistoryStore{}
		svc := NewHistoryService(store, 0, nil)

		_, err := svc.Record(ctx, " apple ")
		require.NoError(t, err)
		_, err = svc.Record(ctx, "banana")
		require.NoError(t, err)
		got, err := svc.Record(ctx, "apple")
		require.NoError(t, err)

		assert.Equal(t, []string{"apple", "banana"}, got)
		listed, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, got, listed)
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		svc := NewHistoryService(&MockHistoryStore{}, 5, nil)
		_, err := svc.Record(ctx, "  ")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("oversized stored history is truncated", func(t *testing.T) {
		store := &MockHistoryStore{items: []string{"1", "2", "3", "4", "5", "6", "7"}}
		svc := NewHistoryService(store, 5, nil)
		got, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2", "3", "4", "5"}, got)
	})

	t.Run("store errors are wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		svc := NewHistoryService(&MockHistoryStore{loadError: boom}, 5, nil)
		_, err := svc.Record(ctx, "apple")
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "load history")

		svc = NewHistoryService(&MockHistoryStore{saveError: boom}, 5, nil)
		_, err = svc.Record(ctx, "apple")
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "save history")
	})
}
