package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nutricalc/backend/internal/domain"
	"go.uber.org/zap"
)

// DefaultHistorySize is how many recent searches are kept
const DefaultHistorySize = 5

// HistoryService keeps the most recent distinct searches, newest first
type HistoryService struct {
	store      domain.HistoryStore
	maxEntries int
	logger     *zap.Logger
	mu         sync.Mutex
}

// NewHistoryService creates a history service over a store
func NewHistoryService(store domain.HistoryStore, maxEntries int, logger *zap.Logger) *HistoryService {
	if maxEntries <= 0 {
		maxEntries = DefaultHistorySize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{
		store:      store,
		maxEntries: maxEntries,
		logger:     logger,
	}
}

// List returns the stored history
func (s *HistoryService) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Record moves query to the front of the history and saves it
func (s *HistoryService) Record(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	updated := PushHistory(current, query, s.maxEntries)
	if err := s.store.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("save history: %w", err)
	}

	return updated, nil
}

func (s *HistoryService) load(ctx context.Context) ([]string, error) {
	history, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if len(history) > s.maxEntries {
		history = history[:s.maxEntries]
	}
	return history, nil
}

// PushHistory returns history with query at the front, without duplicates, capped at limit
func PushHistory(history []string, query string, limit int) []string {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	out := make([]string, 0, limit)
	out = append(out, query)
	for _, item := range history {
		if len(out) >= limit {
			break
		}
		if item == query {
			continue
		}
		out = append(out, item)
	}
	return out
}
