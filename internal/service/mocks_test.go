package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/launchset/gym-booking/domain"
	"github.com/launchset/gym-booking/internal/cache"
	"github.com/launchset/gym-booking/internal/payment"
)

// MockProvider implements payment.Provider and echoes a URL built from the success target.
type MockProvider struct {
	mu      sync.Mutex
	Calls   []*payment.SessionParams
	Err     error
	Session *payment.Session
	// Started, when set, receives once per call before Release is awaited.
	Started chan struct{}
	Release chan struct{}
	// ctxErr is the call context's error once Release has fired.
	ctxErr error
}

func (m *MockProvider) CreateCheckoutSession(ctx context.Context, params *payment.SessionParams) (*payment.Session, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, params)
	m.mu.Unlock()

	if m.Started != nil {
		m.Started <- struct{}{}
	}
	if m.Release != nil {
		<-m.Release
	}
	m.mu.Lock()
	m.ctxErr = ctx.Err()
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Session != nil {
		return m.Session, nil
	}
	return &payment.Session{ID: "cs_test_123", URL: params.SuccessURL}, nil
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func (m *MockProvider) CtxErr() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ctxErr
}

// MemoryCache implements cache.SessionCache in memory.
type MemoryCache struct {
	mu     sync.Mutex
	items  map[string]*cache.Entry
	GetErr error
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: map[string]*cache.Entry{}}
}

func (m *MemoryCache) Get(_ context.Context, key string) (*cache.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	r, ok := m.items[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return r, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, entry *cache.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = entry
	return nil
}

// MockPublisher implements EventPublisher.
type MockPublisher struct {
	mu     sync.Mutex
	Events []domain.CheckoutSessionCreated
	Err    error
}

func (m *MockPublisher) PublishSessionCreated(_ context.Context, event domain.CheckoutSessionCreated) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return m.Err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
