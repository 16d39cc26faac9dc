package cache

import (
	"context"
	"sync"
	"time"

	appbilling "github.com/farmbook/backend/internal/application/billing"
	"github.com/google/uuid"
)

// InMemoryOutstandingCache implements OutstandingCache with a local map.
// Suitable for single-instance deployments and testing.
// WARNING: entries are not shared across process instances, so a multi
// instance deployment should use the Redis cache instead.
type InMemoryOutstandingCache struct {
	mu      sync.RWMutex
	entries map[string]inMemoryEntry
	ttl     time.Duration
}

type inMemoryEntry struct {
	summary   appbilling.OutstandingSummary
	expiresAt time.Time
}

// NewInMemoryOutstandingCache creates an in-memory outstanding summary cache
func NewInMemoryOutstandingCache(ttl time.Duration) *InMemoryOutstandingCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &InMemoryOutstandingCache{
		entries: make(map[string]inMemoryEntry),
		ttl:     ttl,
	}
}

func (c *InMemoryOutstandingCache) key(accountID uuid.UUID, customerName string) string {
	return accountID.String() + ":" + customerName
}

// Get returns the cached summary, or nil on a miss
func (c *InMemoryOutstandingCache) Get(_ context.Context, accountID uuid.UUID, customerName string) (*appbilling.OutstandingSummary, error) {
	c.mu.RLock()
	entry, ok := c.entries[c.key(accountID, customerName)]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}

	summary := entry.summary
	return &summary, nil
}

// Set stores the summary for the customer with the configured TTL
func (c *InMemoryOutstandingCache) Set(_ context.Context, accountID uuid.UUID, customerName string, summary *appbilling.OutstandingSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[c.key(accountID, customerName)] = inMemoryEntry{
		summary:   *summary,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

// Invalidate drops the customer's entry
func (c *InMemoryOutstandingCache) Invalidate(_ context.Context, accountID uuid.UUID, customerName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, c.key(accountID, customerName))
	return nil
}

// Len returns the number of live entries, counting expired ones still in the map
func (c *InMemoryOutstandingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryOutstandingCache implements OutstandingCache
var _ appbilling.OutstandingCache = (*InMemoryOutstandingCache)(nil)
