// Package redis caches computed credit-card invoices. A cache failure is
// never surfaced to callers; the worst case is recomputing an invoice.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nexfin/nexfin/internal/platform/card"
	"github.com/nexfin/nexfin/pkg/logger"
	"github.com/nexfin/nexfin/pkg/period"
)

const (
	// DefaultTTL bounds staleness when an invalidation is missed.
	DefaultTTL = 5 * time.Minute

	// KeyPrefix is the prefix for invoice cache keys
	KeyPrefix = "invoice:"
)

// InvoiceCache is a Redis-backed cache of derived invoices, keyed by
// invoice:{cardID}:{month}. Implements card.InvoiceCache.
type InvoiceCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewInvoiceCache creates a new invoice cache
func NewInvoiceCache(client *redis.Client, log *logger.Logger) *InvoiceCache {
	return NewInvoiceCacheWithTTL(client, DefaultTTL, log)
}

// NewInvoiceCacheWithTTL creates a new invoice cache with custom TTL
func NewInvoiceCacheWithTTL(client *redis.Client, ttl time.Duration, log *logger.Logger) *InvoiceCache {
	return &InvoiceCache{
		client: client,
		ttl:    ttl,
		logger: log.WithField("component", "invoice_cache"),
	}
}

// Get retrieves a cached invoice. A miss or any Redis error reports not-found.
func (c *InvoiceCache) Get(ctx context.Context, cardID uuid.UUID, month period.MonthKey) (*card.Invoice, bool) {
	key := invoiceKey(cardID, month)

	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		c.logger.Debug("cache miss", "key", key)
		return nil, false
	}
	if err != nil {
		c.logger.Error("cache error", "operation", "get", "key", key, "error", err)
		return nil, false
	}

	var inv card.Invoice
	if err := json.Unmarshal([]byte(val), &inv); err != nil {
		c.logger.Error("cache error", "operation", "unmarshal", "key", key, "error", err)
		return nil, false
	}

	c.logger.Debug("cache hit", "key", key)
	return &inv, true
}

// Set stores a computed invoice.
func (c *InvoiceCache) Set(ctx context.Context, inv *card.Invoice) {
	key := invoiceKey(inv.CreditCardID, inv.Month)

	data, err := json.Marshal(inv)
	if err != nil {
		c.logger.Error("cache error", "operation", "marshal", "key", key, "error", err)
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Error("cache error", "operation", "set", "key", key, "error", err)
	}
}

// InvalidateCard drops every cached invoice of a card. Any write that can
// move a row between invoice months calls this.
func (c *InvoiceCache) InvalidateCard(ctx context.Context, cardID uuid.UUID) {
	pattern := fmt.Sprintf("%s%s:*", KeyPrefix, cardID)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()

	pipe := c.client.Pipeline()
	count := 0
	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
		count++
		if count >= 100 {
			if _, err := pipe.Exec(ctx); err != nil {
				c.logger.Error("cache error", "operation", "invalidate", "card_id", cardID, "error", err)
				return
			}
			pipe = c.client.Pipeline()
			count = 0
		}
	}

	if count > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			c.logger.Error("cache error", "operation", "invalidate", "card_id", cardID, "error", err)
			return
		}
	}

	if err := iter.Err(); err != nil {
		c.logger.Error("cache error", "operation", "scan", "card_id", cardID, "error", err)
	}
}

func invoiceKey(cardID uuid.UUID, month period.MonthKey) string {
	return fmt.Sprintf("%s%s:%s", KeyPrefix, cardID, month)
}
