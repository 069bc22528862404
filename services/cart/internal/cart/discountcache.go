package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/redis/go-redis/v9"
)

const discountCacheTTL = 5 * time.Minute

// DiscountSource resolves a discount code to its definition. The production
// source is the catalog service; tests inject a fake.
type DiscountSource interface {
	FetchDiscountCode(ctx context.Context, code string) (*DiscountCode, error)
}

// CatalogDiscountSource fetches discount codes from the catalog service.
type CatalogDiscountSource struct {
	client *aqm.ServiceClient
}

func NewCatalogDiscountSource(client *aqm.ServiceClient) *CatalogDiscountSource {
	return &CatalogDiscountSource{client: client}
}

func (s *CatalogDiscountSource) FetchDiscountCode(ctx context.Context, code string) (*DiscountCode, error) {
	if s.client == nil {
		return nil, fmt.Errorf("catalog client uninitialized")
	}
	resp, err := s.client.Get(ctx, "discount-codes", code)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch discount code %s: %w", code, err)
	}
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, err
	}
	var dc DiscountCode
	if err := json.Unmarshal(raw, &dc); err != nil {
		return nil, fmt.Errorf("cannot decode discount code %s: %w", code, err)
	}
	return &dc, nil
}

// DiscountCache is a read-through Redis cache in front of a DiscountSource.
// Codes change rarely; a short TTL keeps revocations timely without a
// catalog round trip per checkout.
type DiscountCache struct {
	rdb    *redis.Client
	source DiscountSource
	logger aqm.Logger
}

func NewDiscountCache(rdb *redis.Client, source DiscountSource, logger aqm.Logger) *DiscountCache {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &DiscountCache{rdb: rdb, source: source, logger: logger}
}

func (c *DiscountCache) key(code string) string {
	return fmt.Sprintf("cart:discount:%s", code)
}

// Lookup returns the discount code definition, consulting Redis first.
// Cache failures degrade to a source fetch, never to a request failure.
func (c *DiscountCache) Lookup(ctx context.Context, code string) (*DiscountCode, error) {
	if c.rdb != nil {
		cached, err := c.rdb.Get(ctx, c.key(code)).Result()
		if err == nil {
			var dc DiscountCode
			if jsonErr := json.Unmarshal([]byte(cached), &dc); jsonErr == nil {
				return &dc, nil
			}
			c.logger.Debug("discarding malformed cached discount code", "code", code)
		} else if err != redis.Nil {
			c.logger.Debug("discount cache read failed", "code", code, "error", err)
		}
	}

	dc, err := c.source.FetchDiscountCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if c.rdb != nil {
		if raw, err := json.Marshal(dc); err == nil {
			if err := c.rdb.Set(ctx, c.key(code), raw, discountCacheTTL).Err(); err != nil {
				c.logger.Debug("discount cache write failed", "code", code, "error", err)
			}
		}
	}

	return dc, nil
}
