package order

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aquamarinepk/aqm"
)

// CartSnapshot is the slice of the cart service's response checkout needs.
type CartSnapshot struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	StoreID   string      `json:"store_id"`
	StoreName string      `json:"store_name"`
	Items     []OrderItem `json:"items"`
	Subtotal  float64     `json:"subtotal"`
}

// CartFetcher resolves a cart ID to its current contents. The production
// fetcher calls the cart service; tests inject a fake.
type CartFetcher interface {
	FetchCart(ctx context.Context, cartID string) (*CartSnapshot, error)
}

// ServiceCartFetcher fetches carts from the cart service.
type ServiceCartFetcher struct {
	client *aqm.ServiceClient
}

func NewServiceCartFetcher(client *aqm.ServiceClient) *ServiceCartFetcher {
	return &ServiceCartFetcher{client: client}
}

func (f *ServiceCartFetcher) FetchCart(ctx context.Context, cartID string) (*CartSnapshot, error) {
	if f.client == nil {
		return nil, fmt.Errorf("cart client uninitialized")
	}
	resp, err := f.client.Get(ctx, "carts", cartID)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch cart %s: %w", cartID, err)
	}
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, err
	}
	var snapshot CartSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("cannot decode cart %s: %w", cartID, err)
	}
	return &snapshot, nil
}
