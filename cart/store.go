// Package cart maintains a customer's in-progress order: a single-vendor
// item list with merge-by-identity semantics and write-through persistence.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/DimasRabelo/delivery-frontend/api"
	"github.com/DimasRabelo/delivery-frontend/domain"
	"github.com/DimasRabelo/delivery-frontend/store"
)

const snapshotKey = "deliveryAppCart"

var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

type Store struct {
	mu    sync.RWMutex
	items []domain.CartItem
	kv    store.Store
}

func NewStore(kv store.Store) *Store {
	return &Store{kv: kv}
}

// Load restores the persisted snapshot, if any. A corrupt snapshot is
// self-healing: the entry is removed and the cart starts empty.
func (s *Store) Load(ctx context.Context) {
	raw, err := s.kv.Get(ctx, snapshotKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("cart load: read snapshot failed: %v", err)
		}
		return
	}

	var items []domain.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Printf("cart load: corrupt snapshot, clearing: %v", err)
		if errRemove := s.kv.Remove(ctx, snapshotKey); errRemove != nil {
			log.Printf("cart load: remove snapshot failed: %v", errRemove)
		}
		return
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

// AddItem adds a candidate line to the cart. The identity key is derived
// here; callers never set it.
//
// A candidate from a different vendor than the current cart replaces the
// whole cart with just the candidate. That replacement is destructive and is
// reported through the return value so the embedder can warn the user that
// the old cart was discarded.
//
// A candidate matching an existing line's identity merges into it: quantities
// add up, every other field keeps the existing line's value (equal identity
// implies equal pricing and options already). Otherwise the candidate is
// appended. Every mutation re-persists the full list.
func (s *Store) AddItem(ctx context.Context, item domain.CartItem) (replaced bool) {
	item.IdentityKey = domain.ItemIdentityKey(item.ProductID, item.OptionIDs)

	s.mu.Lock()
	if len(s.items) > 0 && s.items[0].VendorID != item.VendorID {
		log.Printf("cart: vendor %d item replaces cart held for vendor %d", item.VendorID, s.items[0].VendorID)
		s.items = []domain.CartItem{item}
		replaced = true
	} else {
		merged := false
		for i := range s.items {
			if s.items[i].IdentityKey == item.IdentityKey {
				s.items[i].Quantity += item.Quantity
				merged = true
				break
			}
		}
		if !merged {
			s.items = append(s.items, item)
		}
	}
	raw := s.marshalLocked()
	s.mu.Unlock()

	s.persist(ctx, raw)
	return replaced
}

// Clear empties the cart and re-persists the empty list.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	raw := s.marshalLocked()
	s.mu.Unlock()

	s.persist(ctx, raw)
}

// Items returns a copy of the current lines in order.
func (s *Store) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]domain.CartItem, len(s.items))
	copy(items, s.items)
	return items
}

// TotalItems is recomputed on every call, never cached.
func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.TotalItems(s.items)
}

// TotalValue is recomputed on every call, never cached.
func (s *Store) TotalValue() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.TotalValue(s.items)
}

// CheckoutPayload builds the order placement body from the current lines.
func (s *Store) CheckoutPayload(deliveryAddressID int, paymentMethod string) (api.OrderRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.items) == 0 {
		return api.OrderRequest{}, ErrEmptyCart
	}

	order := api.OrderRequest{
		VendorID:          s.items[0].VendorID,
		DeliveryAddressID: deliveryAddressID,
		PaymentMethod:     paymentMethod,
		Items:             make([]api.OrderItem, 0, len(s.items)),
	}
	for _, item := range s.items {
		order.Items = append(order.Items, api.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			OptionIDs: item.OptionIDs,
		})
	}
	return order, nil
}

func (s *Store) marshalLocked() string {
	items := s.items
	if items == nil {
		items = []domain.CartItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		log.Printf("cart: marshal snapshot failed: %v", err)
		return ""
	}
	return string(raw)
}

// persist writes through after every mutation. The in-memory cart stays
// authoritative, so a store failure is logged and not propagated.
func (s *Store) persist(ctx context.Context, raw string) {
	if raw == "" {
		return
	}
	if err := s.kv.Set(ctx, snapshotKey, raw); err != nil {
		log.Printf("cart: persist snapshot failed: %v", err)
	}
}
