package cart

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/imrishuroy/storefront-checkout/internal/logger"
	"github.com/imrishuroy/storefront-checkout/internal/notify"
)

// Backend is the subset of the storefront API the cart page needs.
type Backend interface {
	CartView(ctx context.Context) ([]LineItem, error)
	UpdateCartItem(ctx context.Context, id string, quantity int) error
	DeleteCartItem(ctx context.Context, id string) error
	ClearCart(ctx context.Context) error
}

// Cache stores the last fetched cart view per session.
type Cache interface {
	Get(ctx context.Context, key string) ([]LineItem, error)
	Set(ctx context.Context, key string, items []LineItem) error
	Delete(ctx context.Context, key string) error
}

// publicMessage is implemented by backend errors whose text is meant for
// the user verbatim.
type publicMessage interface {
	PublicMessage() string
}

type ServiceOptions struct {
	Backend  Backend
	Cache    Cache
	Store    *Store
	Notifier notify.Notifier
	Logger   *logger.Logger
	CacheKey string
}

type Service struct {
	backend  Backend
	cache    Cache
	store    *Store
	notifier notify.Notifier
	log      *logger.Logger
	cacheKey string
	group    singleflight.Group
}

func NewService(opts ServiceOptions) *Service {
	s := &Service{
		backend:  opts.Backend,
		cache:    opts.Cache,
		store:    opts.Store,
		notifier: opts.Notifier,
		log:      opts.Logger,
		cacheKey: opts.CacheKey,
	}
	if s.store == nil {
		s.store = NewStore()
	}
	if s.notifier == nil {
		s.notifier = notify.Discard
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	return s
}

func (s *Service) Store() *Store { return s.store }

// Load fetches the cart view and replaces the local items. On failure the
// previous items stay in place.
func (s *Service) Load(ctx context.Context) error {
	items, err := s.fetch(ctx)
	if err != nil {
		s.fail(ctx, "cart.fetchError", "cart fetch failed", err)
		return fmt.Errorf("load cart: %w", err)
	}
	if err := s.store.Replace(items); err != nil {
		s.fail(ctx, "cart.fetchError", "cart view rejected", err)
		return fmt.Errorf("load cart: %w", err)
	}
	return nil
}

// UpdateQuantity writes the new quantity to the backend and reloads. A
// quantity below 1 deletes the line instead.
func (s *Service) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if quantity < 1 {
		return s.Remove(ctx, id)
	}
	if err := s.backend.UpdateCartItem(ctx, id, quantity); err != nil {
		s.fail(ctx, "cart.updateError", "cart update failed", err)
		return fmt.Errorf("update cart item %s: %w", id, err)
	}
	s.invalidate(ctx)

	if err := s.reload(ctx); err != nil {
		s.log.Warn(ctx, "cart reload after update failed", err)
		if err := s.store.SetQuantity(id, quantity); err != nil && !errors.Is(err, ErrLineItemNotFound) {
			return err
		}
	}
	s.notifier.Notify(ctx, notify.Success("cart.quantityUpdated"))
	return nil
}

func (s *Service) Remove(ctx context.Context, id string) error {
	if err := s.backend.DeleteCartItem(ctx, id); err != nil {
		s.fail(ctx, "cart.deleteError", "cart delete failed", err)
		return fmt.Errorf("delete cart item %s: %w", id, err)
	}
	s.invalidate(ctx)

	if err := s.store.Remove(id); err != nil && !errors.Is(err, ErrLineItemNotFound) {
		return err
	}
	s.notifier.Notify(ctx, notify.Success("cart.productRemoved"))
	return nil
}

// Checkout hands the current cart to the checkout flow. The local cart is
// cleared right away; clearing the server cart happens in the background
// and its failure is only logged.
func (s *Service) Checkout(ctx context.Context, userID string) (Snapshot, error) {
	snap := s.store.Snapshot()
	if len(snap.Items) == 0 {
		s.notifier.Notify(ctx, notify.Warning("cart.emptyCartAlert"))
		return Snapshot{}, ErrEmptyCart
	}
	if userID == "" {
		s.notifier.Notify(ctx, notify.Warning("cart.loginRequired"))
		return Snapshot{}, ErrLoginRequired
	}

	s.store.Clear()
	s.invalidate(ctx)

	bg := context.WithoutCancel(ctx)
	go func() {
		if err := s.backend.ClearCart(bg); err != nil {
			s.log.Warn(bg, "server cart clear failed", err)
		}
	}()

	s.notifier.Notify(ctx, notify.Success("cart.checkoutStarted"))
	return snap, nil
}

func (s *Service) reload(ctx context.Context) error {
	items, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	return s.store.Replace(items)
}

// fetch reads through the cache. Concurrent misses for one session share a
// single backend call.
func (s *Service) fetch(ctx context.Context) ([]LineItem, error) {
	if s.cache != nil {
		items, err := s.cache.Get(ctx, s.cacheKey)
		if err == nil {
			return items, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.log.Warn(ctx, "cart cache read failed", err)
		}
	}

	v, err, _ := s.group.Do(s.cacheKey, func() (any, error) {
		items, err := s.backend.CartView(ctx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, s.cacheKey, items); err != nil {
				s.log.Warn(ctx, "cart cache write failed", err)
			}
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]LineItem), nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey); err != nil {
		s.log.Warn(ctx, "cart cache invalidate failed", err)
	}
}

// fail logs err and notifies the user, preferring the backend's own
// message when it has one.
func (s *Service) fail(ctx context.Context, key, msg string, err error) {
	s.log.Error(ctx, msg, err)
	n := notify.Error(key)
	var pm publicMessage
	if errors.As(err, &pm) && pm.PublicMessage() != "" {
		n.Message = pm.PublicMessage()
	}
	s.notifier.Notify(ctx, n)
}
