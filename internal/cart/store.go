package cart

import (
	"fmt"
	"sync"
)

// Store holds the current line items of one cart. Totals are never cached;
// every read recomputes them from the items. Subscribers run synchronously
// after each committed mutation, outside the store lock.
type Store struct {
	mu      sync.Mutex
	items   []LineItem
	subs    map[int]func(Snapshot)
	nextSub int
}

func NewStore() *Store {
	return &Store{subs: map[int]func(Snapshot){}}
}

func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

func (s *Store) Totals() Totals {
	return Aggregate(s.Items())
}

func (s *Store) Snapshot() Snapshot {
	items := s.Items()
	return Snapshot{Items: items, Totals: Aggregate(items)}
}

// Subscribe registers fn and returns a func that removes it.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Replace swaps in a fresh item list, e.g. after fetching the cart view.
func (s *Store) Replace(items []LineItem) error {
	kept := visible(items)
	seen := make(map[string]struct{}, len(kept))
	for _, it := range kept {
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateLineItem, it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	return s.mutate(func([]LineItem) ([]LineItem, error) {
		return cloneItems(kept), nil
	})
}

// SetQuantity updates one line. A quantity below 1 removes the line.
func (s *Store) SetQuantity(id string, quantity int) error {
	if quantity < 1 {
		return s.Remove(id)
	}
	return s.mutate(func(items []LineItem) ([]LineItem, error) {
		for i := range items {
			if items[i].ID == id {
				items[i].Quantity = quantity
				return items, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrLineItemNotFound, id)
	})
}

func (s *Store) Remove(id string) error {
	return s.mutate(func(items []LineItem) ([]LineItem, error) {
		for i := range items {
			if items[i].ID == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrLineItemNotFound, id)
	})
}

func (s *Store) Clear() {
	_ = s.mutate(func([]LineItem) ([]LineItem, error) { return nil, nil })
}

// mutate applies fn to a private copy and commits only when fn succeeds.
func (s *Store) mutate(fn func([]LineItem) ([]LineItem, error)) error {
	s.mu.Lock()
	next, err := fn(cloneItems(s.items))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.items = next
	snap := Snapshot{Items: cloneItems(next), Totals: Aggregate(next)}
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return nil
}

func cloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
