package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/itsneelabh/shopeasy/pkg/logger"
	"github.com/itsneelabh/shopeasy/pkg/memory"
	"github.com/itsneelabh/shopeasy/pkg/notify"
	"github.com/itsneelabh/shopeasy/pkg/telemetry"
)

// StorageKey is the durable record holding the serialized cart
const StorageKey = "shoppingCart"

// Result describes the outcome of a mutation that was applied in memory
type Result struct {
	Item    LineItem
	Merged  bool // AddItem increased an existing line
	Removed bool
	Dropped int // units discarded by the MaxQuantity cap

	// PersistErr is set when the change could not be written to storage.
	// The in-memory cart still reflects the change.
	PersistErr error
}

// Store is the shopping cart: an ordered list of line items persisted as a
// whole on every mutation.
type Store struct {
	mu       sync.Mutex
	items    []LineItem
	storage  memory.Memory
	key      string
	logger   logger.Logger
	notifier notify.Notifier
	metrics  *telemetry.Metrics
	now      func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNotifier sets where user-facing warnings go
func WithNotifier(n notify.Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithMetrics records mutation metrics
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithClock overrides the AddedAt time source
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithStorageKey overrides the durable record name
func WithStorageKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// Open creates a cart backed by storage and rehydrates it. A missing record
// is an empty cart; an unreadable one is logged and also treated as empty.
func Open(ctx context.Context, storage memory.Memory, opts ...Option) *Store {
	s := &Store{
		storage:  storage,
		key:      StorageKey,
		logger:   logger.NewNopLogger(),
		notifier: notify.Multi{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(ctx); err != nil {
		s.logger.Warn("Starting with an empty cart", "error", err)
		s.notifier.Notify(notify.Warning("Could not load your saved cart"))
	}
	return s
}

// Reload replaces the in-memory cart with the stored one
func (s *Store) Reload(ctx context.Context) error {
	items, err := s.load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	return err
}

func (s *Store) load(ctx context.Context) ([]LineItem, error) {
	raw, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if memory.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var stored []LineItem
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}

	items := make([]LineItem, 0, len(stored))
	for _, item := range stored {
		if item.UniqueKey == "" || item.Quantity < 1 {
			s.logger.Warn("Dropping unusable stored cart line", "product_id", item.ProductID)
			continue
		}
		if item.Quantity > MaxQuantity {
			item.setQuantity(MaxQuantity)
		}
		items = append(items, item)
	}
	s.logger.Debug("Cart loaded", "lines", len(items), "key", s.key)
	return items, nil
}

// AddItem validates item and merges it into the line with the same unique
// key, or appends a new line. Quantities above MaxQuantity are clamped and
// the discarded units reported in Result.Dropped.
func (s *Store) AddItem(ctx context.Context, item Item) (Result, error) {
	if err := item.Validate(); err != nil {
		return Result{}, err
	}
	key, err := UniqueKey(item.ProductID, item.Variations)
	if err != nil {
		return Result{}, &ValidationError{Field: "variations", Message: "Invalid product options", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var res Result
	if idx := s.indexOf(key); idx >= 0 {
		line := &s.items[idx]
		want := line.Quantity + item.Quantity
		got := min(want, MaxQuantity)
		line.setQuantity(got)
		res = Result{Item: *line, Merged: true, Dropped: want - got}
	} else {
		got := min(item.Quantity, MaxQuantity)
		line := LineItem{
			ProductID:  item.ProductID,
			Title:      item.Title,
			UnitPrice:  item.Price,
			Image:      item.Image,
			Variations: item.Variations.Normalize(),
			UniqueKey:  key,
			AddedAt:    s.now(),
		}
		line.setQuantity(got)
		s.items = append(s.items, line)
		res = Result{Item: line, Dropped: item.Quantity - got}
	}

	if res.Dropped > 0 {
		s.logger.Info("Cart quantity capped", "unique_key", key, "dropped", res.Dropped)
		s.notifier.Notify(notify.Warning(fmt.Sprintf("Maximum %d items per product", MaxQuantity)))
	}

	res.PersistErr = s.persist(ctx, "add")
	return res, nil
}

// UpdateQuantity changes a line's quantity by delta. A result below 1
// removes the line; a result above MaxQuantity is rejected and nothing
// changes.
func (s *Store) UpdateQuantity(ctx context.Context, key string, delta int) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(key)
	if idx < 0 {
		return Result{}, ErrItemNotFound
	}

	next := s.items[idx].Quantity + delta
	if next > MaxQuantity {
		s.notifier.Notify(notify.Warning(fmt.Sprintf("Maximum %d items per product", MaxQuantity)))
		return Result{Item: s.items[idx]}, &ValidationError{
			Field:   "quantity",
			Message: fmt.Sprintf("Maximum %d items per product", MaxQuantity),
			Err:     ErrQuantityLimit,
		}
	}

	if next < 1 {
		removed := s.removeAt(idx)
		return Result{Item: removed, Removed: true, PersistErr: s.persist(ctx, "remove")}, nil
	}

	s.items[idx].setQuantity(next)
	return Result{Item: s.items[idx], PersistErr: s.persist(ctx, "update")}, nil
}

// RemoveItem deletes the line with key
func (s *Store) RemoveItem(ctx context.Context, key string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(key)
	if idx < 0 {
		return Result{}, ErrItemNotFound
	}
	removed := s.removeAt(idx)
	return Result{Item: removed, Removed: true, PersistErr: s.persist(ctx, "remove")}, nil
}

// Clear empties the cart and deletes the stored record
func (s *Store) Clear(ctx context.Context) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	err := s.storage.Delete(ctx, s.key)
	s.afterPersist(ctx, "clear", err)
	return Result{Removed: true, PersistErr: err}
}

// Items returns a copy of the line items in insertion order
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, len(s.items))
	for i, item := range s.items {
		out[i] = item
		out[i].Variations = make(Variations, len(item.Variations))
		for k, v := range item.Variations {
			out[i].Variations[k] = v
		}
	}
	return out
}

// Get returns the line with key
func (s *Store) Get(key string) (LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOf(key); idx >= 0 {
		return s.items[idx], true
	}
	return LineItem{}, false
}

// Count returns the total number of units, the cart badge value
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

// Summary returns the cart totals
func (s *Store) Summary() Summary {
	return Summarize(s.Items())
}

// indexOf must be called with the lock held
func (s *Store) indexOf(key string) int {
	for i := range s.items {
		if s.items[i].UniqueKey == key {
			return i
		}
	}
	return -1
}

// removeAt must be called with the lock held
func (s *Store) removeAt(idx int) LineItem {
	removed := s.items[idx]
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	return removed
}

// persist writes the whole cart. Must be called with the lock held.
func (s *Store) persist(ctx context.Context, op string) error {
	items := s.items
	if items == nil {
		items = []LineItem{}
	}
	data, err := json.Marshal(items)
	if err == nil {
		err = s.storage.Set(ctx, s.key, string(data), 0)
	}
	s.afterPersist(ctx, op, err)
	return err
}

func (s *Store) afterPersist(ctx context.Context, op string, err error) {
	s.metrics.RecordCartMutation(ctx, op, err == nil)
	if err == nil {
		return
	}
	s.logger.Error("Error saving cart", telemetry.EnrichLogFields(ctx, map[string]interface{}{
		"operation": op,
		"key":       s.key,
		"error":     err.Error(),
	}))
	s.notifier.Notify(notify.Warning("Error saving cart data"))
}
