package repository

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"sobgamecoin/internal/domain"
	"sobgamecoin/internal/errors"
	"sobgamecoin/internal/storage"
)

const orderKeyPrefix = "order:"

// ErrDuplicateOrderID is returned by Create when the id is already taken.
var ErrDuplicateOrderID = stderrors.New("order id already exists")

type KVOrderRepository struct {
	store  storage.Store
	logger *zap.Logger
}

func NewKVOrderRepository(store storage.Store, logger *zap.Logger) *KVOrderRepository {
	return &KVOrderRepository{store: store, logger: logger}
}

func orderKey(id string) string {
	return orderKeyPrefix + id
}

func (r *KVOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encoding order: %w", err)
	}

	version, err := r.store.Create(ctx, orderKey(order.ID), data)
	if stderrors.Is(err, storage.ErrKeyExists) {
		return ErrDuplicateOrderID
	}
	if err != nil {
		return fmt.Errorf("creating order: %w", err)
	}

	order.Version = version
	return nil
}

func (r *KVOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	entry, err := r.store.Get(ctx, orderKey(id))
	if stderrors.Is(err, storage.ErrNotFound) {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	return decodeOrder(*entry)
}

// Update writes order if the stored version still matches order.Version.
// A concurrent writer yields storage.ErrVersionConflict.
func (r *KVOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encoding order: %w", err)
	}

	version, err := r.store.CompareAndSwap(ctx, orderKey(order.ID), data, order.Version)
	if stderrors.Is(err, storage.ErrNotFound) {
		return errors.NewNotFoundError(fmt.Sprintf("order with id %s not found", order.ID))
	}
	if err != nil {
		return fmt.Errorf("updating order: %w", err)
	}

	order.Version = version
	return nil
}

// List returns every readable order, newest first. Records that fail to
// decode are logged and skipped.
func (r *KVOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	entries, err := r.store.List(ctx, orderKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(entries))
	for _, entry := range entries {
		order, err := decodeOrder(entry)
		if err != nil {
			r.logger.Error("skipping unreadable order record", zap.String("key", entry.Key), zap.Error(err))
			continue
		}
		orders = append(orders, *order)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return orders, nil
}

func decodeOrder(entry storage.Entry) (*domain.Order, error) {
	var order domain.Order
	if err := json.Unmarshal(entry.Value, &order); err != nil {
		return nil, errors.NewInternalError(fmt.Sprintf("order record %s is malformed", entry.Key), err)
	}
	if err := order.Validate(); err != nil {
		return nil, errors.NewInternalError(fmt.Sprintf("order record %s is invalid", entry.Key), err)
	}

	order.Version = entry.Version
	return &order, nil
}
