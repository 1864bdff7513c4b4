package action

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no item has the requested ID.
var ErrNotFound = errors.New("action item not found")

// Repository persists action items. ListByCountry returns items in Less
// order.
type Repository interface {
	ListByCountry(ctx context.Context, countryCode string) ([]*Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	CreateBatch(ctx context.Context, items []*Item) error
	Update(ctx context.Context, it *Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByCountry(ctx context.Context, countryCode string) (int64, error)
}
