package ports

import (
	"context"
	"errors"

	"github.com/aretw0/pfc/pkg/schema"
)

var (
	// ErrChartNotFound is returned by Load when no chart is stored under a name.
	ErrChartNotFound = errors.New("chart not found")
	// ErrInvalidName is returned for empty chart names or names a backend
	// cannot use as a key.
	ErrInvalidName = errors.New("invalid chart name")
)

// ChartStore persists chart record sets keyed by chart name.
type ChartStore interface {
	// Save persists the record set under rec.Name, replacing any previous one.
	Save(ctx context.Context, rec *schema.Chart) error

	// Load retrieves the record set stored under name.
	// Returns ErrChartNotFound if there is none.
	Load(ctx context.Context, name string) (*schema.Chart, error)

	// Delete removes the record set. Deleting a missing chart is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored chart names in ascending order.
	List(ctx context.Context) ([]string, error)
}
