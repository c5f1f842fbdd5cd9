package store

import (
	"context"

	"github.com/brightpath/planview-bfa-go/internal/domain"
)

// FetchStatusOptions implements port.StatusOptionStore. Callers fall
// back to domain.DefaultStatusOptions when this fails.
func (c *Client) FetchStatusOptions(ctx context.Context) ([]domain.StatusOption, error) {
	ctx, span := tracer.Start(ctx, "Store.FetchStatusOptions")
	defer span.End()

	var rows []domain.StatusOption
	if err := c.getJSON(ctx, "status_options?order=sort.asc", &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
