package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickcommerce/insights/internal/models"
)

// OrdersRepository reads historical orders.
type OrdersRepository struct {
	db *pgxpool.Pool
}

// NewOrdersRepository creates a new orders repository.
func NewOrdersRepository(db *pgxpool.Pool) *OrdersRepository {
	return &OrdersRepository{db: db}
}

// DeliveryOutcomes returns every order with both a promised and an actual delivery time, reduced to
// the delay model's features. DayOfWeek is Monday-based (0 = Monday).
func (r *OrdersRepository) DeliveryOutcomes(ctx context.Context) ([]models.DeliveryOutcome, error) {
	query := `
		SELECT order_date, promised_time, actual_time
		FROM orders_data
		WHERE promised_time IS NOT NULL
		  AND actual_time IS NOT NULL
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery outcomes: %w", err)
	}

	outcomes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.DeliveryOutcome, error) {
		var ordered, promised, actual time.Time
		if err := row.Scan(&ordered, &promised, &actual); err != nil {
			return models.DeliveryOutcome{}, err
		}

		return DeliveryOutcomeFor(ordered, promised, actual), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan delivery outcomes: %w", err)
	}

	return outcomes, nil
}

// DeliveryOutcomeFor derives the model features for one order.
func DeliveryOutcomeFor(ordered, promised, actual time.Time) models.DeliveryOutcome {
	return models.DeliveryOutcome{
		HourOfDay: ordered.Hour(),
		DayOfWeek: (int(ordered.Weekday()) + 6) % 7,
		Late:      actual.After(promised),
	}
}
