package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickcommerce/insights/internal/models"
)

// MarketingRepository reads daily marketing spend joined with order revenue.
type MarketingRepository struct {
	db *pgxpool.Pool
}

// NewMarketingRepository creates a new marketing repository.
func NewMarketingRepository(db *pgxpool.Pool) *MarketingRepository {
	return &MarketingRepository{db: db}
}

const dailyRoasQuery = `
	WITH daily_revenue AS (
		SELECT DATE(order_date) AS order_day, SUM(order_total) AS total_revenue
		FROM orders_data
		GROUP BY DATE(order_date)
	),
	daily_marketing AS (
		SELECT date AS marketing_day, SUM(spend) AS total_spend, SUM(impressions) AS total_impressions
		FROM marketing_data
		%s
		GROUP BY date
	)
	SELECT
		m.marketing_day,
		COALESCE(r.total_revenue, 0)::float8,
		m.total_spend::float8,
		COALESCE(m.total_impressions, 0)::bigint,
		CASE
			WHEN m.total_spend = 0 THEN NULL
			ELSE ROUND((r.total_revenue / m.total_spend)::numeric, 2)::float8
		END
	FROM daily_marketing m
	LEFT JOIN daily_revenue r ON m.marketing_day = r.order_day
	ORDER BY m.marketing_day
`

// DailyRoas returns one row per marketing day, optionally bounded (inclusive) by start and end.
// ROAS is nil for days without spend or without revenue.
func (r *MarketingRepository) DailyRoas(ctx context.Context, start, end *time.Time) ([]models.RoasDay, error) {
	var (
		conditions []string
		args       []any
	)

	if start != nil {
		args = append(args, *start)
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
	}

	if end != nil {
		args = append(args, *end)
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	rows, err := r.db.Query(ctx, fmt.Sprintf(dailyRoasQuery, where), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily roas: %w", err)
	}

	days, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.RoasDay, error) {
		var d models.RoasDay
		err := row.Scan(&d.Date, &d.TotalRevenue, &d.TotalSpend, &d.TotalImpressions, &d.ROAS)

		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan daily roas: %w", err)
	}

	return days, nil
}
