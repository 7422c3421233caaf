//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/quickcommerce/insights/pkg/database"
)

const analyticsSchema = `
	CREATE TABLE orders_data (
		order_id      BIGSERIAL PRIMARY KEY,
		order_date    TIMESTAMP NOT NULL,
		promised_time TIMESTAMP,
		actual_time   TIMESTAMP,
		order_total   NUMERIC(10, 2) NOT NULL
	);
	CREATE TABLE marketing_data (
		campaign_id BIGSERIAL PRIMARY KEY,
		date        DATE NOT NULL,
		spend       NUMERIC(10, 2) NOT NULL,
		impressions BIGINT NOT NULL
	);
	INSERT INTO orders_data (order_date, promised_time, actual_time, order_total) VALUES
		('2024-03-04 18:00', '2024-03-04 18:15', '2024-03-04 18:25', 300),
		('2024-03-04 09:00', '2024-03-04 09:15', '2024-03-04 09:10', 100),
		('2024-03-05 12:00', NULL, NULL, 40);
	INSERT INTO marketing_data (date, spend, impressions) VALUES
		('2024-03-04', 100, 1000),
		('2024-03-04', 100, 500),
		('2024-03-05', 80, 200),
		('2024-03-06', 0, 50),
		('2024-03-07', 10, 10);
`

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("blinkit_analytics"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := database.NewPostgresPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, analyticsSchema)
	require.NoError(t, err)

	return pool
}

func TestMarketingRepository_DailyRoas(t *testing.T) {
	pool := setupPostgres(t)
	repo := NewMarketingRepository(pool)
	ctx := context.Background()

	t.Run("all days", func(t *testing.T) {
		days, err := repo.DailyRoas(ctx, nil, nil)
		require.NoError(t, err)
		require.Len(t, days, 4)

		assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), days[0].Date)
		assert.InDelta(t, 400, days[0].TotalRevenue, 1e-9)
		assert.InDelta(t, 200, days[0].TotalSpend, 1e-9)
		assert.Equal(t, int64(1500), days[0].TotalImpressions)
		require.NotNil(t, days[0].ROAS)
		assert.InDelta(t, 2.0, *days[0].ROAS, 1e-9)

		require.NotNil(t, days[1].ROAS)
		assert.InDelta(t, 0.5, *days[1].ROAS, 1e-9)

		assert.Nil(t, days[2].ROAS, "zero spend")
		assert.Nil(t, days[3].ROAS, "no revenue")
		assert.Zero(t, days[3].TotalRevenue)
	})

	t.Run("bounded range", func(t *testing.T) {
		start := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)

		days, err := repo.DailyRoas(ctx, &start, &end)
		require.NoError(t, err)
		require.Len(t, days, 2)
		assert.Equal(t, start, days[0].Date)
	})
}

func TestOrdersRepository_DeliveryOutcomes(t *testing.T) {
	pool := setupPostgres(t)

	outcomes, err := NewOrdersRepository(pool).DeliveryOutcomes(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	late := 0

	for _, o := range outcomes {
		assert.Equal(t, 0, o.DayOfWeek)

		if o.Late {
			late++
			assert.Equal(t, 18, o.HourOfDay)
		}
	}

	assert.Equal(t, 1, late)
}
