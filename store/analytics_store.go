package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"ecomdemo/datagen/database"
	"ecomdemo/datagen/models"
	"ecomdemo/datagen/utils"
)

const (
	eventsTable = "clickstream_events"
	ordersTable = "clickstream_orders"
)

type AnalyticsStore struct {
	DB *database.ClickHouseClient
}

func NewAnalyticsStore(chClient *database.ClickHouseClient) *AnalyticsStore {
	return &AnalyticsStore{DB: chClient}
}

// EnsureSchema creates the event and order tables when they are missing.
func (s *AnalyticsStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				event_id       String,
				event_ts       DateTime64(3, 'UTC'),
				event_date     Date,
				user_id        String,
				session_id     String,
				event_type     LowCardinality(String),
				product_id     LowCardinality(String),
				product_name   String,
				device         LowCardinality(String),
				country        LowCardinality(String),
				traffic_source LowCardinality(String)
			) ENGINE = MergeTree
			PARTITION BY toYYYYMM(event_date)
			ORDER BY (event_date, session_id, event_ts)
		`, eventsTable),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				order_id     String,
				order_ts     DateTime64(3, 'UTC'),
				order_date   Date,
				user_id      String,
				session_id   String,
				product_id   LowCardinality(String),
				product_name String,
				quantity     Int64,
				unit_price   Decimal(12, 2),
				revenue      Decimal(12, 2),
				currency     LowCardinality(String)
			) ENGINE = MergeTree
			PARTITION BY toYYYYMM(order_date)
			ORDER BY (order_date, order_id)
		`, ordersTable),
	}

	for _, stmt := range statements {
		if err := s.DB.Conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure ClickHouse schema: %w", err)
		}
	}
	return nil
}

func (s *AnalyticsStore) InsertEvents(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, fmt.Sprintf(`
		INSERT INTO %s (
			event_id, event_ts, event_date, user_id, session_id, event_type,
			product_id, product_name, device, country, traffic_source
		)
	`, eventsTable))
	if err != nil {
		return fmt.Errorf("failed to prepare event batch: %w", err)
	}

	for _, e := range events {
		err := batch.Append(
			e.EventID,
			e.EventTS,
			e.EventDate,
			e.UserID,
			e.SessionID,
			string(e.EventType),
			e.ProductID,
			e.ProductName,
			e.Device,
			e.Country,
			e.TrafficSource,
		)
		if err != nil {
			_ = batch.Abort()
			return fmt.Errorf("failed to append event %s: %w", e.EventID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send event batch: %w", err)
	}

	log.Info().Int("rows", len(events)).Str("table", eventsTable).Msg("inserted events")
	return nil
}

func (s *AnalyticsStore) InsertOrders(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, fmt.Sprintf(`
		INSERT INTO %s (
			order_id, order_ts, order_date, user_id, session_id, product_id,
			product_name, quantity, unit_price, revenue, currency
		)
	`, ordersTable))
	if err != nil {
		return fmt.Errorf("failed to prepare order batch: %w", err)
	}

	for _, o := range orders {
		err := batch.Append(
			o.OrderID,
			o.OrderTS,
			o.OrderDate,
			o.UserID,
			o.SessionID,
			o.ProductID,
			o.ProductName,
			o.Quantity,
			decimal.NewFromFloat(o.UnitPrice),
			decimal.NewFromFloat(o.Revenue),
			o.Currency,
		)
		if err != nil {
			_ = batch.Abort()
			return fmt.Errorf("failed to append order %s: %w", o.OrderID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send order batch: %w", err)
	}

	log.Info().Int("rows", len(orders)).Str("table", ordersTable).Msg("inserted orders")
	return nil
}

// Funnel counts distinct sessions reaching each funnel step.
func (s *AnalyticsStore) Funnel(ctx context.Context, start, end time.Time) ([]models.FunnelStep, error) {
	query := fmt.Sprintf(`
		SELECT event_type, uniqExact(session_id) AS sessions
		FROM %s
		WHERE event_ts >= ? AND event_ts <= ?
		GROUP BY event_type
	`, eventsTable)

	rows, err := s.DB.Conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query funnel: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.EventType]uint64)
	for rows.Next() {
		var (
			eventType string
			sessions  uint64
		)
		if err := rows.Scan(&eventType, &sessions); err != nil {
			return nil, fmt.Errorf("failed to scan funnel row: %w", err)
		}
		counts[models.EventType(eventType)] = sessions
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during funnel query: %w", err)
	}

	steps := make([]models.FunnelStep, 0, len(models.FunnelSteps))
	for _, step := range models.FunnelSteps {
		steps = append(steps, models.FunnelStep{EventType: step, Sessions: counts[step]})
	}
	return steps, nil
}

func (s *AnalyticsStore) EventCountsOverTime(ctx context.Context, interval string, start, end time.Time, eventType string) ([]models.CountByTime, error) {
	if !utils.IsValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}

	args := []interface{}{start, end}
	selectCols := fmt.Sprintf("toStartOf%s(event_ts) AS time_bucket, count() AS total_events", interval)
	groupBy := "time_bucket"
	where := "WHERE event_ts >= ? AND event_ts <= ?"
	orderBy := "time_bucket ASC"

	filtered := eventType != ""
	if filtered {
		selectCols += ", event_type"
		groupBy += ", event_type"
		where += " AND event_type = ?"
		orderBy += ", event_type ASC"
		args = append(args, eventType)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		%s
		GROUP BY %s
		ORDER BY %s
	`, selectCols, eventsTable, where, groupBy, orderBy)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query event counts over time: %w", err)
	}
	defer rows.Close()

	var results []models.CountByTime
	for rows.Next() {
		var (
			bucket time.Time
			count  uint64
			et     string
			result models.CountByTime
		)
		if filtered {
			if err := rows.Scan(&bucket, &count, &et); err != nil {
				return nil, fmt.Errorf("failed to scan event count row: %w", err)
			}
			t := models.EventType(et)
			result.EventType = &t
		} else if err := rows.Scan(&bucket, &count); err != nil {
			return nil, fmt.Errorf("failed to scan event count row: %w", err)
		}
		result.Time = bucket
		result.Count = count
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during event counts query: %w", err)
	}
	return results, nil
}

func (s *AnalyticsStore) UniqueUsersOverTime(ctx context.Context, interval string, start, end time.Time) ([]models.CountByTime, error) {
	if !utils.IsValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}

	query := fmt.Sprintf(`
		SELECT toStartOf%s(event_ts) AS time_bucket, uniq(user_id) AS unique_users
		FROM %s
		WHERE event_ts >= ? AND event_ts <= ?
		GROUP BY time_bucket
		ORDER BY time_bucket ASC
	`, interval, eventsTable)

	rows, err := s.DB.Conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query unique users over time: %w", err)
	}
	defer rows.Close()

	var results []models.CountByTime
	for rows.Next() {
		var (
			bucket time.Time
			users  uint64
		)
		if err := rows.Scan(&bucket, &users); err != nil {
			return nil, fmt.Errorf("failed to scan unique users row: %w", err)
		}
		results = append(results, models.CountByTime{Time: bucket, Count: users})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for unique users: %w", err)
	}
	return results, nil
}

func (s *AnalyticsStore) RevenueOverTime(ctx context.Context, interval string, start, end time.Time) ([]models.RevenueByTime, error) {
	if !utils.IsValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}

	query := fmt.Sprintf(`
		SELECT toStartOf%s(order_ts) AS time_bucket, count() AS orders, sum(revenue) AS revenue
		FROM %s
		WHERE order_ts >= ? AND order_ts <= ?
		GROUP BY time_bucket
		ORDER BY time_bucket ASC
	`, interval, ordersTable)

	rows, err := s.DB.Conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue over time: %w", err)
	}
	defer rows.Close()

	var results []models.RevenueByTime
	for rows.Next() {
		var (
			bucket  time.Time
			orders  uint64
			revenue decimal.Decimal
		)
		if err := rows.Scan(&bucket, &orders, &revenue); err != nil {
			return nil, fmt.Errorf("failed to scan revenue row: %w", err)
		}
		results = append(results, models.RevenueByTime{
			Time:    bucket,
			Orders:  orders,
			Revenue: revenue.InexactFloat64(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for revenue: %w", err)
	}
	return results, nil
}

func (s *AnalyticsStore) TopProducts(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopProductResult, error) {
	if limit == 0 {
		limit = 10
	}

	query := fmt.Sprintf(`
		SELECT product_id, any(product_name) AS name, count() AS orders, sum(revenue) AS revenue
		FROM %s
		WHERE order_ts >= ? AND order_ts <= ?
		GROUP BY product_id
		ORDER BY revenue DESC
		LIMIT ?
	`, ordersTable)

	rows, err := s.DB.Conn.Query(ctx, query, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer rows.Close()

	var results []models.TopProductResult
	for rows.Next() {
		var (
			r       models.TopProductResult
			revenue decimal.Decimal
		)
		if err := rows.Scan(&r.ProductID, &r.ProductName, &r.Orders, &revenue); err != nil {
			return nil, fmt.Errorf("failed to scan top product row: %w", err)
		}
		r.Revenue = revenue.InexactFloat64()
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for top products: %w", err)
	}
	return results, nil
}
