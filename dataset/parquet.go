package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog/log"

	"ecomdemo/datagen/models"
)

type eventRow struct {
	EventID       string    `parquet:"event_id"`
	EventTS       time.Time `parquet:"event_ts,timestamp(microsecond)"`
	EventDate     int32     `parquet:"event_date,date"`
	UserID        string    `parquet:"user_id,dict"`
	SessionID     string    `parquet:"session_id"`
	EventType     string    `parquet:"event_type,dict"`
	ProductID     string    `parquet:"product_id,dict"`
	ProductName   string    `parquet:"product_name,dict"`
	Device        string    `parquet:"device,dict"`
	Country       string    `parquet:"country,dict"`
	TrafficSource string    `parquet:"traffic_source,dict"`
}

type orderRow struct {
	OrderID     string    `parquet:"order_id"`
	OrderTS     time.Time `parquet:"order_ts,timestamp(microsecond)"`
	OrderDate   int32     `parquet:"order_date,date"`
	UserID      string    `parquet:"user_id"`
	SessionID   string    `parquet:"session_id"`
	ProductID   string    `parquet:"product_id,dict"`
	ProductName string    `parquet:"product_name,dict"`
	Quantity    int64     `parquet:"quantity"`
	UnitPrice   float64   `parquet:"unit_price"`
	Revenue     float64   `parquet:"revenue"`
	Currency    string    `parquet:"currency,dict"`
}

// daysSinceEpoch is the parquet DATE encoding.
func daysSinceEpoch(t time.Time) int32 {
	return int32(models.DateOf(t).Unix() / 86400)
}

func fromDays(d int32) time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

func toEventRows(events []models.Event) []eventRow {
	rows := make([]eventRow, len(events))
	for i, e := range events {
		rows[i] = eventRow{
			EventID:       e.EventID,
			EventTS:       e.EventTS.UTC(),
			EventDate:     daysSinceEpoch(e.EventDate),
			UserID:        e.UserID,
			SessionID:     e.SessionID,
			EventType:     string(e.EventType),
			ProductID:     e.ProductID,
			ProductName:   e.ProductName,
			Device:        e.Device,
			Country:       e.Country,
			TrafficSource: e.TrafficSource,
		}
	}
	return rows
}

func toOrderRows(orders []models.Order) []orderRow {
	rows := make([]orderRow, len(orders))
	for i, o := range orders {
		rows[i] = orderRow{
			OrderID:     o.OrderID,
			OrderTS:     o.OrderTS.UTC(),
			OrderDate:   daysSinceEpoch(o.OrderDate),
			UserID:      o.UserID,
			SessionID:   o.SessionID,
			ProductID:   o.ProductID,
			ProductName: o.ProductName,
			Quantity:    o.Quantity,
			UnitPrice:   o.UnitPrice,
			Revenue:     o.Revenue,
			Currency:    o.Currency,
		}
	}
	return rows
}

// WriteParquet writes events.parquet and orders.parquet into dir. The pair is all or
// nothing: on failure any file this call created is removed again.
func WriteParquet(dir string, events []models.Event, orders []models.Order) (err error) {
	var created []string
	defer func() {
		if err == nil {
			return
		}
		for _, path := range created {
			if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				log.Warn().Err(rmErr).Str("path", path).Msg("failed to remove partial parquet file")
			}
		}
	}()

	eventsPath := filepath.Join(dir, EventsParquet)
	if err = writeParquetFile(eventsPath, toEventRows(events), &created); err != nil {
		return err
	}
	ordersPath := filepath.Join(dir, OrdersParquet)
	return writeParquetFile(ordersPath, toOrderRows(orders), &created)
}

func writeParquetFile[T any](path string, rows []T, created *[]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	*created = append(*created, path)

	pw := parquet.NewGenericWriter[T](f)
	if _, err := pw.Write(rows); err != nil {
		_ = pw.Close()
		f.Close()
		return fmt.Errorf("failed to write parquet rows to %s: %w", path, err)
	}
	if err := pw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to close parquet writer for %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// ReadEventsParquet is the inverse of the events half of WriteParquet.
func ReadEventsParquet(path string) ([]models.Event, error) {
	rows, err := parquet.ReadFile[eventRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	events := make([]models.Event, len(rows))
	for i, r := range rows {
		events[i] = models.Event{
			EventID:       r.EventID,
			EventTS:       r.EventTS.UTC(),
			EventDate:     fromDays(r.EventDate),
			UserID:        r.UserID,
			SessionID:     r.SessionID,
			EventType:     models.EventType(r.EventType),
			ProductID:     r.ProductID,
			ProductName:   r.ProductName,
			Device:        r.Device,
			Country:       r.Country,
			TrafficSource: r.TrafficSource,
		}
	}
	return events, nil
}

func ReadOrdersParquet(path string) ([]models.Order, error) {
	rows, err := parquet.ReadFile[orderRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	orders := make([]models.Order, len(rows))
	for i, r := range rows {
		orders[i] = models.Order{
			OrderID:     r.OrderID,
			OrderTS:     r.OrderTS.UTC(),
			OrderDate:   fromDays(r.OrderDate),
			UserID:      r.UserID,
			SessionID:   r.SessionID,
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Quantity:    r.Quantity,
			UnitPrice:   r.UnitPrice,
			Revenue:     r.Revenue,
			Currency:    r.Currency,
		}
	}
	return orders, nil
}
