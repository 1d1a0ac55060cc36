package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"ecomdemo/datagen/models"
)

// WriteCSV writes events.csv and orders.csv into dir, creating it if needed.
func WriteCSV(dir string, events []models.Event, orders []models.Order) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}
	if err := writeFile(filepath.Join(dir, EventsCSV), func(w io.Writer) error {
		return writeEvents(w, events)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, OrdersCSV), func(w io.Writer) error {
		return writeOrders(w, orders)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func writeEvents(w io.Writer, events []models.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(EventColumns); err != nil {
		return err
	}
	for _, e := range events {
		err := cw.Write([]string{
			e.EventID,
			e.EventTS.UTC().Format(timestampLayout),
			e.EventDate.Format(dateLayout),
			e.UserID,
			e.SessionID,
			string(e.EventType),
			e.ProductID,
			e.ProductName,
			e.Device,
			e.Country,
			e.TrafficSource,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeOrders(w io.Writer, orders []models.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(OrderColumns); err != nil {
		return err
	}
	for _, o := range orders {
		err := cw.Write([]string{
			o.OrderID,
			o.OrderTS.UTC().Format(timestampLayout),
			o.OrderDate.Format(dateLayout),
			o.UserID,
			o.SessionID,
			o.ProductID,
			o.ProductName,
			strconv.FormatInt(o.Quantity, 10),
			formatMoney(o.UnitPrice),
			formatMoney(o.Revenue),
			o.Currency,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ReadEventsCSV parses a file produced by WriteCSV.
func ReadEventsCSV(path string) ([]models.Event, error) {
	records, err := readRecords(path, EventColumns)
	if err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(records))
	for i, r := range records {
		ts, err := parseTimestamp(r[1])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		date, err := time.Parse(dateLayout, r[2])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		events = append(events, models.Event{
			EventID:       r[0],
			EventTS:       ts,
			EventDate:     date,
			UserID:        r[3],
			SessionID:     r[4],
			EventType:     models.EventType(r[5]),
			ProductID:     r[6],
			ProductName:   r[7],
			Device:        r[8],
			Country:       r[9],
			TrafficSource: r[10],
		})
	}
	return events, nil
}

// ReadOrdersCSV parses a file produced by WriteCSV.
func ReadOrdersCSV(path string) ([]models.Order, error) {
	records, err := readRecords(path, OrderColumns)
	if err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(records))
	for i, r := range records {
		line := i + 2
		ts, err := parseTimestamp(r[1])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		date, err := time.Parse(dateLayout, r[2])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		quantity, err := strconv.ParseInt(r[7], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: invalid quantity: %w", path, line, err)
		}
		unitPrice, err := strconv.ParseFloat(r[8], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: invalid unit_price: %w", path, line, err)
		}
		revenue, err := strconv.ParseFloat(r[9], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: invalid revenue: %w", path, line, err)
		}
		orders = append(orders, models.Order{
			OrderID:     r[0],
			OrderTS:     ts,
			OrderDate:   date,
			UserID:      r[3],
			SessionID:   r[4],
			ProductID:   r[5],
			ProductName: r[6],
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			Revenue:     revenue,
			Currency:    r[10],
		})
	}
	return orders, nil
}

func readRecords(path string, columns []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = len(columns)
	cr.ReuseRecord = false

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s is empty, expected a header row", path)
	}
	if !slices.Equal(records[0], columns) {
		return nil, fmt.Errorf("%s has unexpected header %v", path, records[0])
	}
	return records[1:], nil
}

func parseTimestamp(s string) (time.Time, error) {
	ts, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}
