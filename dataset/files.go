package dataset

const (
	EventsCSV     = "events.csv"
	OrdersCSV     = "orders.csv"
	EventsParquet = "events.parquet"
	OrdersParquet = "orders.parquet"
)

const (
	timestampLayout = "2006-01-02 15:04:05-07:00"
	dateLayout      = "2006-01-02"
)

var (
	EventColumns = []string{
		"event_id", "event_ts", "event_date", "user_id", "session_id", "event_type",
		"product_id", "product_name", "device", "country", "traffic_source",
	}
	OrderColumns = []string{
		"order_id", "order_ts", "order_date", "user_id", "session_id", "product_id",
		"product_name", "quantity", "unit_price", "revenue", "currency",
	}
)
