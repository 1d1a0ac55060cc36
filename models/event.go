package models

import "time"

type EventType string

const (
	EventPageView    EventType = "page_view"
	EventProductView EventType = "product_view"
	EventAddToCart   EventType = "add_to_cart"
	EventCheckout    EventType = "checkout"
	EventPurchase    EventType = "purchase"
)

// FunnelSteps lists the event types in funnel order.
var FunnelSteps = []EventType{EventPageView, EventProductView, EventAddToCart, EventCheckout, EventPurchase}

func (t EventType) Valid() bool {
	for _, s := range FunnelSteps {
		if t == s {
			return true
		}
	}
	return false
}

// Event is one user action inside a session.
type Event struct {
	EventID       string    `json:"eventId"`
	EventTS       time.Time `json:"eventTs"`
	EventDate     time.Time `json:"eventDate"`
	UserID        string    `json:"userId" binding:"required"`
	SessionID     string    `json:"sessionId" binding:"required"`
	EventType     EventType `json:"eventType" binding:"required"`
	ProductID     string    `json:"productId"`
	ProductName   string    `json:"productName"`
	Device        string    `json:"device"`
	Country       string    `json:"country"`
	TrafficSource string    `json:"trafficSource"`
}

// Order is one completed purchase.
type Order struct {
	OrderID     string    `json:"orderId"`
	OrderTS     time.Time `json:"orderTs"`
	OrderDate   time.Time `json:"orderDate"`
	UserID      string    `json:"userId"`
	SessionID   string    `json:"sessionId"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int64     `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	Revenue     float64   `json:"revenue"`
	Currency    string    `json:"currency"`
}

type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// DateOf truncates ts to its UTC calendar day.
func DateOf(ts time.Time) time.Time {
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
