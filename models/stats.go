package models

import "time"

type FunnelStep struct {
	EventType EventType `json:"eventType"`
	Sessions  uint64    `json:"sessions"`
}

type CountByTime struct {
	Time      time.Time  `json:"time"`
	EventType *EventType `json:"eventType,omitempty"`
	Count     uint64     `json:"count"`
}

type RevenueByTime struct {
	Time    time.Time `json:"time"`
	Orders  uint64    `json:"orders"`
	Revenue float64   `json:"revenue"`
}

type TopProductResult struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Orders      uint64  `json:"orders"`
	Revenue     float64 `json:"revenue"`
}
