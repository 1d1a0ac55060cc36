package generator

import (
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"ecomdemo/datagen/models"
)

const (
	CatalogSize = 100
	minPrice    = 9.0
	maxPrice    = 199.0

	minSessionDuration = 8 * 60
	maxSessionDuration = 22 * 60

	minEventsPerSession = 3
	quantityMean        = 1.2
	currency            = "USD"

	pAddToCart = 0.35
	pCheckout  = 0.55
	pPurchase  = 0.60
)

// Dataset is everything one run produces. It is not mutated after Generate returns.
type Dataset struct {
	Catalog  []models.Product
	Events   []models.Event
	Orders   []models.Order
	Sessions int
}

type generator struct {
	s       *sampler
	catalog []models.Product

	padding *weighted[models.EventType]
	device  *weighted[string]
	country *weighted[string]
	source  *weighted[string]

	nextOrder int
}

// Generate builds a synthetic clickstream and the orders it implies. The output is a pure
// function of opts: the same options (including End) always yield the same dataset.
func Generate(opts Options) (*Dataset, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	end := opts.windowEnd()
	start := end.AddDate(0, 0, -opts.Days)
	windowSeconds := int64(end.Sub(start) / time.Second)

	s := newSampler(opts.Seed)
	g := &generator{
		s:       s,
		padding: newWeighted(s, []models.EventType{models.EventPageView, models.EventProductView}, []float64{0.45, 0.55}),
		device:  newWeighted(s, []string{"mobile", "desktop", "tablet"}, []float64{0.62, 0.33, 0.05}),
		country: newWeighted(s, []string{"US", "IN", "CA", "UK", "AU"}, []float64{0.35, 0.30, 0.12, 0.13, 0.10}),
		source: newWeighted(s, []string{"organic", "paid", "referral", "email", "direct"},
			[]float64{0.40, 0.22, 0.14, 0.08, 0.16}),
		nextOrder: 1,
	}
	g.catalog = newCatalog(s)

	sessionsPerUser := make([]int, opts.Users)
	for i := range sessionsPerUser {
		sessionsPerUser[i] = s.poisson(opts.AvgSessionsPerUser, 1)
	}

	ds := &Dataset{Catalog: g.catalog}
	for u, n := range sessionsPerUser {
		userID := fmt.Sprintf("u_%05d", u+1)
		for i := 0; i < n; i++ {
			sessionID := fmt.Sprintf("s_%s_%03d", userID, i)
			sessionStart := start.Add(time.Duration(s.intN(windowSeconds)) * time.Second)
			g.session(ds, userID, sessionID, sessionStart, opts.AvgEventsPerSession)
			ds.Sessions++
		}
	}

	log.Debug().
		Int("users", opts.Users).
		Int("sessions", ds.Sessions).
		Int("events", len(ds.Events)).
		Int("orders", len(ds.Orders)).
		Msg("dataset generated")
	return ds, nil
}

func newCatalog(s *sampler) []models.Product {
	catalog := make([]models.Product, CatalogSize)
	for i := range catalog {
		catalog[i] = models.Product{
			ID:    fmt.Sprintf("p_%04d", i+1),
			Name:  fmt.Sprintf("Product %03d", i+1),
			Price: s.uniform(minPrice, maxPrice),
		}
	}
	return catalog
}

func (g *generator) session(ds *Dataset, userID, sessionID string, sessionStart time.Time, avgEvents float64) {
	s := g.s
	target := s.poisson(avgEvents, minEventsPerSession)
	product := g.catalog[s.intN(int64(len(g.catalog)))]

	sequence := g.funnel()
	purchased := sequence[len(sequence)-1] == models.EventPurchase
	for len(sequence) < target {
		sequence = slices.Insert(sequence, 1, g.padding.pick())
	}

	duration := minSessionDuration + s.intN(maxSessionDuration-minSessionDuration)
	offsets := make([]int64, len(sequence))
	for i := range offsets {
		offsets[i] = s.intN(duration)
	}
	slices.Sort(offsets)

	for i, eventType := range sequence {
		ts := sessionStart.Add(time.Duration(offsets[i]) * time.Second)
		ds.Events = append(ds.Events, models.Event{
			EventID:       fmt.Sprintf("e_%s_%03d", sessionID, i),
			EventTS:       ts,
			EventDate:     models.DateOf(ts),
			UserID:        userID,
			SessionID:     sessionID,
			EventType:     eventType,
			ProductID:     product.ID,
			ProductName:   product.Name,
			Device:        g.device.pick(),
			Country:       g.country.pick(),
			TrafficSource: g.source.pick(),
		})
	}

	if !purchased {
		return
	}

	quantity := s.poisson(quantityMean, 1)
	multiplier := s.uniform(0.9, 1.05)
	orderTS := sessionStart.Add(time.Duration(duration) * time.Second)
	ds.Orders = append(ds.Orders, models.Order{
		OrderID:     fmt.Sprintf("o_%07d", g.nextOrder),
		OrderTS:     orderTS,
		OrderDate:   models.DateOf(orderTS),
		UserID:      userID,
		SessionID:   sessionID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    int64(quantity),
		UnitPrice:   round2(decimal.NewFromFloat(product.Price)),
		Revenue: round2(decimal.NewFromFloat(product.Price).
			Mul(decimal.NewFromInt(int64(quantity))).
			Mul(decimal.NewFromFloat(multiplier))),
		Currency: currency,
	})
	g.nextOrder++
}

// funnel returns the mandatory head of the session plus whichever later steps the
// conditional coin flips admit. Each step is only flipped when the previous one passed.
func (g *generator) funnel() []models.EventType {
	seq := []models.EventType{models.EventPageView, models.EventProductView}
	if !g.s.flip(pAddToCart) {
		return seq
	}
	seq = append(seq, models.EventAddToCart)
	if !g.s.flip(pCheckout) {
		return seq
	}
	seq = append(seq, models.EventCheckout)
	if !g.s.flip(pPurchase) {
		return seq
	}
	return append(seq, models.EventPurchase)
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
