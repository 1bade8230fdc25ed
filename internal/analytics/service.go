package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"ms-tradein/internal/models"
)

// Service aggregates order and negotiation figures for recycler dashboards.
type Service struct {
	db bun.IDB
}

// NewService creates a new analytics service
func NewService(db bun.IDB) *Service {
	return &Service{db: db}
}

// RecyclerAnalytics summarises one recycler's trade-ins over [From, To).
type RecyclerAnalytics struct {
	RecyclerID     string                     `json:"recycler_id"`
	From           time.Time                  `json:"from"`
	To             time.Time                  `json:"to"`
	TotalOrders    int                        `json:"total_orders"`
	OrdersByStatus map[models.OrderStatus]int `json:"orders_by_status"`
	QuotedValue    decimal.Decimal            `json:"quoted_value"`
	PaidOut        decimal.Decimal            `json:"paid_out"`
	CounterOffers  CounterOfferMetrics        `json:"counter_offers"`
	DailyOrders    []DailyOrderMetrics        `json:"daily_orders"`
}

// CounterOfferMetrics describes how negotiations went.
type CounterOfferMetrics struct {
	Total    int                               `json:"total"`
	ByStatus map[models.CounterOfferStatus]int `json:"by_status"`
	// AcceptanceRate is accepted / (accepted + declined + expired).
	AcceptanceRate   float64         `json:"acceptance_rate"`
	AverageReduction decimal.Decimal `json:"average_reduction"`
}

// DailyOrderMetrics contains metrics for a single day
type DailyOrderMetrics struct {
	Date   string          `json:"date"`
	Orders int             `json:"orders"`
	Value  decimal.Decimal `json:"value"`
}

// GetRecyclerAnalytics builds the dashboard figures for recyclerID.
func (s *Service) GetRecyclerAnalytics(ctx context.Context, recyclerID string, from, to time.Time) (*RecyclerAnalytics, error) {
	if !to.After(from) {
		return nil, models.NewValidationError("to", "to must be after from")
	}
	from, to = from.UTC(), to.UTC()

	result := &RecyclerAnalytics{
		RecyclerID:     recyclerID,
		From:           from,
		To:             to,
		OrdersByStatus: map[models.OrderStatus]int{},
		QuotedValue:    decimal.Zero,
		PaidOut:        decimal.Zero,
		CounterOffers: CounterOfferMetrics{
			ByStatus:         map[models.CounterOfferStatus]int{},
			AverageReduction: decimal.Zero,
		},
		DailyOrders: []DailyOrderMetrics{},
	}

	type statusCountRaw struct {
		Status string `bun:"status"`
		Count  int    `bun:"order_count"`
	}
	var statusCounts []statusCountRaw
	err := s.db.NewSelect().
		ColumnExpr("o.status").
		ColumnExpr("COUNT(*) AS order_count").
		TableExpr("orders AS o").
		Where("o.recycler_id = ?", recyclerID).
		Where("o.created_at >= ? AND o.created_at < ?", from, to).
		GroupExpr("o.status").
		OrderExpr("o.status").
		Scan(ctx, &statusCounts)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	for _, sc := range statusCounts {
		// tolerate legacy spellings still in old rows
		status, err := models.ParseOrderStatus(sc.Status)
		if err != nil {
			continue
		}
		result.OrdersByStatus[status] += sc.Count
		result.TotalOrders += sc.Count
	}

	var orders []models.Order
	err = s.db.NewSelect().
		Model(&orders).
		Column("id", "amount", "payment_status", "created_at").
		Where("recycler_id = ?", recyclerID).
		Where("created_at >= ? AND created_at < ?", from, to).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	daily := map[string]*DailyOrderMetrics{}
	for _, o := range orders {
		result.QuotedValue = result.QuotedValue.Add(o.Amount)
		if o.PaymentStatus == models.PaymentStatusPaid {
			result.PaidOut = result.PaidOut.Add(o.Amount)
		}

		day := o.CreatedAt.UTC().Format("2006-01-02")
		d, ok := daily[day]
		if !ok {
			d = &DailyOrderMetrics{Date: day, Value: decimal.Zero}
			daily[day] = d
		}
		d.Orders++
		d.Value = d.Value.Add(o.Amount)
	}
	for _, d := range daily {
		result.DailyOrders = append(result.DailyOrders, *d)
	}
	sort.Slice(result.DailyOrders, func(i, j int) bool {
		return result.DailyOrders[i].Date < result.DailyOrders[j].Date
	})

	offers, err := s.offerMetrics(ctx, recyclerID, from, to)
	if err != nil {
		return nil, err
	}
	result.CounterOffers = *offers
	return result, nil
}

func (s *Service) offerMetrics(ctx context.Context, recyclerID string, from, to time.Time) (*CounterOfferMetrics, error) {
	var offers []models.CounterOffer
	err := s.db.NewSelect().
		Model(&offers).
		Column("id", "status", "original_price", "amended_price").
		Where("created_by = ?", recyclerID).
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load counter offers: %w", err)
	}

	m := &CounterOfferMetrics{
		Total:            len(offers),
		ByStatus:         map[models.CounterOfferStatus]int{},
		AverageReduction: decimal.Zero,
	}
	if len(offers) == 0 {
		return m, nil
	}

	reduction := decimal.Zero
	for _, o := range offers {
		m.ByStatus[o.Status]++
		reduction = reduction.Add(o.OriginalPrice.Sub(o.AmendedPrice))
	}
	m.AverageReduction = reduction.Div(decimal.NewFromInt(int64(len(offers)))).Round(2)

	accepted := m.ByStatus[models.CounterOfferAccepted]
	if answered := accepted + m.ByStatus[models.CounterOfferDeclined] + m.ByStatus[models.CounterOfferExpired]; answered > 0 {
		m.AcceptanceRate = float64(accepted) / float64(answered)
	}
	return m, nil
}
