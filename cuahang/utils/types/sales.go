// cuahang/utils/types/sales.go
package types

import "time"

// DateLayout is the calendar-date format accepted by the sales filters.
const DateLayout = "2006-01-02"

// SalesFilter narrows the sales history of one store. Zero values mean "no filter".
type SalesFilter struct {
	Keyword     string
	ProductName string
	StartDate   *time.Time
	EndDate     *time.Time
}

type SalesStats struct {
	TotalRevenue         float64 `json:"totalRevenue"`
	TotalCompletedOrders int64   `json:"totalCompletedOrders"`
	TotalCancelledOrders int64   `json:"totalCancelledOrders"`
	TotalProductsSold    int64   `json:"totalProductsSold"`
	AverageOrderValue    float64 `json:"averageOrderValue"`
}

// WithAverage fills AverageOrderValue; it is 0 when there are no completed orders.
func (s SalesStats) WithAverage() SalesStats {
	if s.TotalCompletedOrders > 0 {
		s.AverageOrderValue = s.TotalRevenue / float64(s.TotalCompletedOrders)
	} else {
		s.AverageOrderValue = 0
	}
	return s
}
