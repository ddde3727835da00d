package reports

import (
	"regexp"
	"time"

	"cuahang/cuahang/sources/psql/models"
	"cuahang/cuahang/utils/types"
)

// ComputeStats recomputes the sales statistics of a hand-picked set of line
// items. Every item is expected to belong to a completed order, so the
// completed count is the number of distinct parent orders.
func ComputeStats(items []models.OrderItem) types.SalesStats {
	var stats types.SalesStats
	orders := make(map[int]struct{})
	for _, it := range items {
		stats.TotalRevenue += it.LineTotal
		stats.TotalProductsSold += int64(it.Quantity)
		orders[it.OrderID] = struct{}{}
	}
	stats.TotalCompletedOrders = int64(len(orders))
	return stats.WithAverage()
}

var whitespace = regexp.MustCompile(`\s+`)

const fileDateLayout = "02012006"

// ExportFileName is the attachment name of a full sales-history export.
func ExportFileName(storeName string, now time.Time) string {
	return "LichSuBanHang_" + whitespace.ReplaceAllString(storeName, "_") + "_" + now.Format(fileDateLayout) + ".xlsx"
}

// SelectedExportFileName is the attachment name of an export of picked orders.
func SelectedExportFileName(now time.Time) string {
	return "LichSuBanHang_DaChon_" + now.Format(fileDateLayout) + ".xlsx"
}
