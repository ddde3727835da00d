package reports

import (
	"fmt"
	"strings"
	"time"

	"cuahang/cuahang/sources/psql/models"
	"cuahang/cuahang/utils/types"

	"github.com/xuri/excelize/v2"
)

// Workbook layout.
const (
	SheetName    = "LichSuBanHang"
	StatsRow     = 5
	HeaderRow    = 11
	FirstDataRow = HeaderRow + 1
)

var headers = []string{
	"Mã đơn hàng", "Ngày đặt", "Khách hàng", "Sản phẩm", "Số lượng",
	"Thành tiền", "Trạng thái", "Thanh toán", "Vận chuyển",
}

// ExportSalesHistory renders line items and their statistics as an xlsx file.
func ExportSalesHistory(items []models.OrderItem, store models.Store, stats types.SalesStats, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return nil, err
	}

	set := func(cell string, v any) {
		if err == nil {
			err = f.SetCellValue(SheetName, cell, v)
		}
	}

	set("A1", "LỊCH SỬ BÁN HÀNG")
	set("A2", "Cửa hàng: "+store.Name)
	set("A3", "Ngày xuất: "+now.Format("02/01/2006 15:04"))

	statRows := []struct {
		label string
		value any
	}{
		{"Tổng doanh thu", stats.TotalRevenue},
		{"Đơn hoàn thành", stats.TotalCompletedOrders},
		{"Đơn đã hủy", stats.TotalCancelledOrders},
		{"Sản phẩm đã bán", stats.TotalProductsSold},
		{"Giá trị trung bình/đơn", stats.AverageOrderValue},
	}
	for i, s := range statRows {
		set(fmt.Sprintf("A%d", StatsRow+i), s.label)
		set(fmt.Sprintf("B%d", StatsRow+i), s.value)
	}

	for i, h := range headers {
		cell, cerr := excelize.CoordinatesToCellName(i+1, HeaderRow)
		if cerr != nil {
			return nil, cerr
		}
		set(cell, h)
	}
	if err != nil {
		return nil, err
	}

	row := FirstDataRow
	for _, it := range items {
		set(fmt.Sprintf("A%d", row), it.OrderID)
		set(fmt.Sprintf("B%d", row), it.Order.CreatedAt.Format("02/01/2006"))
		set(fmt.Sprintf("C%d", row), it.Order.User.DisplayName())
		set(fmt.Sprintf("D%d", row), it.Product.Name)
		set(fmt.Sprintf("E%d", row), it.Quantity)
		set(fmt.Sprintf("F%d", row), it.LineTotal)
		set(fmt.Sprintf("G%d", row), it.Order.Status)
		set(fmt.Sprintf("H%d", row), paymentSummary(it.Order.Payments))
		set(fmt.Sprintf("I%d", row), shipmentSummary(it.Order.Shipments))
		row++
	}
	if err != nil {
		return nil, err
	}

	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), HeaderRow)
	if err := f.SetCellStyle(SheetName, "A1", "A1", bold); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, fmt.Sprintf("A%d", HeaderRow), lastHeader, bold); err != nil {
		return nil, err
	}
	if row > FirstDataRow {
		if err := f.SetCellStyle(SheetName, fmt.Sprintf("F%d", FirstDataRow), fmt.Sprintf("F%d", row-1), money); err != nil {
			return nil, err
		}
	}
	for _, w := range columnWidths {
		if err := f.SetColWidth(SheetName, w.from, w.to, w.width); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var columnWidths = []struct {
	from, to string
	width    float64
}{
	{"A", "A", 14},
	{"C", "D", 28},
	{"H", "I", 22},
}

func paymentSummary(payments []models.Payment) string {
	parts := make([]string, 0, len(payments))
	for _, p := range payments {
		parts = append(parts, strings.TrimSpace(p.Method+" "+p.Status))
	}
	return strings.Join(parts, ", ")
}

func shipmentSummary(shipments []models.Shipment) string {
	parts := make([]string, 0, len(shipments))
	for _, s := range shipments {
		parts = append(parts, strings.TrimSpace(s.Carrier+" "+s.Status))
	}
	return strings.Join(parts, ", ")
}
