package service

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
)

// csvPageSize is how many parent rows each DB round trip fetches. The repo is
// asked for one extra row to learn whether another page follows, so the whole
// table is never held in memory at once.
const csvPageSize = 200

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// OrdersCSVHeader is the fixed first row of the orders export.
var OrdersCSVHeader = []string{
	"order_id", "status", "customer_name", "comment",
	"product_id", "product_name", "unit_amount", "quantity", "subtotal",
	"order_total", "created_at",
}

// ProductsCSVHeader is the fixed first row of the products export.
var ProductsCSVHeader = []string{
	"product_id", "name", "price", "stock", "tags", "created_at", "updated_at",
}

type ExportService interface {
	WriteOrdersCSV(w io.Writer) error
	WriteProductsCSV(w io.Writer) error
}

type exportService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

func NewExportService(oRepo repository.OrderRepository, pRepo repository.ProductRepository) ExportService {
	return &exportService{orderRepo: oRepo, productRepo: pRepo}
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// orderCSVRows renders one row per item, or a single placeholder row when an
// order somehow has none, so every order appears in the export.
func orderCSVRows(order model.Order) [][]string {
	base := func() []string {
		return []string{
			formatInt(order.ID),
			string(order.Status),
			derefOrEmpty(order.CustomerName),
			derefOrEmpty(order.Comment),
		}
	}
	tail := []string{
		formatInt(order.TotalAmount),
		order.CreatedAt.UTC().Format(time.RFC3339),
	}

	if len(order.Items) == 0 {
		row := append(base(), "", "", "", "", "")
		return [][]string{append(row, tail...)}
	}

	rows := make([][]string, 0, len(order.Items))
	for _, item := range order.Items {
		productID := ""
		if item.ProductID != nil {
			productID = formatInt(*item.ProductID)
		}
		row := append(base(),
			productID,
			item.ProductName,
			formatInt(item.UnitAmount),
			formatInt(item.Quantity),
			formatInt(item.Subtotal()),
		)
		rows = append(rows, append(row, tail...))
	}
	return rows
}

func productCSVRow(product model.Product) []string {
	names := make([]string, len(product.Tags))
	for i, t := range product.Tags {
		names[i] = t.Name
	}
	return []string{
		formatInt(product.ID),
		product.Name,
		formatInt(product.Price),
		formatInt(product.Stock),
		strings.Join(names, ";"),
		product.CreatedAt.UTC().Format(time.RFC3339),
		product.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// WriteOrdersCSV streams the orders export: UTF-8 BOM, fixed header, then
// pages of orders by ascending id, one row per item.
func (s *exportService) WriteOrdersCSV(w io.Writer) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(OrdersCSVHeader); err != nil {
		return err
	}

	offset := 0
	for {
		page, err := s.orderRepo.FindPage(offset, csvPageSize+1)
		if err != nil {
			return err
		}
		hasNext := len(page) > csvPageSize
		if hasNext {
			page = page[:csvPageSize]
		}
		for _, order := range page {
			for _, row := range orderCSVRows(order) {
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
		if !hasNext {
			break
		}
		offset += csvPageSize
	}

	cw.Flush()
	return cw.Error()
}

// WriteProductsCSV streams the catalog export in the same paged fashion.
func (s *exportService) WriteProductsCSV(w io.Writer) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(ProductsCSVHeader); err != nil {
		return err
	}

	offset := 0
	for {
		page, err := s.productRepo.FindPage(offset, csvPageSize+1)
		if err != nil {
			return err
		}
		hasNext := len(page) > csvPageSize
		if hasNext {
			page = page[:csvPageSize]
		}
		for _, product := range page {
			if err := cw.Write(productCSVRow(product)); err != nil {
				return err
			}
		}
		if !hasNext {
			break
		}
		offset += csvPageSize
	}

	cw.Flush()
	return cw.Error()
}
