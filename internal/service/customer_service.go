// internal/service/customer_service.go
package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/jkarimi/wacrm-backend/internal/errors"
	"github.com/jkarimi/wacrm-backend/internal/model"
	"github.com/jkarimi/wacrm-backend/internal/repository"
)

// Classification thresholds over purchase history.
const (
	bulkQuantityThreshold   = 50.0
	bulkOrderValueThreshold = 5000.0
	frequentCountThreshold  = 10
)

// CustomerService ingests customer CSV uploads and classifies them by
// purchase pattern. Excel uploads are not supported; CSV only.
type CustomerService struct {
	CustomerRepo repository.CustomerRepositoryInterface
}

// UploadResult summarises one CSV ingestion.
type UploadResult struct {
	TotalCustomers  int              `json:"total_customers"`
	Classifications map[string]int   `json:"classifications"`
	Customers       []model.Customer `json:"customers"`
}

// UploadCSV parses a CSV with at least "name" and "phone" columns, classifies
// every row and stores the resulting customers for the owner. Unknown columns
// are kept as free-form attributes available to template rendering.
func (s *CustomerService) UploadCSV(ctx context.Context, userID string, r io.Reader) (*UploadResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, appErrors.InvalidArgument("could not read CSV header: %v", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}
	if !containsAll(header, "name", "phone") {
		return nil, appErrors.InvalidArgument("file must contain columns: name, phone")
	}

	now := time.Now().UTC()
	customers := []model.Customer{}
	classifications := map[string]int{}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, appErrors.InvalidArgument("malformed CSV row: %v", err)
		}

		fields := map[string]string{}
		for i, col := range header {
			if i < len(row) {
				fields[col] = strings.TrimSpace(row[i])
			}
		}

		c := model.Customer{
			ID:              uuid.NewString(),
			UserID:          userID,
			Name:            fields["name"],
			Phone:           fields["phone"],
			Email:           fields["email"],
			TotalQuantity:   floatField(fields, "total_quantity", "quantity"),
			PurchaseCount:   intField(fields, "purchase_count", "orders"),
			OrderValue:      floatField(fields, "order_value", "amount"),
			ProductCategory: fields["product_category"],
			UploadedAt:      now,
		}
		c.Category = classify(c)

		for _, known := range []string{"name", "phone", "email", "total_quantity", "quantity", "purchase_count", "orders", "order_value", "amount", "product_category"} {
			delete(fields, known)
		}
		if len(fields) > 0 {
			c.Attributes = fields
		}

		classifications[string(c.Category)]++
		customers = append(customers, c)
	}

	if err := s.CustomerRepo.InsertMany(ctx, customers); err != nil {
		return nil, err
	}

	return &UploadResult{
		TotalCustomers:  len(customers),
		Classifications: classifications,
		Customers:       customers,
	}, nil
}

func (s *CustomerService) ListCustomers(ctx context.Context, userID string) ([]model.Customer, error) {
	return s.CustomerRepo.ListByUser(ctx, userID)
}

func (s *CustomerService) ClearCustomers(ctx context.Context, userID string) (int64, error) {
	return s.CustomerRepo.DeleteByUser(ctx, userID)
}

// classify buckets a customer by purchase pattern: bulk buyers move volume or
// value, frequent customers order often, "both" meets both bars.
func classify(c model.Customer) model.CustomerCategory {
	isBulk := c.TotalQuantity >= bulkQuantityThreshold || c.OrderValue >= bulkOrderValueThreshold
	isFrequent := c.PurchaseCount >= frequentCountThreshold

	switch {
	case isBulk && isFrequent:
		return model.CategoryBoth
	case isBulk:
		return model.CategoryBulkBuyer
	case isFrequent:
		return model.CategoryFrequentCustomer
	default:
		return model.CategoryRegular
	}
}

func containsAll(header []string, required ...string) bool {
	present := map[string]bool{}
	for _, h := range header {
		present[h] = true
	}
	for _, r := range required {
		if !present[r] {
			return false
		}
	}
	return true
}

func floatField(fields map[string]string, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := fields[k]; ok && v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func intField(fields map[string]string, keys ...string) int {
	for _, k := range keys {
		if v, ok := fields[k]; ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
	}
	return 0
}
