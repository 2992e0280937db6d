// internal/model/customer.go
package model

import (
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// CustomerCategory is the purchase-pattern classification assigned at upload.
type CustomerCategory string

const (
	CategoryBulkBuyer        CustomerCategory = "bulk_buyer"
	CategoryFrequentCustomer CustomerCategory = "frequent_customer"
	CategoryBoth             CustomerCategory = "both"
	CategoryRegular          CustomerCategory = "regular"
)

// Customer is an uploaded contact. Columns beyond the known set survive the
// round trip in Attributes and are available to template rendering.
type Customer struct {
	// OID catches the store-generated _id on reads; without it the inline
	// attribute map would absorb the ObjectID and fail to decode.
	OID bson.ObjectID `bson:"_id,omitempty" json:"-"`

	ID              string           `bson:"id" json:"id"`
	UserID          string           `bson:"user_id" json:"user_id"`
	Name            string           `bson:"name" json:"name"`
	Phone           string           `bson:"phone" json:"phone"`
	Email           string           `bson:"email" json:"email"`
	Category        CustomerCategory `bson:"category" json:"category"`
	TotalQuantity   float64          `bson:"total_quantity" json:"total_quantity"`
	PurchaseCount   int              `bson:"purchase_count" json:"purchase_count"`
	OrderValue      float64          `bson:"order_value" json:"order_value"`
	ProductCategory string           `bson:"product_category" json:"product_category"`
	UploadedAt      time.Time        `bson:"uploaded_at" json:"uploaded_at"`

	Attributes map[string]string `bson:",inline" json:"attributes,omitempty"`
}

// Record flattens the customer into the key/value mapping consumed by
// template rendering.
func (c *Customer) Record() map[string]string {
	record := map[string]string{
		"id":               c.ID,
		"name":             c.Name,
		"phone":            c.Phone,
		"email":            c.Email,
		"category":         string(c.Category),
		"total_quantity":   strconv.FormatFloat(c.TotalQuantity, 'f', -1, 64),
		"purchase_count":   strconv.Itoa(c.PurchaseCount),
		"order_value":      strconv.FormatFloat(c.OrderValue, 'f', -1, 64),
		"product_category": c.ProductCategory,
	}
	for k, v := range c.Attributes {
		if _, known := record[k]; !known {
			record[k] = fmt.Sprint(v)
		}
	}
	return record
}
