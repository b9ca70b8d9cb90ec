package service

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"jersey-storefront/internal/model"
)

const attributionTimeLayout = "2006-01-02 15:04:05"

// BuildAttributionPayload renders a paid order in the attribution service's
// order shape. Products and amounts come from the stored order, never from
// provider metadata.
func BuildAttributionPayload(order *model.Order, approvedAt time.Time) ([]byte, error) {
	approved := approvedAt.UTC().Format(attributionTimeLayout)

	name := strings.TrimSpace(order.CustomerName)
	if name == "" {
		name = "Customer"
	}
	firstName, lastName := splitName(name)

	customer := model.AttributionCustomer{
		Name:      name,
		Email:     order.CustomerEmail,
		Phone:     order.CustomerPhone,
		FirstName: firstName,
		LastName:  lastName,
	}
	if addr := order.ShippingAddress; !addr.IsZero() {
		customer.Address = &model.AttributionAddress{
			Street:       addr.Line1,
			Neighborhood: addr.Line2,
			City:         addr.City,
			State:        addr.State,
			Country:      addr.Country,
			ZipCode:      addr.PostalCode,
		}
	}

	products := make([]model.AttributionProduct, 0, len(order.Items))
	for _, item := range order.Items {
		if item.SKU == model.UnknownSKU {
			continue
		}
		p := model.AttributionProduct{
			ID:           item.SKU,
			Name:         item.ProductName,
			PlanID:       item.SKU,
			PlanName:     item.ProductName,
			Quantity:     item.Quantity,
			PriceInCents: toMinorUnits(item.Price),
		}
		if item.Size != nil {
			p.Size = *item.Size
		}
		products = append(products, p)
	}

	payload := model.AttributionPayload{
		OrderID:       strconv.FormatUint(uint64(order.ID), 10),
		Platform:      "Stripe",
		PaymentMethod: "credit_card",
		Status:        "paid",
		CreatedAt:     order.CreatedAt.UTC().Format(attributionTimeLayout),
		ApprovedDate:  &approved,
		Customer:      customer,
		Products:      products,
		TrackingParameters: model.TrackingParameters{
			Src:         nullable(order.Src),
			Sck:         nullable(order.Sck),
			UTMSource:   nullable(order.UTMSource),
			UTMMedium:   nullable(order.UTMMedium),
			UTMCampaign: nullable(order.UTMCampaign),
			UTMTerm:     nullable(order.UTMTerm),
			UTMContent:  nullable(order.UTMContent),
		},
		Commission: model.AttributionCommission{
			TotalPriceInCents: toMinorUnits(order.AmountTotal),
			Currency:          strings.ToUpper(order.Currency),
		},
	}

	return json.Marshal(payload)
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
