package model

// AttributionPayload is the normalized order sent to the attribution
// service (UTMify orders API shape).
type AttributionPayload struct {
	OrderID            string                `json:"orderId"`
	Platform           string                `json:"platform"`
	PaymentMethod      string                `json:"paymentMethod"`
	Status             string                `json:"status"`
	CreatedAt          string                `json:"createdAt"`
	ApprovedDate       *string               `json:"approvedDate"`
	RefundedAt         *string               `json:"refundedAt"`
	Customer           AttributionCustomer   `json:"customer"`
	Products           []AttributionProduct  `json:"products"`
	TrackingParameters TrackingParameters    `json:"trackingParameters"`
	Commission         AttributionCommission `json:"commission"`
	IsTest             bool                  `json:"isTest,omitempty"`
}

type AttributionCustomer struct {
	Name      string              `json:"name"`
	Email     string              `json:"email"`
	Phone     string              `json:"phone"`
	Document  *string             `json:"document"`
	FirstName string              `json:"firstName"`
	LastName  string              `json:"lastName"`
	Address   *AttributionAddress `json:"address,omitempty"`
}

type AttributionAddress struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
	ZipCode      string `json:"zipCode"`
}

type AttributionProduct struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PlanID       string `json:"planId"`
	PlanName     string `json:"planName"`
	Quantity     int    `json:"quantity"`
	PriceInCents int64  `json:"priceInCents"`
	Size         string `json:"size,omitempty"`
}

type TrackingParameters struct {
	Src         *string `json:"src"`
	Sck         *string `json:"sck"`
	UTMSource   *string `json:"utm_source"`
	UTMMedium   *string `json:"utm_medium"`
	UTMCampaign *string `json:"utm_campaign"`
	UTMTerm     *string `json:"utm_term"`
	UTMContent  *string `json:"utm_content"`
}

type AttributionCommission struct {
	TotalPriceInCents     int64  `json:"totalPriceInCents"`
	GatewayFeeInCents     int64  `json:"gatewayFeeInCents"`
	UserCommissionInCents int64  `json:"userCommissionInCents"`
	Currency              string `json:"currency"`
}
