package models

// ShippingQuote is selected carrier option for postal code
type ShippingQuote struct {
	Cost        float64
	Days        int
	ServiceName string
	Fallback    bool
}
