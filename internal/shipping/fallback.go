package shipping

import (
	"strconv"

	"github.com/transbarber/storefront/internal/models"
)

const fallbackServiceName = "Mercado Envios"

// FallbackQuote returns static regional shipping estimate keyed by the two
// leading digits of the postal code. Used whenever the live rate API is
// unavailable so the quote never blocks checkout.
func FallbackQuote(cep string) models.ShippingQuote {
	prefix := 0
	if len(cep) >= 2 {
		prefix, _ = strconv.Atoi(cep[:2])
	}

	cost, days := 35.0, 7

	switch {
	case prefix >= 1 && prefix <= 9:
		cost, days = 12.90, 2
	case prefix >= 10 && prefix <= 19:
		cost, days = 18.90, 3
	case prefix >= 20 && prefix <= 28:
		cost, days = 22.90, 4
	case prefix == 29:
		cost, days = 24.90, 4
	case prefix >= 30 && prefix <= 39:
		cost, days = 22.90, 4
	case prefix >= 40 && prefix <= 49:
		cost, days = 32.90, 6
	case prefix >= 50 && prefix <= 59:
		cost, days = 35.90, 7
	case prefix >= 60 && prefix <= 69:
		cost, days = 38.90, 8
	case prefix >= 70 && prefix <= 79:
		cost, days = 28.90, 5
	case prefix >= 80 && prefix <= 99:
		cost, days = 25.90, 5
	}

	return models.ShippingQuote{
		Cost:        cost,
		Days:        days,
		ServiceName: fallbackServiceName,
		Fallback:    true,
	}
}
