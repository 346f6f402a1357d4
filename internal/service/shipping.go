package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/transbarber/storefront/internal/logger"
	"github.com/transbarber/storefront/internal/models"
	"github.com/transbarber/storefront/internal/shipping"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// RateClient is interface for carrier rate API
type RateClient interface {
	// Quote asks the carrier for rate options and returns the cheapest one
	Quote(ctx context.Context, cep string, declaredValue float64) (*models.ShippingQuote, error)
}

// ShippingService quotes shipping cost, degrading to the static regional
// table when the carrier API fails
type ShippingService struct {
	client RateClient
	group  singleflight.Group
}

// NewShippingService creates new ShippingService instance
func NewShippingService(client RateClient) *ShippingService {
	return &ShippingService{client: client}
}

// NormalizeCEP strips formatting and validates postal code length
func NormalizeCEP(cep string) (string, error) {
	var b strings.Builder
	for _, r := range cep {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	normalized := b.String()
	if len(normalized) != 8 {
		return "", models.ErrInvalidPostalCode
	}

	return normalized, nil
}

// Quote returns shipping cost for postal code and declared cart value.
// Carrier failures never surface to the caller, the fallback estimate is
// returned instead. Identical concurrent quotes are collapsed.
func (ss *ShippingService) Quote(ctx context.Context, cep string, declaredValue float64) (*models.ShippingQuote, error) {
	normalized, err := NormalizeCEP(cep)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s:%.2f", normalized, declaredValue)

	v, err, _ := ss.group.Do(key, func() (interface{}, error) {
		return ss.client.Quote(ctx, normalized, declaredValue)
	})
	if err != nil {
		logger.Log.Warn("carrier quote failed, using fallback estimate",
			zap.String("cep", normalized), zap.Error(err))
		fallback := shipping.FallbackQuote(normalized)
		return &fallback, nil
	}

	return v.(*models.ShippingQuote), nil
}
