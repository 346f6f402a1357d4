package shipping

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/transbarber/storefront/internal/models"
)

func TestFallbackQuote(t *testing.T) {
	tests := []struct {
		name string
		cep  string
		want models.ShippingQuote
	}{
		{
			name: "sao_paulo_capital",
			cep:  "01310100",
			want: models.ShippingQuote{Cost: 12.90, Days: 2, ServiceName: "Mercado Envios", Fallback: true},
		},
		{
			name: "sao_paulo_metro",
			cep:  "05424000",
			want: models.ShippingQuote{Cost: 12.90, Days: 2, ServiceName: "Mercado Envios", Fallback: true},
		},
		{
			name: "sao_paulo_interior",
			cep:  "13015000",
			want: models.ShippingQuote{Cost: 18.90, Days: 3, ServiceName: "Mercado Envios", Fallback: true},
		},
		{
			name: "rio_de_janeiro",
			cep:  "20040002",
			want: models.ShippingQuote{Cost: 22.90, Days: 4, ServiceName: "Mercado Envios", Fallback: true},
		},
		{
			name: "espirito_santo",
			cep:  "29010000",
			want: models.ShippingQuote{Cost: 24.90, Days: 4, ServiceName: "Mercado Envios", Fallback: true},
		},
		{
			name: "minas_gerais",
			cep:  "35010000",
			want: models.ShippingQuote{Cost: 22.90, Days: 4, ServiceName: "Mercado Envios", Fallback: true},
		},
		{
			name: "bahia",
			cep:  "40020000",
			want: models.ShippingQuote{Cost: 32.90, Days: 6, ServiceName: "Mercado Envios", Fallback: true},
		},
		{
			name: "pernambuco",
			cep:  "50030000",
			want: models.ShippingQuote{Cost: 35.90, Days: 7, ServiceName: "Mercado Envios", Fallback: true},
		},
		{
			name: "ceara",
			cep:  "60060000",
			want: models.ShippingQuote{Cost: 38.90, Days: 8, ServiceName: "Mercado Envios", Fallback: true},
		},
		{
			name: "distrito_federal",
			cep:  "70040010",
			want: models.ShippingQuote{Cost: 28.90, Days: 5, ServiceName: "Mercado Envios", Fallback: true},
		},
		{
			name: "parana",
			cep:  "80010000",
			want: models.ShippingQuote{Cost: 25.90, Days: 5, ServiceName: "Mercado Envios", Fallback: true},
		},
		{
			name: "rio_grande_do_sul",
			cep:  "99999999",
			want: models.ShippingQuote{Cost: 25.90, Days: 5, ServiceName: "Mercado Envios", Fallback: true},
		},
		{
			name: "unmapped_prefix",
			cep:  "00123456",
			want: models.ShippingQuote{Cost: 35.00, Days: 7, ServiceName: "Mercado Envios", Fallback: true},
		},
		{
			name: "short_input",
			cep:  "1",
			want: models.ShippingQuote{Cost: 35.00, Days: 7, ServiceName: "Mercado Envios", Fallback: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FallbackQuote(tt.cep)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FallbackQuote(%q) mismatch (-want +got):\n%s", tt.cep, diff)
			}
		})
	}
}
