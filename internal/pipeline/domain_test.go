package pipeline

import (
	"testing"

	"taxdocpipeline/internal/models"
)

func TestResolveDomain_Totality(t *testing.T) {
	cases := []struct {
		code string
		want models.TaxDomain
	}{
		{"0001", models.DomainNationalTax},
		{"1001", models.DomainLocalTax},
		{"2001", models.DomainLocalTax},
		{"3001", models.DomainConsumptionTax},
		{"5001", models.DomainAccounting},
		{"6001", models.DomainAssets},
		{"7001", models.DomainSummary},
		{"9999", models.DomainUnknown},
		{"", models.DomainUnknown},
		{"abcd", models.DomainUnknown},
	}

	for _, c := range cases {
		if got := ResolveDomain(c.code); got != c.want {
			t.Errorf("ResolveDomain(%q) = %q, want %q", c.code, got, c.want)
		}
	}
}
