// Package pipeline implements the classification-and-naming pipeline:
// domain resolution, snapshotting, bundle splitting, classification,
// jurisdiction overlay, sequence allocation, period resolution, naming,
// job context and the orchestrator wiring them together.
package pipeline

import "taxdocpipeline/internal/models"

// ResolveDomain maps a classification code's leading digit to a coarse
// tax domain. It is pure and total: every code, including malformed or
// empty ones, resolves to a domain rather than erroring.
func ResolveDomain(code string) models.TaxDomain {
	if code == "" {
		return models.DomainUnknown
	}
	switch code[0] {
	case '0':
		return models.DomainNationalTax
	case '1', '2':
		return models.DomainLocalTax
	case '3':
		return models.DomainConsumptionTax
	case '5':
		return models.DomainAccounting
	case '6':
		return models.DomainAssets
	case '7':
		return models.DomainSummary
	default:
		return models.DomainUnknown
	}
}
