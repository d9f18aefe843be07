package domain

// Classifies why a freight calculation did not produce a price.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureNotFound
	FailureConfigMissing
	FailureResolution
	FailureOutOfArea
	FailureComputation
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureNotFound:
		return "not_found"
	case FailureConfigMissing:
		return "configuration_missing"
	case FailureResolution:
		return "resolution_failure"
	case FailureOutOfArea:
		return "out_of_area"
	case FailureComputation:
		return "computation_error"
	default:
		return "unknown"
	}
}

// Outcome of a single freight calculation.
//
// Exactly one of these holds:
//   - priced: Price and Band set, InArea true, Failure is FailureNone
//   - out of area: Price nil, InArea false, DistanceKm set, Failure is FailureOutOfArea
//   - failure: Price nil, InArea false, Reason set
//
// A nil Price is the universal failure signal.
type FreightResult struct {
	Price      *float64
	InArea     bool
	DistanceKm *float64
	Band       *DeliveryBand
	Reason     string
	Failure    FailureKind
}

func PricedFreight(distanceKm float64, band DeliveryBand) FreightResult {
	price := band.Price
	return FreightResult{
		Price:      &price,
		InArea:     true,
		DistanceKm: &distanceKm,
		Band:       &band,
	}
}

func OutOfArea(distanceKm float64, reason string) FreightResult {
	return FreightResult{
		DistanceKm: &distanceKm,
		Reason:     reason,
		Failure:    FailureOutOfArea,
	}
}

// FailedFreight builds a failure result. distanceKm may be nil when the
// failure happened before a distance was computed.
func FailedFreight(kind FailureKind, reason string, distanceKm *float64) FreightResult {
	return FreightResult{
		DistanceKm: distanceKm,
		Reason:     reason,
		Failure:    kind,
	}
}

func (r FreightResult) Priced() bool { return r.Price != nil }
