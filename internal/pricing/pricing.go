package pricing

import (
	"fmt"
	"math"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Simplici0/logicalc/internal/apperr"
	"github.com/Simplici0/logicalc/internal/model"
)

// HighRatioThreshold is the freight-to-invoice percentage above which a quote is flagged.
const HighRatioThreshold = 5.0

// Shipment represents the cargo being quoted.
type Shipment struct {
	InvoiceValue float64 `json:"invoiceValue"`
	TotalWeight  float64 `json:"totalWeight"`
	BranchID     string  `json:"branchId"`
}

// Validate checks that invoice and weight are positive and a branch is set.
func (s Shipment) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.InvoiceValue, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&s.TotalWeight, validation.Required, validation.Min(0.0).Exclusive()),
		validation.Field(&s.BranchID, validation.Required),
	)
	if err != nil {
		return apperr.NewInvalidShipmentInputError(err.Error())
	}
	// NaN is not empty and +Inf is above any minimum, so both get past the rules above.
	if !positiveFinite(s.InvoiceValue) || !positiveFinite(s.TotalWeight) {
		return apperr.NewInvalidShipmentInputError("invoiceValue and totalWeight must be positive finite numbers")
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Result contains the itemized freight computed for one carrier.
type Result struct {
	Carrier               model.Carrier
	WeightFreight         float64
	PercentageFreight     float64
	MinFreight            float64
	ChargedFreight        float64
	FreightToInvoiceRatio float64
}

// HighRatio reports whether freight exceeds HighRatioThreshold percent of the invoice.
func (r Result) HighRatio() bool {
	return r.FreightToInvoiceRatio > HighRatioThreshold
}

// Evaluate computes the charged freight of carrier c for shipment s.
//
// Combined carriers charge the weight and percentage components summed, floored
// at the minimum. Other carriers charge the largest of the three components.
func Evaluate(c model.Carrier, s Shipment) (Result, error) {
	if !(s.InvoiceValue > 0) {
		return Result{}, apperr.NewInvalidShipmentInputError("invoiceValue must be greater than 0")
	}

	weightFreight := c.CostPerKg * s.TotalWeight
	percentageFreight := (c.PercentageOfValue / 100.0) * s.InvoiceValue
	minFreight := c.MinFreight

	var charged float64
	if c.Combined {
		charged = math.Max(weightFreight+percentageFreight, minFreight)
	} else {
		charged = math.Max(math.Max(weightFreight, percentageFreight), minFreight)
	}

	ratio := charged / s.InvoiceValue * 100.0
	if !finite(charged) || !finite(ratio) {
		return Result{}, apperr.NewInvalidShipmentInputError(
			fmt.Sprintf("freight for carrier %s overflows for this shipment", c.Name))
	}

	return Result{
		Carrier:               c,
		WeightFreight:         weightFreight,
		PercentageFreight:     percentageFreight,
		MinFreight:            minFreight,
		ChargedFreight:        charged,
		FreightToInvoiceRatio: ratio,
	}, nil
}

// Eligible returns the carriers serving branchID, in input order.
func Eligible(carriers []model.Carrier, branchID string) []model.Carrier {
	out := make([]model.Carrier, 0, len(carriers))
	for _, c := range carriers {
		if c.BranchID == branchID {
			out = append(out, c)
		}
	}
	return out
}

// Rank returns a copy of results ordered by ascending charged freight.
// Ties keep their input order.
func Rank(results []Result) []Result {
	ranked := make([]Result, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ChargedFreight < ranked[j].ChargedFreight
	})
	return ranked
}

// Best returns the first ranked result. ok is false when there are none.
func Best(ranked []Result) (best Result, ok bool) {
	if len(ranked) == 0 {
		return Result{}, false
	}
	return ranked[0], true
}

// Compare validates s, evaluates every carrier and returns the ranked results.
func Compare(carriers []model.Carrier, s Shipment) ([]Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(carriers))
	for _, c := range carriers {
		r, err := Evaluate(c, s)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return Rank(results), nil
}
