// Package history records the winning quote of each simulation.
package history

import (
	"context"
	"time"

	"github.com/Simplici0/logicalc/internal/pricing"
)

// MaxEntries caps the history log. Older entries are evicted on append.
const MaxEntries = 50

// NoBranchName is recorded when the shipment's branch cannot be resolved.
const NoBranchName = "N/A"

// Entry is the immutable audit record of one simulation.
type Entry struct {
	ID               string    `json:"id"`
	Date             time.Time `json:"date"`
	InvoiceValue     float64   `json:"invoiceValue"`
	TotalWeight      float64   `json:"totalWeight"`
	BestCarrierName  string    `json:"bestCarrierName"`
	BestFreightValue float64   `json:"bestFreightValue"`
	BranchName       string    `json:"branchName"`
}

// Store persists the history log, newest entry first.
type Store interface {
	// Load returns the full log, newest first.
	Load(ctx context.Context) ([]Entry, error)
	// Append prepends e, evicts entries beyond MaxEntries and returns the new log.
	Append(ctx context.Context, e Entry) ([]Entry, error)
}

// NewEntry builds the record for winner.
func NewEntry(id string, at time.Time, winner pricing.Result, branchName string, s pricing.Shipment) Entry {
	if branchName == "" {
		branchName = NoBranchName
	}
	return Entry{
		ID:               id,
		Date:             at.UTC(),
		InvoiceValue:     s.InvoiceValue,
		TotalWeight:      s.TotalWeight,
		BestCarrierName:  winner.Carrier.Name,
		BestFreightValue: winner.ChargedFreight,
		BranchName:       branchName,
	}
}

// Prepend returns a new log with e first, truncated to MaxEntries.
// The input slice is not modified.
func Prepend(log []Entry, e Entry) []Entry {
	n := len(log) + 1
	if n > MaxEntries {
		n = MaxEntries
	}
	out := make([]Entry, 0, n)
	out = append(out, e)
	out = append(out, log[:n-1]...)
	return out
}
