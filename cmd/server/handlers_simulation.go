package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Simplici0/logicalc/internal/apperr"
	"github.com/Simplici0/logicalc/internal/format"
	"github.com/Simplici0/logicalc/internal/history"
	"github.com/Simplici0/logicalc/internal/pricing"
	"github.com/Simplici0/logicalc/internal/report"
)

const noCarriersMessage = "Nenhuma transportadora atende a filial selecionada."

type resultResponse struct {
	CarrierID             string  `json:"carrierId"`
	CarrierName           string  `json:"carrierName"`
	LogoURL               string  `json:"logoUrl"`
	DeliveryTime          string  `json:"deliveryTime"`
	Combined              bool    `json:"isCombined"`
	WeightFreight         float64 `json:"weightFreight"`
	PercentageFreight     float64 `json:"percentageFreight"`
	MinFreight            float64 `json:"minFreight"`
	ChargedFreight        float64 `json:"chargedFreight"`
	FreightToInvoiceRatio float64 `json:"freightToInvoiceRatio"`
	ChargedFreightDisplay string  `json:"chargedFreightDisplay"`
	RatioDisplay          string  `json:"ratioDisplay"`
	HighRatio             bool    `json:"highRatio"`
}

func newResultResponse(r pricing.Result) resultResponse {
	return resultResponse{
		CarrierID:             r.Carrier.ID,
		CarrierName:           r.Carrier.Name,
		LogoURL:               r.Carrier.LogoURL,
		DeliveryTime:          fmt.Sprintf("%d %s", r.Carrier.DeliveryTimeValue, r.Carrier.DeliveryTimeUnit),
		Combined:              r.Carrier.Combined,
		WeightFreight:         r.WeightFreight,
		PercentageFreight:     r.PercentageFreight,
		MinFreight:            r.MinFreight,
		ChargedFreight:        r.ChargedFreight,
		FreightToInvoiceRatio: r.FreightToInvoiceRatio,
		ChargedFreightDisplay: format.Currency(r.ChargedFreight),
		RatioDisplay:          format.Percent(r.FreightToInvoiceRatio),
		HighRatio:             r.HighRatio(),
	}
}

type entryResponse struct {
	history.Entry
	FreightRatio   float64 `json:"freightRatio"`
	InvoiceDisplay string  `json:"invoiceDisplay"`
	FreightDisplay string  `json:"freightDisplay"`
	RatioDisplay   string  `json:"ratioDisplay"`
	HighRatio      bool    `json:"highRatio"`
}

func newEntryResponse(e history.Entry) entryResponse {
	ratio := 0.0
	if e.InvoiceValue > 0 {
		ratio = e.BestFreightValue / e.InvoiceValue * 100
	}
	return entryResponse{
		Entry:          e,
		FreightRatio:   ratio,
		InvoiceDisplay: format.Currency(e.InvoiceValue),
		FreightDisplay: format.Currency(e.BestFreightValue),
		RatioDisplay:   format.Percent(ratio),
		HighRatio:      ratio > pricing.HighRatioThreshold,
	}
}

func newEntryResponses(entries []history.Entry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, newEntryResponse(e))
	}
	return out
}

type simulationResponse struct {
	Results []resultResponse `json:"results"`
	Best    *resultResponse  `json:"best"`
	Entry   *entryResponse   `json:"entry"`
	Message string           `json:"message,omitempty"`
}

func readShipment(r *http.Request) (pricing.Shipment, error) {
	if !isFormRequest(r) {
		var s pricing.Shipment
		err := decodeJSON(r, &s)
		return s, err
	}

	if err := r.ParseForm(); err != nil {
		return pricing.Shipment{}, apperr.NewInvalidRequestError("invalid form")
	}
	invoice, err := parsePositiveFloat(r.FormValue("invoiceValue"), "invoiceValue")
	if err != nil {
		return pricing.Shipment{}, apperr.NewInvalidShipmentInputError(err.Error())
	}
	weight, err := parsePositiveFloat(r.FormValue("totalWeight"), "totalWeight")
	if err != nil {
		return pricing.Shipment{}, apperr.NewInvalidShipmentInputError(err.Error())
	}
	return pricing.Shipment{
		InvoiceValue: invoice,
		TotalWeight:  weight,
		BranchID:     strings.TrimSpace(r.FormValue("branchId")),
	}, nil
}

func (s *server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	shipment, err := readShipment(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := s.sim.Simulate(r.Context(), shipment)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := simulationResponse{Results: make([]resultResponse, 0, len(out.Results))}
	for _, res := range out.Results {
		resp.Results = append(resp.Results, newResultResponse(res))
	}
	if out.Best == nil {
		resp.Message = noCarriersMessage
		writeJSON(w, http.StatusOK, resp)
		return
	}
	best := newResultResponse(*out.Best)
	entry := newEntryResponse(*out.Entry)
	resp.Best = &best
	resp.Entry = &entry
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	log, err := s.sim.History(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": newEntryResponses(log)})
}

type summaryResponse struct {
	report.Summary
	TotalInvoiceDisplay string `json:"totalInvoiceDisplay"`
	TotalFreightDisplay string `json:"totalFreightDisplay"`
	AverageRatioDisplay string `json:"averageRatioDisplay"`
}

type dashboardResponse struct {
	CompanyName  string          `json:"companyName"`
	Period       string          `json:"period"`
	BranchCount  int             `json:"branchCount"`
	CarrierCount int             `json:"carrierCount"`
	Summary      summaryResponse `json:"summary"`
	Periods      []string        `json:"periods"`
	Recent       []entryResponse `json:"recent"`
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.sim.Dashboard(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cfg, err := s.repo.GetConfig(r.Context())
	if err != nil {
		s.writeError(w, r, apperr.NewPersistenceError("get config", err))
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		CompanyName:  cfg.CompanyName,
		Period:       d.Period,
		BranchCount:  d.BranchCount,
		CarrierCount: d.CarrierCount,
		Summary: summaryResponse{
			Summary:             d.Summary,
			TotalInvoiceDisplay: format.Currency(d.Summary.TotalInvoiceValue),
			TotalFreightDisplay: format.Currency(d.Summary.TotalFreightValue),
			AverageRatioDisplay: format.Percent(d.Summary.AverageFreightRatio),
		},
		Periods: d.Periods,
		Recent:  newEntryResponses(d.Recent),
	})
}
