package model

import "strings"

// DeliveryUnit is the unit of a carrier's advertised delivery time.
type DeliveryUnit string

const (
	DeliveryDays  DeliveryUnit = "dias"
	DeliveryHours DeliveryUnit = "horas"
)

// Valid reports whether u is one of the known delivery units.
func (u DeliveryUnit) Valid() bool {
	return u == DeliveryDays || u == DeliveryHours
}

// RegionCodes lists the Brazilian state codes a carrier may serve.
var RegionCodes = []string{
	"AC", "AL", "AP", "AM", "BA", "CE", "DF", "ES", "GO", "MA", "MT", "MS", "MG", "PA",
	"PB", "PR", "PE", "PI", "RJ", "RN", "RS", "RO", "RR", "SC", "SP", "SE", "TO",
}

// ValidRegion reports whether code is a known state code.
func ValidRegion(code string) bool {
	for _, r := range RegionCodes {
		if r == code {
			return true
		}
	}
	return false
}

// Branch is an origin office from which shipments depart.
type Branch struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Carrier holds the pricing attributes of a freight provider serving one branch.
type Carrier struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	LogoURL           string       `json:"logoUrl"`
	BranchID          string       `json:"branchId"`
	Regions           []string     `json:"regions"`
	CostPerKg         float64      `json:"costPerKg"`
	PercentageOfValue float64      `json:"percentageOfValue"`
	MinFreight        float64      `json:"minFreight"`
	DeliveryTimeValue int          `json:"deliveryTimeValue"`
	DeliveryTimeUnit  DeliveryUnit `json:"deliveryTimeUnit"`
	Combined          bool         `json:"isCombined"`
}

// SystemConfig is the branding shown by the back-office.
type SystemConfig struct {
	CompanyName string `json:"companyName"`
	LogoURL     string `json:"logoUrl"`
}

// DefaultCompanyName is used when no system config was saved.
const DefaultCompanyName = "LogiCalc"

// DefaultSystemConfig returns the branding used before any customization.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{CompanyName: DefaultCompanyName}
}

// User is a back-office account. Password hashes never leave the store.
type User struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// MatchesQuery reports whether the branch name or code contains q, ignoring case.
func (b Branch) MatchesQuery(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.Name), q) || strings.Contains(strings.ToLower(b.Code), q)
}

// MatchesQuery reports whether the carrier name contains q, ignoring case.
func (c Carrier) MatchesQuery(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), q)
}
