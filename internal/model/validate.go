package model

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ReservedUsername cannot be registered through the sign-up flow.
const ReservedUsername = "admin"

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 4

var regionRule = validation.By(func(value interface{}) error {
	regions, _ := value.([]string)
	for _, r := range regions {
		if !ValidRegion(r) {
			return errors.New("unknown region " + r)
		}
	}
	return nil
})

var deliveryUnitRule = validation.By(func(value interface{}) error {
	u, _ := value.(DeliveryUnit)
	if !u.Valid() {
		return errors.New("must be dias or horas")
	}
	return nil
})

func (b Branch) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Code, validation.Required, validation.Length(1, 20)),
		validation.Field(&b.Name, validation.Required, validation.Length(1, 120)),
	)
}

func (c Carrier) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&c.BranchID, validation.Required),
		validation.Field(&c.Regions, regionRule),
		validation.Field(&c.CostPerKg, validation.Min(0.0)),
		validation.Field(&c.PercentageOfValue, validation.Min(0.0)),
		validation.Field(&c.MinFreight, validation.Min(0.0)),
		validation.Field(&c.DeliveryTimeValue, validation.Required, validation.Min(1)),
		validation.Field(&c.DeliveryTimeUnit, deliveryUnitRule),
	)
}

func (c SystemConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.CompanyName, validation.Required, validation.Length(1, 120)),
	)
}

// Registration is a sign-up request.
type Registration struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

func (r Registration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.By(func(interface{}) error {
			if strings.EqualFold(strings.TrimSpace(r.Username), ReservedUsername) {
				return errors.New("is reserved")
			}
			return nil
		})),
		validation.Field(&r.FullName, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, 0)),
	)
}
