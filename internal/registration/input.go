package registration

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/firstcare-health/member-registry/internal/registry"
)

// Input is the registration payload.
type Input struct {
	FirstName   string `json:"first_name" validate:"required,min=2"`
	MiddleName  string `json:"middle_name"`
	LastName    string `json:"last_name" validate:"required,min=2"`
	DateOfBirth string `json:"date_of_birth" validate:"required"`
	Sex         string `json:"sex" validate:"required,oneof=M F"`
	PhoneNumber string `json:"phone_number" validate:"required,numeric,min=10,max=11"`
	NIN         string `json:"nin" validate:"required,numeric,len=11"`
	Address     string `json:"address" validate:"required"`
	State       string `json:"state" validate:"required"`
	LGA         string `json:"lga" validate:"required"`
	Zone        string `json:"zone" validate:"required"`
	Unit        string `json:"unit" validate:"required"`

	EmergencyContactName    string `json:"emergency_contact_name" validate:"required,min=2"`
	EmergencyContactAddress string `json:"emergency_contact_address" validate:"required"`
	EmergencyContactPhone   string `json:"emergency_contact_phone" validate:"required,numeric,min=10,max=11"`

	Beneficiary1Name         string `json:"beneficiary1_name" validate:"required,min=2"`
	Beneficiary1Address      string `json:"beneficiary1_address" validate:"required"`
	Beneficiary1Phone        string `json:"beneficiary1_phone" validate:"required,numeric,min=10,max=11"`
	Beneficiary1Relationship string `json:"beneficiary1_relationship" validate:"required"`

	Beneficiary2Name         string `json:"beneficiary2_name"`
	Beneficiary2Address      string `json:"beneficiary2_address"`
	Beneficiary2Phone        string `json:"beneficiary2_phone" validate:"omitempty,numeric,min=10,max=11"`
	Beneficiary2Relationship string `json:"beneficiary2_relationship"`
}

// PaymentInput records an amount against a registrant.
type PaymentInput struct {
	RegistrationID string  `json:"registration_id" validate:"required"`
	Amount         float64 `json:"amount" validate:"gte=0"`
	PaymentType    string  `json:"payment_type" validate:"required,oneof=registration daily_dues"`
}

func (in *Input) normalize() {
	for _, f := range []*string{
		&in.FirstName, &in.MiddleName, &in.LastName, &in.DateOfBirth, &in.PhoneNumber, &in.NIN,
		&in.Address, &in.State, &in.LGA, &in.Zone, &in.Unit,
		&in.EmergencyContactName, &in.EmergencyContactAddress, &in.EmergencyContactPhone,
		&in.Beneficiary1Name, &in.Beneficiary1Address, &in.Beneficiary1Phone, &in.Beneficiary1Relationship,
		&in.Beneficiary2Name, &in.Beneficiary2Address, &in.Beneficiary2Phone, &in.Beneficiary2Relationship,
	} {
		*f = strings.TrimSpace(*f)
	}
	in.Sex = strings.ToUpper(strings.TrimSpace(in.Sex))
}

func (in Input) registrant(registrationID string) registry.Registrant {
	return registry.Registrant{
		RegistrationID:          registrationID,
		FirstName:               in.FirstName,
		MiddleName:              in.MiddleName,
		LastName:                in.LastName,
		DateOfBirth:             in.DateOfBirth,
		Sex:                     in.Sex,
		PhoneNumber:             in.PhoneNumber,
		NIN:                     in.NIN,
		Address:                 in.Address,
		State:                   in.State,
		LGA:                     in.LGA,
		Zone:                    in.Zone,
		Unit:                    in.Unit,
		EmergencyContactName:    in.EmergencyContactName,
		EmergencyContactAddress: in.EmergencyContactAddress,
		EmergencyContactPhone:   in.EmergencyContactPhone,
		Beneficiary1: registry.Beneficiary{
			Name:         in.Beneficiary1Name,
			Address:      in.Beneficiary1Address,
			Phone:        in.Beneficiary1Phone,
			Relationship: in.Beneficiary1Relationship,
		},
		Beneficiary2: registry.Beneficiary{
			Name:         in.Beneficiary2Name,
			Address:      in.Beneficiary2Address,
			Phone:        in.Beneficiary2Phone,
			Relationship: in.Beneficiary2Relationship,
		},
	}
}

// validationError flattens validator output into one ErrValidation message.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(parts, "; "))
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
