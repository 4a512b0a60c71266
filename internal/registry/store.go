package registry

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when no registrant matches the registration id.
	ErrNotFound = errors.New("registrant not found")

	// ErrDuplicateNationalID is derived from the store's unique constraint on
	// the national id column.
	ErrDuplicateNationalID = errors.New("national id already registered")

	// ErrUnknownPaymentKind rejects payment kinds the store cannot apply.
	ErrUnknownPaymentKind = errors.New("unknown payment kind")
)

// Store is an explicitly constructed handle to the registrant table. Callers
// check out one Session per request and must Release it on every exit path.
type Store interface {
	Acquire(ctx context.Context) (Session, error)
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Session is a scoped connection to the store.
type Session interface {
	Insert(ctx context.Context, r Registrant) (Registrant, error)
	FindByRegistrationID(ctx context.Context, registrationID string) (Registrant, error)
	SetPhotoPath(ctx context.Context, registrationID, path string) error
	// ApplyPayment mutates payment state and appends a journal entry in one
	// transaction, returning the updated registrant.
	ApplyPayment(ctx context.Context, registrationID, kind string, amount float64) (Registrant, error)
	Payments(ctx context.Context, registrationID string) ([]Payment, error)
	List(ctx context.Context) ([]Registrant, error)
	Count(ctx context.Context) (int, error)
	Release()
}

const registrantColumns = `id, registration_id, first_name, middle_name, last_name, date_of_birth, sex,
    phone_number, nin, address, state, lga, zone, unit, photo_path,
    emergency_contact_name, emergency_contact_address, emergency_contact_phone,
    beneficiary1_name, beneficiary1_address, beneficiary1_phone, beneficiary1_relationship,
    beneficiary2_name, beneficiary2_address, beneficiary2_phone, beneficiary2_relationship,
    registration_fee_paid, registration_fee_amount, daily_dues_balance, membership_status,
    created_at, issue_date, expiry_date`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistrant(row rowScanner) (Registrant, error) {
	var r Registrant
	err := row.Scan(
		&r.ID, &r.RegistrationID, &r.FirstName, &r.MiddleName, &r.LastName, &r.DateOfBirth, &r.Sex,
		&r.PhoneNumber, &r.NIN, &r.Address, &r.State, &r.LGA, &r.Zone, &r.Unit, &r.PhotoPath,
		&r.EmergencyContactName, &r.EmergencyContactAddress, &r.EmergencyContactPhone,
		&r.Beneficiary1.Name, &r.Beneficiary1.Address, &r.Beneficiary1.Phone, &r.Beneficiary1.Relationship,
		&r.Beneficiary2.Name, &r.Beneficiary2.Address, &r.Beneficiary2.Phone, &r.Beneficiary2.Relationship,
		&r.RegistrationFeePaid, &r.RegistrationFeeAmount, &r.DailyDuesBalance, &r.MembershipStatus,
		&r.CreatedAt, &r.IssueDate, &r.ExpiryDate,
	)
	if err != nil {
		return Registrant{}, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	r.IssueDate = r.IssueDate.UTC()
	r.ExpiryDate = r.ExpiryDate.UTC()
	return r, nil
}

func insertArgs(r Registrant) []any {
	return []any{
		r.RegistrationID, r.FirstName, r.MiddleName, r.LastName, r.DateOfBirth, r.Sex,
		r.PhoneNumber, r.NIN, r.Address, r.State, r.LGA, r.Zone, r.Unit, r.PhotoPath,
		r.EmergencyContactName, r.EmergencyContactAddress, r.EmergencyContactPhone,
		r.Beneficiary1.Name, r.Beneficiary1.Address, r.Beneficiary1.Phone, r.Beneficiary1.Relationship,
		r.Beneficiary2.Name, r.Beneficiary2.Address, r.Beneficiary2.Phone, r.Beneficiary2.Relationship,
		r.RegistrationFeePaid, r.RegistrationFeeAmount, r.DailyDuesBalance, r.MembershipStatus,
		r.CreatedAt, r.IssueDate, r.ExpiryDate,
	}
}

func validKind(kind string) error {
	switch kind {
	case PaymentRegistration, PaymentDailyDues:
		return nil
	default:
		return ErrUnknownPaymentKind
	}
}

func statements(schema string) []string {
	var out []string
	for _, stmt := range strings.Split(schema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
