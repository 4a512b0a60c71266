package registry

import "time"

// Membership states.
const (
	StatusActive  = "active"
	StatusPending = "pending"
)

// Payment kinds accepted by ApplyPayment.
const (
	PaymentRegistration = "registration"
	PaymentDailyDues    = "daily_dues"
)

// Registrant is the persisted record of one registered member.
type Registrant struct {
	ID             int64
	RegistrationID string
	FirstName      string
	MiddleName     string
	LastName       string
	DateOfBirth    string
	Sex            string
	PhoneNumber    string
	NIN            string
	Address        string
	State          string
	LGA            string
	Zone           string
	Unit           string
	PhotoPath      string

	EmergencyContactName    string
	EmergencyContactAddress string
	EmergencyContactPhone   string

	Beneficiary1 Beneficiary
	Beneficiary2 Beneficiary

	RegistrationFeePaid   bool
	RegistrationFeeAmount float64
	DailyDuesBalance      float64
	MembershipStatus      string

	CreatedAt  time.Time
	IssueDate  time.Time
	ExpiryDate time.Time
}

// Beneficiary is a named dependant of a registrant.
type Beneficiary struct {
	Name         string
	Address      string
	Phone        string
	Relationship string
}

// FullName joins first and last name.
func (r Registrant) FullName() string {
	return r.FirstName + " " + r.LastName
}

// PaymentStatus reports "active" once the registration fee is paid.
func (r Registrant) PaymentStatus() string {
	if r.RegistrationFeePaid {
		return StatusActive
	}
	return StatusPending
}

// Payment is a journal entry recorded for every accepted payment.
type Payment struct {
	ID             int64
	RegistrationID string
	Kind           string
	Amount         float64
	RecordedAt     time.Time
}

// Defaults fills the lifecycle fields of a new registrant. Timestamps are
// truncated to microseconds so every backend round-trips them unchanged.
func (r *Registrant) Defaults(now time.Time, fee float64) {
	now = now.UTC().Truncate(time.Microsecond)
	r.RegistrationFeePaid = false
	r.RegistrationFeeAmount = fee
	r.DailyDuesBalance = 0
	r.MembershipStatus = StatusActive
	r.CreatedAt = now
	r.IssueDate = now
	r.ExpiryDate = now.AddDate(0, 0, 365)
}
