// Package qrpayload builds the compact lookup payload encoded into member
// cards and served by the QR data endpoint.
package qrpayload

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/firstcare-health/member-registry/internal/registry"
)

// DefaultSize is the edge length in pixels of encoded QR images.
const DefaultSize = 256

// Payload is the subset of a registrant encoded into the card's QR code.
// Field order is fixed so Marshal is byte-stable.
type Payload struct {
	RegistrationID string `json:"registration_id"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Status         string `json:"status"`
	IssueDate      string `json:"issue_date"`
}

// PaymentStatus is the payment sub-state exposed by Lookup.
type PaymentStatus struct {
	RegistrationFeePaid bool    `json:"registration_fee_paid"`
	DailyDuesBalance    float64 `json:"daily_dues_balance"`
}

// LookupPayload is the payload plus payment state and location fields.
type LookupPayload struct {
	RegistrationID string        `json:"registration_id"`
	Name           string        `json:"name"`
	Phone          string        `json:"phone"`
	Status         string        `json:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	IssueDate      string        `json:"issue_date"`
	Zone           string        `json:"zone"`
	Unit           string        `json:"unit"`
}

// Build derives the canonical payload for r.
func Build(r registry.Registrant) Payload {
	return Payload{
		RegistrationID: r.RegistrationID,
		Name:           r.FullName(),
		Phone:          r.PhoneNumber,
		Status:         r.PaymentStatus(),
		IssueDate:      r.IssueDate.UTC().Format(time.RFC3339),
	}
}

// Lookup extends Build with payment state, zone and unit.
func Lookup(r registry.Registrant) LookupPayload {
	p := Build(r)
	return LookupPayload{
		RegistrationID: p.RegistrationID,
		Name:           p.Name,
		Phone:          p.Phone,
		Status:         p.Status,
		PaymentStatus: PaymentStatus{
			RegistrationFeePaid: r.RegistrationFeePaid,
			DailyDuesBalance:    r.DailyDuesBalance,
		},
		IssueDate: p.IssueDate,
		Zone:      r.Zone,
		Unit:      r.Unit,
	}
}

// Marshal serializes the payload as compact JSON.
func (p Payload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// Encode renders p as a PNG QR code at high error correction, so a scan
// with up to ~30% of the symbol damaged still decodes.
func Encode(p Payload, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	data, err := p.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal qr payload: %w", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.High, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
