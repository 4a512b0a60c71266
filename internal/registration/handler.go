package registration

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/firstcare-health/member-registry/internal/registry"
)

// Handler exposes registration endpoints over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a registration HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registrantResponse struct {
	ID                  int64     `json:"id"`
	RegistrationID      string    `json:"registration_id"`
	FirstName           string    `json:"first_name"`
	MiddleName          string    `json:"middle_name"`
	LastName            string    `json:"last_name"`
	DateOfBirth         string    `json:"date_of_birth"`
	Sex                 string    `json:"sex"`
	PhoneNumber         string    `json:"phone_number"`
	NIN                 string    `json:"nin"`
	MembershipStatus    string    `json:"membership_status"`
	RegistrationFeePaid bool      `json:"registration_fee_paid"`
	CreatedAt           time.Time `json:"created_at"`
}

func toResponse(r registry.Registrant) registrantResponse {
	return registrantResponse{
		ID:                  r.ID,
		RegistrationID:      r.RegistrationID,
		FirstName:           r.FirstName,
		MiddleName:          r.MiddleName,
		LastName:            r.LastName,
		DateOfBirth:         r.DateOfBirth,
		Sex:                 r.Sex,
		PhoneNumber:         r.PhoneNumber,
		NIN:                 r.NIN,
		MembershipStatus:    r.MembershipStatus,
		RegistrationFeePaid: r.RegistrationFeePaid,
		CreatedAt:           r.CreatedAt,
	}
}

type recordResponse struct {
	registrantResponse
	Address                  string    `json:"address"`
	State                    string    `json:"state"`
	LGA                      string    `json:"lga"`
	Zone                     string    `json:"zone"`
	Unit                     string    `json:"unit"`
	PhotoPath                string    `json:"photo_path"`
	EmergencyContactName     string    `json:"emergency_contact_name"`
	EmergencyContactAddress  string    `json:"emergency_contact_address"`
	EmergencyContactPhone    string    `json:"emergency_contact_phone"`
	Beneficiary1Name         string    `json:"beneficiary1_name"`
	Beneficiary1Address      string    `json:"beneficiary1_address"`
	Beneficiary1Phone        string    `json:"beneficiary1_phone"`
	Beneficiary1Relationship string    `json:"beneficiary1_relationship"`
	Beneficiary2Name         string    `json:"beneficiary2_name"`
	Beneficiary2Address      string    `json:"beneficiary2_address"`
	Beneficiary2Phone        string    `json:"beneficiary2_phone"`
	Beneficiary2Relationship string    `json:"beneficiary2_relationship"`
	RegistrationFeeAmount    float64   `json:"registration_fee_amount"`
	DailyDuesBalance         float64   `json:"daily_dues_balance"`
	IssueDate                time.Time `json:"issue_date"`
	ExpiryDate               time.Time `json:"expiry_date"`
}

func toRecord(r registry.Registrant) recordResponse {
	return recordResponse{
		registrantResponse:       toResponse(r),
		Address:                  r.Address,
		State:                    r.State,
		LGA:                      r.LGA,
		Zone:                     r.Zone,
		Unit:                     r.Unit,
		PhotoPath:                r.PhotoPath,
		EmergencyContactName:     r.EmergencyContactName,
		EmergencyContactAddress:  r.EmergencyContactAddress,
		EmergencyContactPhone:    r.EmergencyContactPhone,
		Beneficiary1Name:         r.Beneficiary1.Name,
		Beneficiary1Address:      r.Beneficiary1.Address,
		Beneficiary1Phone:        r.Beneficiary1.Phone,
		Beneficiary1Relationship: r.Beneficiary1.Relationship,
		Beneficiary2Name:         r.Beneficiary2.Name,
		Beneficiary2Address:      r.Beneficiary2.Address,
		Beneficiary2Phone:        r.Beneficiary2.Phone,
		Beneficiary2Relationship: r.Beneficiary2.Relationship,
		RegistrationFeeAmount:    r.RegistrationFeeAmount,
		DailyDuesBalance:         r.DailyDuesBalance,
		IssueDate:                r.IssueDate,
		ExpiryDate:               r.ExpiryDate,
	}
}

type paymentResponse struct {
	ID         int64     `json:"id"`
	Kind       string    `json:"payment_type"`
	Amount     float64   `json:"amount"`
	RecordedAt time.Time `json:"recorded_at"`
}

// httpError maps service errors to fiber errors.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, ErrNotFound.Error())
	case errors.Is(err, ErrDuplicateIdentity):
		return fiber.NewError(http.StatusBadRequest, ErrDuplicateIdentity.Error())
	case errors.Is(err, ErrValidation):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	default:
		return err
	}
}

// Register handles POST /api/register.
func (h *Handler) Register(c *fiber.Ctx) error {
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	}
	r, err := h.service.Register(c.UserContext(), in)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(r))
}

// UploadPhoto handles POST /api/upload-photo/:registration_id.
func (h *Handler) UploadPhoto(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	path, err := h.service.AttachPhoto(c.UserContext(), c.Params("registration_id"), data, filepath.Ext(fh.Filename))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"message": "Photo uploaded successfully", "file_path": path})
}

// Get handles GET /api/user/:registration_id.
func (h *Handler) Get(c *fiber.Ctx) error {
	r, err := h.service.Get(c.UserContext(), c.Params("registration_id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(toResponse(r))
}

// UpdatePayment handles POST /api/payment.
func (h *Handler) UpdatePayment(c *fiber.Ctx) error {
	var in PaymentInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	}
	if _, err := h.service.UpdatePayment(c.UserContext(), in); err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"message": "Payment updated successfully"})
}

// GenerateCard handles GET /api/generate-card/:registration_id.
func (h *Handler) GenerateCard(c *fiber.Ctx) error {
	doc, err := h.service.GenerateCard(c.UserContext(), c.Params("registration_id"))
	if err != nil {
		return httpError(err)
	}
	c.Attachment(doc.Filename)
	c.Set(fiber.HeaderContentType, doc.ContentType)
	return c.Send(doc.Data)
}

// QRData handles GET /api/qr-data/:registration_id.
func (h *Handler) QRData(c *fiber.Ctx) error {
	p, err := h.service.QRData(c.UserContext(), c.Params("registration_id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(p)
}

// List handles GET /api/users.
func (h *Handler) List(c *fiber.Ctx) error {
	all, err := h.service.List(c.UserContext())
	if err != nil {
		return httpError(err)
	}
	out := make([]recordResponse, 0, len(all))
	for _, r := range all {
		out = append(out, toRecord(r))
	}
	return c.JSON(out)
}

// Payments handles GET /api/payments/:registration_id.
func (h *Handler) Payments(c *fiber.Ctx) error {
	entries, err := h.service.Payments(c.UserContext(), c.Params("registration_id"))
	if err != nil {
		return httpError(err)
	}
	out := make([]paymentResponse, 0, len(entries))
	for _, p := range entries {
		out = append(out, paymentResponse{ID: p.ID, Kind: p.Kind, Amount: p.Amount, RecordedAt: p.RecordedAt})
	}
	return c.JSON(out)
}
