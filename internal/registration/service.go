// Package registration orchestrates member registration, photo storage,
// payments and card generation on top of the registry store.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/firstcare-health/member-registry/internal/artifacts"
	"github.com/firstcare-health/member-registry/internal/card"
	"github.com/firstcare-health/member-registry/internal/logging"
	"github.com/firstcare-health/member-registry/internal/metrics"
	"github.com/firstcare-health/member-registry/internal/notification"
	"github.com/firstcare-health/member-registry/internal/qrpayload"
	"github.com/firstcare-health/member-registry/internal/regid"
	"github.com/firstcare-health/member-registry/internal/registry"
)

// Service implements the registration use cases.
type Service struct {
	store    registry.Store
	ids      *regid.Generator
	renderer *card.Renderer
	uploads  *artifacts.Dir
	cards    *artifacts.Dir
	fee      float64
	validate *validator.Validate
	notifier notification.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Deps groups the collaborators of a Service. Notifier, Metrics and Logger
// are optional.
type Deps struct {
	Store    registry.Store
	IDs      *regid.Generator
	Renderer *card.Renderer
	Uploads  *artifacts.Dir
	Cards    *artifacts.Dir
	Fee      float64
	Notifier notification.Notifier
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// NewService constructs a registration service.
func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{
		store:    d.Store,
		ids:      d.IDs,
		renderer: d.Renderer,
		uploads:  d.Uploads,
		cards:    d.Cards,
		fee:      d.Fee,
		validate: newValidator(),
		notifier: d.Notifier,
		metrics:  d.Metrics,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) session(ctx context.Context) (registry.Session, error) {
	sess, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("open registry session: %w", err)
	}
	return sess, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, registry.ErrDuplicateNationalID):
		return ErrDuplicateIdentity
	case errors.Is(err, registry.ErrUnknownPaymentKind):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	default:
		return err
	}
}

// Register validates in, assigns a registration id and persists the record.
func (s *Service) Register(ctx context.Context, in Input) (registry.Registrant, error) {
	in.normalize()
	if err := s.validate.StructCtx(ctx, in); err != nil {
		return registry.Registrant{}, validationError(err)
	}

	sess, err := s.session(ctx)
	if err != nil {
		return registry.Registrant{}, err
	}
	defer sess.Release()

	r := in.registrant(s.ids.Next())
	r.Defaults(s.now(), s.fee)

	created, err := sess.Insert(ctx, r)
	if err != nil {
		if errors.Is(err, registry.ErrDuplicateNationalID) {
			s.metrics.IncrementDuplicates()
			return registry.Registrant{}, ErrDuplicateIdentity
		}
		return registry.Registrant{}, fmt.Errorf("insert registrant: %w", err)
	}

	s.metrics.IncrementRegistrations()
	s.logger.InfoContext(ctx, "registrant created", slog.String("registration_id", created.RegistrationID))
	s.notify(ctx, notification.Message{
		Kind:        notification.KindRegistration,
		Destination: created.PhoneNumber,
		Body:        fmt.Sprintf("Welcome %s, your registration id is %s", created.FullName(), created.RegistrationID),
	})
	return created, nil
}

// AttachPhoto stores data as the registrant's photo and returns its path.
// The content is not inspected.
func (s *Service) AttachPhoto(ctx context.Context, registrationID string, data []byte, ext string) (string, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return "", err
	}
	defer sess.Release()

	if _, err := sess.FindByRegistrationID(ctx, registrationID); err != nil {
		return "", translate(err)
	}

	path, err := s.uploads.Write(artifacts.PhotoName(registrationID, ext), data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := sess.SetPhotoPath(ctx, registrationID, path); err != nil {
		return "", translate(err)
	}

	s.metrics.IncrementPhotos()
	return path, nil
}

// Get returns the registrant with the given id.
func (s *Service) Get(ctx context.Context, registrationID string) (registry.Registrant, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return registry.Registrant{}, err
	}
	defer sess.Release()

	r, err := sess.FindByRegistrationID(ctx, registrationID)
	if err != nil {
		return registry.Registrant{}, translate(err)
	}
	return r, nil
}

// UpdatePayment records a payment. A registration payment marks the fee as
// paid and may be repeated; daily dues are added to the balance.
func (s *Service) UpdatePayment(ctx context.Context, in PaymentInput) (registry.Registrant, error) {
	if err := s.validate.StructCtx(ctx, in); err != nil {
		return registry.Registrant{}, validationError(err)
	}
	if in.PaymentType == registry.PaymentDailyDues && in.Amount <= 0 {
		return registry.Registrant{}, fmt.Errorf("%w: amount must be positive for daily dues", ErrValidation)
	}

	sess, err := s.session(ctx)
	if err != nil {
		return registry.Registrant{}, err
	}
	defer sess.Release()

	r, err := sess.ApplyPayment(ctx, in.RegistrationID, in.PaymentType, in.Amount)
	if err != nil {
		return registry.Registrant{}, translate(err)
	}

	s.metrics.ObservePayment(in.PaymentType)
	s.logger.InfoContext(ctx, "payment recorded",
		slog.String("registration_id", r.RegistrationID),
		slog.String("kind", in.PaymentType),
		slog.Float64("amount", in.Amount))
	s.notify(ctx, notification.Message{
		Kind:        notification.KindPayment,
		Destination: r.PhoneNumber,
		Body:        fmt.Sprintf("Payment of %.2f (%s) received for %s", in.Amount, in.PaymentType, r.RegistrationID),
	})
	return r, nil
}

// GenerateCard renders the registrant's card, stores a copy in the cards
// directory and returns the document.
func (s *Service) GenerateCard(ctx context.Context, registrationID string) (card.Document, error) {
	r, err := s.Get(ctx, registrationID)
	if err != nil {
		return card.Document{}, err
	}

	doc, err := s.renderer.Render(ctx, r)
	if err != nil {
		return card.Document{}, fmt.Errorf("render card %s: %w", registrationID, err)
	}
	if doc.PhotoPlaceholder && r.PhotoPath != "" {
		s.logger.WarnContext(ctx, "card rendered without photo",
			slog.String("registration_id", registrationID),
			slog.String("photo_path", r.PhotoPath))
	}

	if _, err := s.cards.Write(artifacts.CardName(registrationID), doc.Data); err != nil {
		return card.Document{}, fmt.Errorf("%w: %v", ErrIO, err)
	}

	s.metrics.ObserveCard(doc.PhotoPlaceholder)
	return doc, nil
}

// QRData returns the lookup payload shown to scanners.
func (s *Service) QRData(ctx context.Context, registrationID string) (qrpayload.LookupPayload, error) {
	r, err := s.Get(ctx, registrationID)
	if err != nil {
		return qrpayload.LookupPayload{}, err
	}
	return qrpayload.Lookup(r), nil
}

// List returns every registrant in insertion order.
func (s *Service) List(ctx context.Context) ([]registry.Registrant, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Release()

	out, err := sess.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrants: %w", err)
	}
	return out, nil
}

// Payments returns the payment journal of a registrant, oldest first.
func (s *Service) Payments(ctx context.Context, registrationID string) ([]registry.Payment, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Release()

	if _, err := sess.FindByRegistrationID(ctx, registrationID); err != nil {
		return nil, translate(err)
	}
	out, err := sess.Payments(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}

func (s *Service) notify(ctx context.Context, msg notification.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "notification failed", slog.String("kind", msg.Kind), slog.Any("error", err))
	}
}
