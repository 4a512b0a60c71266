package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the registry service.
type Metrics struct {
	Registry *prometheus.Registry

	RegistrationsCreated  prometheus.Counter
	DuplicateRegistration prometheus.Counter
	PhotosUploaded        prometheus.Counter
	PaymentsRecorded      *prometheus.CounterVec
	CardsRendered         *prometheus.CounterVec
}

// New creates and registers all metrics on a private registry, so tests can
// build as many instances as they need.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RegistrationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "member_registry_registrations_total",
			Help: "Total number of registrants created",
		}),
		DuplicateRegistration: factory.NewCounter(prometheus.CounterOpts{
			Name: "member_registry_duplicate_registrations_total",
			Help: "Registrations rejected because the national id already exists",
		}),
		PhotosUploaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "member_registry_photos_uploaded_total",
			Help: "Total number of registrant photos stored",
		}),
		PaymentsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "member_registry_payments_total",
			Help: "Payments recorded, by kind",
		}, []string{"kind"}),
		CardsRendered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "member_registry_cards_rendered_total",
			Help: "Cards rendered, by photo outcome",
		}, []string{"photo"}),
	}
}

// IncrementRegistrations increments the registrations counter by 1.
func (m *Metrics) IncrementRegistrations() {
	if m == nil {
		return
	}
	m.RegistrationsCreated.Inc()
}

// IncrementDuplicates counts a rejected duplicate identity.
func (m *Metrics) IncrementDuplicates() {
	if m == nil {
		return
	}
	m.DuplicateRegistration.Inc()
}

// IncrementPhotos counts a stored photo.
func (m *Metrics) IncrementPhotos() {
	if m == nil {
		return
	}
	m.PhotosUploaded.Inc()
}

// ObservePayment counts a recorded payment of the given kind.
func (m *Metrics) ObservePayment(kind string) {
	if m == nil {
		return
	}
	m.PaymentsRecorded.WithLabelValues(kind).Inc()
}

// ObserveCard counts a rendered card, labelled by whether the photo was used.
func (m *Metrics) ObserveCard(placeholder bool) {
	if m == nil {
		return
	}
	outcome := "embedded"
	if placeholder {
		outcome = "placeholder"
	}
	m.CardsRendered.WithLabelValues(outcome).Inc()
}
