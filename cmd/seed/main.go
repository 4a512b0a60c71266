// Command seed creates the registry schema and, when the store is empty,
// inserts a sample paid-up member for local testing.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/firstcare-health/member-registry/internal/config"
	"github.com/firstcare-health/member-registry/internal/infra"
	"github.com/firstcare-health/member-registry/internal/logging"
	"github.com/firstcare-health/member-registry/internal/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := infra.NewStore(ctx, cfg)
	if err != nil {
		logger.Error("open registry store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	created, err := seed(ctx, store, cfg, time.Now())
	if err != nil {
		logger.Error("seed registry", "error", err)
		os.Exit(1)
	}
	if !created {
		logger.Info("registry already has members, nothing to seed")
		return
	}
	logger.Info("sample member created", "registration_id", sampleRegistrationID(cfg.RegPrefix))
}

func sampleRegistrationID(prefix string) string {
	return prefix + "20241209ADMIN01"
}

func sampleMember(cfg config.Config, now time.Time) registry.Registrant {
	r := registry.Registrant{
		RegistrationID:          sampleRegistrationID(cfg.RegPrefix),
		FirstName:               "Admin",
		LastName:                "User",
		DateOfBirth:             "1990-01-01",
		Sex:                     "M",
		PhoneNumber:             "08012345678",
		NIN:                     "12345678901",
		Address:                 "No 6, Yusuf Mohammed street, Narayi Highcost",
		State:                   "Kaduna",
		LGA:                     "Kaduna South",
		Zone:                    "Kaduna Region",
		Unit:                    "Barnawa",
		EmergencyContactName:    "Emergency Contact",
		EmergencyContactAddress: "Barnawa, Kaduna",
		EmergencyContactPhone:   "08087654321",
		Beneficiary1: registry.Beneficiary{
			Name:         "Beneficiary One",
			Address:      "Barnawa, Kaduna",
			Phone:        "08011111111",
			Relationship: "Spouse",
		},
	}
	r.Defaults(now, cfg.RegistrationFee)
	return r
}

// seed inserts the sample member and records its fee and opening dues when
// the store holds no registrants. It reports whether anything was written.
func seed(ctx context.Context, store registry.Store, cfg config.Config, now time.Time) (bool, error) {
	sess, err := store.Acquire(ctx)
	if err != nil {
		return false, err
	}
	defer sess.Release()

	n, err := sess.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count registrants: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	r, err := sess.Insert(ctx, sampleMember(cfg, now))
	if err != nil {
		return false, fmt.Errorf("insert sample member: %w", err)
	}
	if _, err := sess.ApplyPayment(ctx, r.RegistrationID, registry.PaymentRegistration, cfg.RegistrationFee); err != nil {
		return false, fmt.Errorf("record sample fee: %w", err)
	}
	if _, err := sess.ApplyPayment(ctx, r.RegistrationID, registry.PaymentDailyDues, 2400); err != nil {
		return false, fmt.Errorf("record sample dues: %w", err)
	}
	return true, nil
}
