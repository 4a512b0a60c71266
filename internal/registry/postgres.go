package registry

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema/postgres.sql
var postgresSchema string

const (
	pgUniqueViolation   = "23505"
	pgNationalIDUniqKey = "registrants_nin_key"
)

// PostgresStore implements Store using a pgx connection pool.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed registrant store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Acquire checks a connection out of the pool for the duration of a request.
func (s *PostgresStore) Acquire(ctx context.Context) (Session, error) {
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire postgres connection: %w", err)
	}
	return &postgresSession{conn: conn}, nil
}

// EnsureSchema creates the registrant and payment tables when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range statements(postgresSchema) {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply postgres schema: %w", err)
		}
	}
	return nil
}

// Ping verifies connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

type postgresSession struct {
	conn *pgxpool.Conn
}

func (s *postgresSession) Release() {
	s.conn.Release()
}

func (s *postgresSession) Insert(ctx context.Context, r Registrant) (Registrant, error) {
	const query = `INSERT INTO registrants (registration_id, first_name, middle_name, last_name, date_of_birth, sex,
        phone_number, nin, address, state, lga, zone, unit, photo_path,
        emergency_contact_name, emergency_contact_address, emergency_contact_phone,
        beneficiary1_name, beneficiary1_address, beneficiary1_phone, beneficiary1_relationship,
        beneficiary2_name, beneficiary2_address, beneficiary2_phone, beneficiary2_relationship,
        registration_fee_paid, registration_fee_amount, daily_dues_balance, membership_status,
        created_at, issue_date, expiry_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
        $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32)
        RETURNING id`
	if err := s.conn.QueryRow(ctx, query, insertArgs(r)...).Scan(&r.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == pgNationalIDUniqKey {
			return Registrant{}, ErrDuplicateNationalID
		}
		return Registrant{}, err
	}
	return r, nil
}

func (s *postgresSession) FindByRegistrationID(ctx context.Context, registrationID string) (Registrant, error) {
	return findPostgres(ctx, s.conn, registrationID)
}

type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func findPostgres(ctx context.Context, q pgQuerier, registrationID string) (Registrant, error) {
	row := q.QueryRow(ctx, `SELECT `+registrantColumns+` FROM registrants WHERE registration_id = $1`, registrationID)
	r, err := scanRegistrant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Registrant{}, ErrNotFound
		}
		return Registrant{}, err
	}
	return r, nil
}

func (s *postgresSession) SetPhotoPath(ctx context.Context, registrationID, path string) error {
	cmd, err := s.conn.Exec(ctx, `UPDATE registrants SET photo_path = $1 WHERE registration_id = $2`, path, registrationID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *postgresSession) ApplyPayment(ctx context.Context, registrationID, kind string, amount float64) (Registrant, error) {
	if err := validKind(kind); err != nil {
		return Registrant{}, err
	}

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Registrant{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var cmd pgconn.CommandTag
	switch kind {
	case PaymentRegistration:
		cmd, err = tx.Exec(ctx, `UPDATE registrants SET registration_fee_paid = TRUE, membership_status = $1
            WHERE registration_id = $2`, StatusActive, registrationID)
	case PaymentDailyDues:
		cmd, err = tx.Exec(ctx, `UPDATE registrants SET daily_dues_balance = daily_dues_balance + $1
            WHERE registration_id = $2`, amount, registrationID)
	}
	if err != nil {
		return Registrant{}, err
	}
	if cmd.RowsAffected() == 0 {
		return Registrant{}, ErrNotFound
	}

	if _, err := tx.Exec(ctx, `INSERT INTO payments (registration_id, kind, amount, recorded_at) VALUES ($1, $2, $3, $4)`,
		registrationID, kind, amount, time.Now().UTC()); err != nil {
		return Registrant{}, err
	}

	updated, err := findPostgres(ctx, tx, registrationID)
	if err != nil {
		return Registrant{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Registrant{}, err
	}
	return updated, nil
}

func (s *postgresSession) Payments(ctx context.Context, registrationID string) ([]Payment, error) {
	rows, err := s.conn.Query(ctx, `SELECT id, registration_id, kind, amount, recorded_at FROM payments
        WHERE registration_id = $1 ORDER BY id`, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.RegistrationID, &p.Kind, &p.Amount, &p.RecordedAt); err != nil {
			return nil, err
		}
		p.RecordedAt = p.RecordedAt.UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *postgresSession) List(ctx context.Context) ([]Registrant, error) {
	rows, err := s.conn.Query(ctx, `SELECT `+registrantColumns+` FROM registrants ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Registrant
	for rows.Next() {
		r, err := scanRegistrant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *postgresSession) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM registrants`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
