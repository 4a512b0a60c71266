package registry

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

//go:embed schema/sqlite.sql
var sqliteSchema string

// SQLiteStore implements Store on a local SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open database/sql handle using the sqlite3 driver.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Acquire reserves a single connection for the caller.
func (s *SQLiteStore) Acquire(ctx context.Context) (Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire sqlite connection: %w", err)
	}
	return &sqliteSession{conn: conn}, nil
}

// EnsureSchema creates the registrant and payment tables when missing.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range statements(sqliteSchema) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}

// Ping verifies the database file is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type sqliteSession struct {
	conn *sql.Conn
}

func (s *sqliteSession) Release() {
	_ = s.conn.Close()
}

func isDuplicateNationalID(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique &&
		strings.Contains(sqliteErr.Error(), "registrants.nin")
}

func (s *sqliteSession) Insert(ctx context.Context, r Registrant) (Registrant, error) {
	const query = `INSERT INTO registrants (registration_id, first_name, middle_name, last_name, date_of_birth, sex,
        phone_number, nin, address, state, lga, zone, unit, photo_path,
        emergency_contact_name, emergency_contact_address, emergency_contact_phone,
        beneficiary1_name, beneficiary1_address, beneficiary1_phone, beneficiary1_relationship,
        beneficiary2_name, beneficiary2_address, beneficiary2_phone, beneficiary2_relationship,
        registration_fee_paid, registration_fee_amount, daily_dues_balance, membership_status,
        created_at, issue_date, expiry_date)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.conn.ExecContext(ctx, query, insertArgs(r)...)
	if err != nil {
		if isDuplicateNationalID(err) {
			return Registrant{}, ErrDuplicateNationalID
		}
		return Registrant{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Registrant{}, err
	}
	r.ID = id
	return r, nil
}

type sqlQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findSQLite(ctx context.Context, q sqlQuerier, registrationID string) (Registrant, error) {
	row := q.QueryRowContext(ctx, `SELECT `+registrantColumns+` FROM registrants WHERE registration_id = ?`, registrationID)
	r, err := scanRegistrant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Registrant{}, ErrNotFound
		}
		return Registrant{}, err
	}
	return r, nil
}

func (s *sqliteSession) FindByRegistrationID(ctx context.Context, registrationID string) (Registrant, error) {
	return findSQLite(ctx, s.conn, registrationID)
}

func (s *sqliteSession) SetPhotoPath(ctx context.Context, registrationID, path string) error {
	res, err := s.conn.ExecContext(ctx, `UPDATE registrants SET photo_path = ? WHERE registration_id = ?`, path, registrationID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteSession) ApplyPayment(ctx context.Context, registrationID, kind string, amount float64) (Registrant, error) {
	if err := validKind(kind); err != nil {
		return Registrant{}, err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return Registrant{}, err
	}
	defer tx.Rollback() // nolint:errcheck

	var res sql.Result
	switch kind {
	case PaymentRegistration:
		res, err = tx.ExecContext(ctx, `UPDATE registrants SET registration_fee_paid = 1, membership_status = ?
            WHERE registration_id = ?`, StatusActive, registrationID)
	case PaymentDailyDues:
		res, err = tx.ExecContext(ctx, `UPDATE registrants SET daily_dues_balance = daily_dues_balance + ?
            WHERE registration_id = ?`, amount, registrationID)
	}
	if err != nil {
		return Registrant{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Registrant{}, err
	}
	if n == 0 {
		return Registrant{}, ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO payments (registration_id, kind, amount, recorded_at) VALUES (?, ?, ?, ?)`,
		registrationID, kind, amount, time.Now().UTC()); err != nil {
		return Registrant{}, err
	}

	updated, err := findSQLite(ctx, tx, registrationID)
	if err != nil {
		return Registrant{}, err
	}

	if err := tx.Commit(); err != nil {
		return Registrant{}, err
	}
	return updated, nil
}

func (s *sqliteSession) Payments(ctx context.Context, registrationID string) ([]Payment, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, registration_id, kind, amount, recorded_at FROM payments
        WHERE registration_id = ? ORDER BY id`, registrationID)
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

func (s *sqliteSession) List(ctx context.Context) ([]Registrant, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT `+registrantColumns+` FROM registrants ORDER BY id`)
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

func (s *sqliteSession) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrants`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
