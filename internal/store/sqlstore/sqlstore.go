// Package sqlstore implements the repositories on database/sql for SQLite and Postgres.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/logicalc/internal/db"
	"github.com/Simplici0/logicalc/internal/model"
	"github.com/Simplici0/logicalc/internal/store"
)

// Store is a store.Repository backed by a SQL database migrated with internal/migrations.
type Store struct {
	db      *sql.DB
	dialect db.Dialect
}

var _ store.Repository = (*Store)(nil)

func New(conn *sql.DB, dialect db.Dialect) *Store {
	return &Store{db: conn, dialect: dialect}
}

func (s *Store) q(query string) string {
	return db.Rebind(s.dialect, query)
}

func likePattern(query string) string {
	return "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
}

func checkAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Branches

func (s *Store) ListBranches(ctx context.Context, query string) ([]model.Branch, error) {
	sqlText := `SELECT id, code, name FROM branches`
	var args []any
	if strings.TrimSpace(query) != "" {
		sqlText += ` WHERE LOWER(name) LIKE ? OR LOWER(code) LIKE ?`
		args = append(args, likePattern(query), likePattern(query))
	}
	sqlText += ` ORDER BY code ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, s.q(sqlText), args...)
	if err != nil {
		return nil, fmt.Errorf("query branches: %w", err)
	}
	defer rows.Close()

	branches := make([]model.Branch, 0)
	for rows.Next() {
		var b model.Branch
		if err := rows.Scan(&b.ID, &b.Code, &b.Name); err != nil {
			return nil, fmt.Errorf("scan branch: %w", err)
		}
		branches = append(branches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate branches: %w", err)
	}
	return branches, nil
}

func (s *Store) GetBranch(ctx context.Context, id string) (model.Branch, error) {
	var b model.Branch
	err := s.db.QueryRowContext(ctx, s.q(`SELECT id, code, name FROM branches WHERE id = ?`), id).
		Scan(&b.ID, &b.Code, &b.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Branch{}, store.ErrNotFound
	}
	if err != nil {
		return model.Branch{}, fmt.Errorf("query branch: %w", err)
	}
	return b, nil
}

func (s *Store) CreateBranch(ctx context.Context, b model.Branch) (model.Branch, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if _, err := s.db.ExecContext(ctx, s.q(`INSERT INTO branches (id, code, name) VALUES (?, ?, ?)`), b.ID, b.Code, b.Name); err != nil {
		return model.Branch{}, fmt.Errorf("insert branch: %w", err)
	}
	return b, nil
}

func (s *Store) UpdateBranch(ctx context.Context, b model.Branch) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE branches SET code = ?, name = ? WHERE id = ?`), b.Code, b.Name, b.ID)
	if err != nil {
		return fmt.Errorf("update branch: %w", err)
	}
	return checkAffected(res, "update branch")
}

func (s *Store) DeleteBranch(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM branches WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	return checkAffected(res, "delete branch")
}

// Carriers

const carrierColumns = `id, name, logo_url, branch_id, regions, cost_per_kg, percentage_of_value,
	min_freight, delivery_time_value, delivery_time_unit, is_combined`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCarrier(row rowScanner) (model.Carrier, error) {
	var (
		c       model.Carrier
		regions string
		unit    string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.LogoURL, &c.BranchID, &regions, &c.CostPerKg, &c.PercentageOfValue,
		&c.MinFreight, &c.DeliveryTimeValue, &unit, &c.Combined); err != nil {
		return model.Carrier{}, err
	}
	c.Regions = splitRegions(regions)
	c.DeliveryTimeUnit = model.DeliveryUnit(unit)
	return c, nil
}

func splitRegions(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// ListCarriers returns matches in insertion order.
func (s *Store) ListCarriers(ctx context.Context, query string) ([]model.Carrier, error) {
	sqlText := `SELECT ` + carrierColumns + ` FROM carriers`
	var args []any
	if strings.TrimSpace(query) != "" {
		sqlText += ` WHERE LOWER(name) LIKE ?`
		args = append(args, likePattern(query))
	}
	sqlText += ` ORDER BY seq ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, s.q(sqlText), args...)
	if err != nil {
		return nil, fmt.Errorf("query carriers: %w", err)
	}
	defer rows.Close()

	carriers := make([]model.Carrier, 0)
	for rows.Next() {
		c, err := scanCarrier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan carrier: %w", err)
		}
		carriers = append(carriers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate carriers: %w", err)
	}
	return carriers, nil
}

func (s *Store) GetCarrier(ctx context.Context, id string) (model.Carrier, error) {
	c, err := scanCarrier(s.db.QueryRowContext(ctx, s.q(`SELECT `+carrierColumns+` FROM carriers WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Carrier{}, store.ErrNotFound
	}
	if err != nil {
		return model.Carrier{}, fmt.Errorf("query carrier: %w", err)
	}
	return c, nil
}

func (s *Store) CreateCarrier(ctx context.Context, c model.Carrier) (model.Carrier, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO carriers (`+carrierColumns+`, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM carriers))
	`), c.ID, c.Name, c.LogoURL, c.BranchID, strings.Join(c.Regions, ","), c.CostPerKg, c.PercentageOfValue,
		c.MinFreight, c.DeliveryTimeValue, string(c.DeliveryTimeUnit), c.Combined)
	if err != nil {
		return model.Carrier{}, fmt.Errorf("insert carrier: %w", err)
	}
	if c.Regions == nil {
		c.Regions = []string{}
	}
	return c, nil
}

func (s *Store) UpdateCarrier(ctx context.Context, c model.Carrier) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE carriers
		SET name = ?, logo_url = ?, branch_id = ?, regions = ?, cost_per_kg = ?, percentage_of_value = ?,
			min_freight = ?, delivery_time_value = ?, delivery_time_unit = ?, is_combined = ?
		WHERE id = ?
	`), c.Name, c.LogoURL, c.BranchID, strings.Join(c.Regions, ","), c.CostPerKg, c.PercentageOfValue,
		c.MinFreight, c.DeliveryTimeValue, string(c.DeliveryTimeUnit), c.Combined, c.ID)
	if err != nil {
		return fmt.Errorf("update carrier: %w", err)
	}
	return checkAffected(res, "update carrier")
}

func (s *Store) DeleteCarrier(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM carriers WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete carrier: %w", err)
	}
	return checkAffected(res, "delete carrier")
}

// System config

func (s *Store) GetConfig(ctx context.Context) (model.SystemConfig, error) {
	var cfg model.SystemConfig
	err := s.db.QueryRowContext(ctx, `SELECT company_name, logo_url FROM system_config WHERE id = 1`).
		Scan(&cfg.CompanyName, &cfg.LogoURL)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultSystemConfig(), nil
	}
	if err != nil {
		return model.SystemConfig{}, fmt.Errorf("query system config: %w", err)
	}
	return cfg, nil
}

func (s *Store) SaveConfig(ctx context.Context, cfg model.SystemConfig) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO system_config (id, company_name, logo_url)
		VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET company_name = excluded.company_name, logo_url = excluded.logo_url
	`), cfg.CompanyName, cfg.LogoURL)
	if err != nil {
		return fmt.Errorf("save system config: %w", err)
	}
	return nil
}

// Users

func (s *Store) CreateUser(ctx context.Context, u model.User, password string) error {
	hash, err := store.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create user transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, s.q(`SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`), u.Username).Scan(&exists); err != nil {
		return fmt.Errorf("check user existence: %w", err)
	}
	if exists {
		return store.ErrDuplicate
	}

	if _, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO users (username, full_name, password_hash, created_at) VALUES (?, ?, ?, ?)
	`), u.Username, u.FullName, hash, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create user transaction: %w", err)
	}
	return nil
}

func (s *Store) Authenticate(ctx context.Context, username, password string) (model.User, error) {
	var (
		u    model.User
		hash string
	)
	err := s.db.QueryRowContext(ctx, s.q(`SELECT username, full_name, password_hash FROM users WHERE username = ?`), username).
		Scan(&u.Username, &u.FullName, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, store.ErrInvalidLogin
	}
	if err != nil {
		return model.User{}, fmt.Errorf("query user credentials: %w", err)
	}
	if !store.CheckPassword(hash, password) {
		return model.User{}, store.ErrInvalidLogin
	}
	return u, nil
}
