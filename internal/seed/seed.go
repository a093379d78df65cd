package seed

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/logicalc/internal/db"
	"github.com/Simplici0/logicalc/internal/model"
	"github.com/Simplici0/logicalc/internal/store"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminUsername string
	AdminPassword string
	AdminFullName string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// DefaultBranches are created when the branches table is empty.
var DefaultBranches = []model.Branch{
	{ID: "1", Code: "001", Name: "Matriz São Paulo"},
	{ID: "2", Code: "002", Name: "Filial Curitiba"},
}

// DefaultCarriers are created when the carriers table is empty.
var DefaultCarriers = []model.Carrier{
	{
		ID:                "1",
		Name:              "TransExpress",
		BranchID:          "1",
		Regions:           []string{"SP", "RJ", "MG"},
		CostPerKg:         2.5,
		PercentageOfValue: 0.8,
		MinFreight:        50,
		DeliveryTimeValue: 2,
		DeliveryTimeUnit:  model.DeliveryDays,
		Combined:          false,
	},
	{
		ID:                "2",
		Name:              "Logística Rápida",
		BranchID:          "1",
		Regions:           []string{"SP", "PR", "SC"},
		CostPerKg:         1.8,
		PercentageOfValue: 1.2,
		MinFreight:        45,
		DeliveryTimeValue: 48,
		DeliveryTimeUnit:  model.DeliveryHours,
		Combined:          true,
	},
}

type seeder struct {
	tx      *sql.Tx
	dialect db.Dialect
	stats   Stats
}

func (s *seeder) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var exists bool
	err := s.tx.QueryRowContext(ctx, db.Rebind(s.dialect, query), args...).Scan(&exists)
	return exists, err
}

func (s *seeder) exec(ctx context.Context, query string, args ...any) error {
	_, err := s.tx.ExecContext(ctx, db.Rebind(s.dialect, query), args...)
	return err
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, conn *sql.DB, dialect db.Dialect, cfg Config) (Stats, error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	s := &seeder{tx: tx, dialect: dialect}
	steps := []func(context.Context) error{
		func(ctx context.Context) error { return s.ensureAdmin(ctx, cfg) },
		s.ensureSystemConfig,
		s.ensureBranches,
		s.ensureCarriers,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return s.stats, nil
}

func (s *seeder) ensureAdmin(ctx context.Context, cfg Config) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	exists, err := s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, cfg.AdminUsername)
	if err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := store.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	fullName := cfg.AdminFullName
	if fullName == "" {
		fullName = cfg.AdminUsername
	}
	if err := s.exec(ctx, `INSERT INTO users (username, full_name, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		cfg.AdminUsername, fullName, hash, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	s.stats.Inserts++
	return nil
}

func (s *seeder) ensureSystemConfig(ctx context.Context) error {
	exists, err := s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM system_config WHERE id = 1)`)
	if err != nil {
		return fmt.Errorf("check system config existence: %w", err)
	}
	if exists {
		return nil
	}

	def := model.DefaultSystemConfig()
	if err := s.exec(ctx, `INSERT INTO system_config (id, company_name, logo_url) VALUES (1, ?, ?)`, def.CompanyName, def.LogoURL); err != nil {
		return fmt.Errorf("insert system config singleton: %w", err)
	}
	s.stats.Inserts++
	return nil
}

func (s *seeder) ensureBranches(ctx context.Context) error {
	exists, err := s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM branches)`)
	if err != nil {
		return fmt.Errorf("check branches existence: %w", err)
	}
	if exists {
		return nil
	}

	for _, b := range DefaultBranches {
		if err := s.exec(ctx, `INSERT INTO branches (id, code, name) VALUES (?, ?, ?)`, b.ID, b.Code, b.Name); err != nil {
			return fmt.Errorf("insert default branch %s: %w", b.Code, err)
		}
		s.stats.Inserts++
	}
	return nil
}

func (s *seeder) ensureCarriers(ctx context.Context) error {
	exists, err := s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM carriers)`)
	if err != nil {
		return fmt.Errorf("check carriers existence: %w", err)
	}
	if exists {
		return nil
	}

	for i, c := range DefaultCarriers {
		if err := s.exec(ctx, `
			INSERT INTO carriers (
				id, name, logo_url, branch_id, regions, cost_per_kg, percentage_of_value,
				min_freight, delivery_time_value, delivery_time_unit, is_combined, seq
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, c.ID, c.Name, c.LogoURL, c.BranchID, strings.Join(c.Regions, ","), c.CostPerKg, c.PercentageOfValue,
			c.MinFreight, c.DeliveryTimeValue, string(c.DeliveryTimeUnit), c.Combined, i+1); err != nil {
			return fmt.Errorf("insert default carrier %s: %w", c.Name, err)
		}
		s.stats.Inserts++
	}
	return nil
}
