// Package store defines the repositories the service reads and writes.
package store

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/logicalc/internal/history"
	"github.com/Simplici0/logicalc/internal/model"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("already exists")
	ErrInvalidLogin = errors.New("invalid username or password")
)

// BranchRepository manages origin branches.
type BranchRepository interface {
	// ListBranches returns branches whose name or code contains query; empty means all.
	ListBranches(ctx context.Context, query string) ([]model.Branch, error)
	GetBranch(ctx context.Context, id string) (model.Branch, error)
	CreateBranch(ctx context.Context, b model.Branch) (model.Branch, error)
	UpdateBranch(ctx context.Context, b model.Branch) error
	DeleteBranch(ctx context.Context, id string) error
}

// CarrierRepository manages carriers and their pricing attributes.
type CarrierRepository interface {
	// ListCarriers returns carriers whose name contains query; empty means all.
	ListCarriers(ctx context.Context, query string) ([]model.Carrier, error)
	GetCarrier(ctx context.Context, id string) (model.Carrier, error)
	CreateCarrier(ctx context.Context, c model.Carrier) (model.Carrier, error)
	UpdateCarrier(ctx context.Context, c model.Carrier) error
	DeleteCarrier(ctx context.Context, id string) error
}

// Catalog is everything a simulation reads before pricing.
type Catalog interface {
	BranchRepository
	CarrierRepository
}

type ConfigRepository interface {
	GetConfig(ctx context.Context) (model.SystemConfig, error)
	SaveConfig(ctx context.Context, cfg model.SystemConfig) error
}

type UserRepository interface {
	// CreateUser stores u with a bcrypt hash of password. ErrDuplicate if the username is taken.
	CreateUser(ctx context.Context, u model.User, password string) error
	// Authenticate returns ErrInvalidLogin for an unknown user or wrong password.
	Authenticate(ctx context.Context, username, password string) (model.User, error)
}

// Repository aggregates every store the server needs.
type Repository interface {
	Catalog
	ConfigRepository
	UserRepository
	history.Store
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
