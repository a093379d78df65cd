package memstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/logicalc/internal/history"
	"github.com/Simplici0/logicalc/internal/model"
	"github.com/Simplici0/logicalc/internal/store"
)

func TestCarriersKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, name := range []string{"Zeta", "Alfa", "Beta"} {
		_, err := s.CreateCarrier(ctx, model.Carrier{Name: name, BranchID: "1"})
		require.NoError(t, err)
	}

	all, err := s.ListCarriers(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Zeta", all[0].Name)
	assert.Equal(t, "Beta", all[2].Name)

	require.NoError(t, s.DeleteCarrier(ctx, all[1].ID))
	all, _ = s.ListCarriers(ctx, "")
	assert.Equal(t, []string{"Zeta", "Beta"}, []string{all[0].Name, all[1].Name})
	assert.ErrorIs(t, s.DeleteCarrier(ctx, "missing"), store.ErrNotFound)
}

func TestHistoryCapAndIsolation(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i := 0; i < history.MaxEntries+1; i++ {
		_, err := s.Append(ctx, history.Entry{ID: fmt.Sprint(i)})
		require.NoError(t, err)
	}

	log, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, log, history.MaxEntries)
	assert.Equal(t, fmt.Sprint(history.MaxEntries), log[0].ID)

	log[0].ID = "mutated"
	again, _ := s.Load(ctx)
	assert.NotEqual(t, "mutated", again[0].ID)
}

func TestUsersAndConfig(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateUser(ctx, model.User{Username: "ana", FullName: "Ana"}, "abcd"))
	assert.ErrorIs(t, s.CreateUser(ctx, model.User{Username: "ana"}, "abcd"), store.ErrDuplicate)
	_, err := s.Authenticate(ctx, "ana", "nope")
	assert.ErrorIs(t, err, store.ErrInvalidLogin)

	cfg, _ := s.GetConfig(ctx)
	assert.Equal(t, model.DefaultCompanyName, cfg.CompanyName)
	require.NoError(t, s.SaveConfig(ctx, model.SystemConfig{CompanyName: "X"}))
	cfg, _ = s.GetConfig(ctx)
	assert.Equal(t, "X", cfg.CompanyName)
}
