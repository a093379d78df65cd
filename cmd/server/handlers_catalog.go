package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/logicalc/internal/apperr"
	"github.com/Simplici0/logicalc/internal/model"
	"github.com/Simplici0/logicalc/internal/store"
)

func (s *server) handleBranchesList(w http.ResponseWriter, r *http.Request) {
	branches, err := s.repo.ListBranches(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, apperr.NewPersistenceError("list branches", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"branches": branches})
}

func decodeBranch(r *http.Request) (model.Branch, error) {
	var b model.Branch
	if err := decodeJSON(r, &b); err != nil {
		return model.Branch{}, err
	}
	b.Code = strings.TrimSpace(b.Code)
	b.Name = strings.TrimSpace(b.Name)
	if err := b.Validate(); err != nil {
		return model.Branch{}, apperr.NewInvalidRequestError(err.Error())
	}
	return b, nil
}

func (s *server) handleBranchCreate(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBranch(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	b.ID = ""

	created, err := s.repo.CreateBranch(r.Context(), b)
	if err != nil {
		s.writeError(w, r, storeError("branch", b.Code, "create branch", err))
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleBranchUpdate(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBranch(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	b.ID = chi.URLParam(r, "id")

	if err := s.repo.UpdateBranch(r.Context(), b); err != nil {
		s.writeError(w, r, storeError("branch", b.ID, "update branch", err))
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *server) handleBranchDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.repo.DeleteBranch(r.Context(), id); err != nil {
		s.writeError(w, r, storeError("branch", id, "delete branch", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleCarriersList(w http.ResponseWriter, r *http.Request) {
	carriers, err := s.repo.ListCarriers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, apperr.NewPersistenceError("list carriers", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"carriers": carriers})
}

// decodeCarrier also checks that the referenced branch exists.
func (s *server) decodeCarrier(r *http.Request) (model.Carrier, error) {
	var c model.Carrier
	if err := decodeJSON(r, &c); err != nil {
		return model.Carrier{}, err
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Regions == nil {
		c.Regions = []string{}
	}
	for i := range c.Regions {
		c.Regions[i] = strings.ToUpper(strings.TrimSpace(c.Regions[i]))
	}
	if err := c.Validate(); err != nil {
		return model.Carrier{}, apperr.NewInvalidRequestError(err.Error())
	}

	if _, err := s.repo.GetBranch(r.Context(), c.BranchID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Carrier{}, apperr.NewInvalidRequestError("branchId: unknown branch " + c.BranchID)
		}
		return model.Carrier{}, apperr.NewPersistenceError("get branch", err)
	}
	return c, nil
}

func (s *server) handleCarrierCreate(w http.ResponseWriter, r *http.Request) {
	c, err := s.decodeCarrier(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c.ID = ""

	created, err := s.repo.CreateCarrier(r.Context(), c)
	if err != nil {
		s.writeError(w, r, storeError("carrier", c.Name, "create carrier", err))
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleCarrierUpdate(w http.ResponseWriter, r *http.Request) {
	c, err := s.decodeCarrier(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c.ID = chi.URLParam(r, "id")

	if err := s.repo.UpdateCarrier(r.Context(), c); err != nil {
		s.writeError(w, r, storeError("carrier", c.ID, "update carrier", err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *server) handleCarrierDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.repo.DeleteCarrier(r.Context(), id); err != nil {
		s.writeError(w, r, storeError("carrier", id, "delete carrier", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleConfigGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.repo.GetConfig(r.Context())
	if err != nil {
		s.writeError(w, r, apperr.NewPersistenceError("get config", err))
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *server) handleConfigUpdate(w http.ResponseWriter, r *http.Request) {
	var cfg model.SystemConfig
	if err := decodeJSON(r, &cfg); err != nil {
		s.writeError(w, r, err)
		return
	}
	cfg.CompanyName = strings.TrimSpace(cfg.CompanyName)
	if err := cfg.Validate(); err != nil {
		s.writeError(w, r, apperr.NewInvalidRequestError(err.Error()))
		return
	}

	if err := s.repo.SaveConfig(r.Context(), cfg); err != nil {
		s.writeError(w, r, apperr.NewPersistenceError("save config", err))
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
