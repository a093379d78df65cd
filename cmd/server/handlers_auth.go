package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Simplici0/logicalc/internal/apperr"
	"github.com/Simplici0/logicalc/internal/model"
	"github.com/Simplici0/logicalc/internal/store"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func readCredentials(r *http.Request) (credentials, error) {
	if isFormRequest(r) {
		if err := r.ParseForm(); err != nil {
			return credentials{}, apperr.NewInvalidRequestError("invalid form")
		}
		return credentials{Username: r.FormValue("username"), Password: r.FormValue("password")}, nil
	}
	var c credentials
	err := decodeJSON(r, &c)
	return c, err
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, valid, err := s.auth.validateCredentials(r.Context(), creds.Username, creds.Password)
	if err != nil {
		s.writeError(w, r, apperr.NewPersistenceError("validate credentials", err))
		return
	}
	if !valid {
		s.log.Info("login rejected", map[string]interface{}{"username": creds.Username})
		s.writeError(w, r, apperr.NewAuthenticationError("Usuário ou senha inválidos."))
		return
	}

	s.auth.setSessionCookie(w, user.Username)
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg model.Registration
	if err := decodeJSON(r, &reg); err != nil {
		s.writeError(w, r, err)
		return
	}
	reg.Username = strings.TrimSpace(reg.Username)
	reg.FullName = strings.TrimSpace(reg.FullName)
	if err := reg.Validate(); err != nil {
		s.writeError(w, r, apperr.NewInvalidRequestError(err.Error()))
		return
	}

	user := model.User{Username: reg.Username, FullName: reg.FullName}
	if err := s.repo.CreateUser(r.Context(), user, reg.Password); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			s.writeError(w, r, apperr.NewDuplicateError("user", reg.Username))
			return
		}
		s.writeError(w, r, apperr.NewPersistenceError("create user", err))
		return
	}

	s.log.Info("user registered", map[string]interface{}{"username": user.Username})
	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (s *server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"username": sessionUsername(r.Context())})
}
