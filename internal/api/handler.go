package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/calloway/vellum/internal/auth"
	"github.com/calloway/vellum/internal/docservice"
	"github.com/calloway/vellum/internal/notify"
	"github.com/calloway/vellum/internal/spaceservice"
	"github.com/calloway/vellum/internal/sse"
	"github.com/calloway/vellum/internal/store"
)

// Handler holds API route handlers.
type Handler struct {
	db      *store.DB
	docs    *docservice.Service
	spaces  *spaceservice.Service
	authSvc *auth.Service
	notif   *notify.Notifier
	broker  *sse.Broker
}

// NewHandler creates a new Handler.
func NewHandler(db *store.DB, docs *docservice.Service, spaces *spaceservice.Service,
	authSvc *auth.Service, notif *notify.Notifier, broker *sse.Broker) *Handler {
	return &Handler{db: db, docs: docs, spaces: spaces, authSvc: authSvc, notif: notif, broker: broker}
}

// decodeJSON decodes and validates a request body, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	if v, ok := dst.(validation.Validatable); ok {
		if err := v.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return false
		}
	}
	return true
}

// idParam parses a numeric chi URL parameter.
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(h.authSvc.TTL()),
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
