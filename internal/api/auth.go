package api

import (
	"net/http"

	"github.com/calloway/vellum/internal/models"
)

// Register handles POST /api/register.
//
//	@Summary		Create an account and log it in
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RegisterRequest	true	"Account to create"
//	@Success		201		{object}	models.UserRef
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, token, err := h.authSvc.Register(r.Context(), req.Username, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		writeError(w, "register", err)
		return
	}
	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, models.NewUserRef(*u))
}

// Login handles POST /api/login.
//
//	@Summary		Log in with username and password
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	models.UserRef
//	@Failure		401		{object}	errResponse
//	@Router			/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, token, err := h.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, "login", err)
		return
	}
	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, models.NewUserRef(*u))
}

// Logout handles POST /api/logout.
//
//	@Summary	Invalidate the current session
//	@Tags		auth
//	@Success	204	"Logged out"
//	@Router		/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		if err := h.authSvc.Logout(r.Context(), c.Value); err != nil {
			writeError(w, "logout", err)
			return
		}
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// CurrentUser handles GET /api/user.
//
//	@Summary	Get the authenticated user
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	models.UserRef
//	@Failure	401	{object}	errResponse
//	@Router		/user [get]
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.NewUserRef(*userFrom(r)))
}

// SearchUsers handles GET /api/users/search.
//
//	@Summary	Search users for sharing and mentions
//	@Tags		users
//	@Produce	json
//	@Param		q	query		string	false	"Search query"
//	@Success	200	{array}		models.UserRef
//	@Router		/users/search [get]
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusOK, []models.UserRef{})
		return
	}
	users, err := h.db.SearchUsers(r.Context(), q)
	if err != nil {
		writeError(w, "search users", err)
		return
	}
	refs := make([]models.UserRef, len(users))
	for i, u := range users {
		refs[i] = models.NewUserRef(u)
	}
	writeJSON(w, http.StatusOK, refs)
}
