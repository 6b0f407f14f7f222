package api

import (
	"net/http"

	"github.com/calloway/vellum/internal/spaceservice"
)

// ListSpaces handles GET /api/spaces.
//
//	@Summary	List the caller's spaces
//	@Tags		spaces
//	@Produce	json
//	@Success	200	{array}	models.Space
//	@Router		/spaces [get]
func (h *Handler) ListSpaces(w http.ResponseWriter, r *http.Request) {
	spaces, err := h.spaces.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, "list spaces", err)
		return
	}
	writeJSON(w, http.StatusOK, spaces)
}

// CreateSpace handles POST /api/spaces.
//
//	@Summary	Create a space
//	@Tags		spaces
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreateSpaceRequest	true	"Space to create"
//	@Success	201		{object}	models.Space
//	@Failure	409		{object}	errResponse
//	@Router		/spaces [post]
func (h *Handler) CreateSpace(w http.ResponseWriter, r *http.Request) {
	var req CreateSpaceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	space, err := h.spaces.Create(r.Context(), userID(r), spaceservice.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		writeError(w, "create space", err)
		return
	}
	writeJSON(w, http.StatusCreated, space)
}

// GetSpace handles GET /api/spaces/{id}.
//
//	@Summary	Get a space
//	@Tags		spaces
//	@Produce	json
//	@Param		id	path		int	true	"Space id"
//	@Success	200	{object}	models.Space
//	@Failure	403	{object}	errResponse
//	@Failure	404	{object}	errResponse
//	@Router		/spaces/{id} [get]
func (h *Handler) GetSpace(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid space id"))
		return
	}
	space, err := h.spaces.Get(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, "get space", err)
		return
	}
	writeJSON(w, http.StatusOK, space)
}

// ListMembers handles GET /api/spaces/{id}/members.
//
//	@Summary	List a space's members
//	@Tags		spaces
//	@Produce	json
//	@Param		id	path		int	true	"Space id"
//	@Success	200	{array}		models.SpaceMember
//	@Failure	403	{object}	errResponse
//	@Router		/spaces/{id}/members [get]
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid space id"))
		return
	}
	members, err := h.spaces.Members(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, "list members", err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// AddMember handles POST /api/spaces/{id}/members.
//
//	@Summary	Add a member to a space
//	@Tags		spaces
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int					true	"Space id"
//	@Param		body	body		AddMemberRequest	true	"Member to add"
//	@Success	201		{object}	models.SpaceMember
//	@Failure	403		{object}	errResponse
//	@Failure	409		{object}	errResponse
//	@Router		/spaces/{id}/members [post]
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid space id"))
		return
	}
	var req AddMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	member, err := h.spaces.AddMember(r.Context(), userID(r), id, req.UserID, req.Role)
	if err != nil {
		writeError(w, "add member", err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

// RemoveMember handles DELETE /api/spaces/{id}/members/{userId}.
//
//	@Summary	Remove a member from a space
//	@Tags		spaces
//	@Param		id		path	int	true	"Space id"
//	@Param		userId	path	int	true	"Member user id"
//	@Success	204		"Member removed"
//	@Failure	403		{object}	errResponse
//	@Router		/spaces/{id}/members/{userId} [delete]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid space id"))
		return
	}
	uid, ok := idParam(r, "userId")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid user id"))
		return
	}
	if err := h.spaces.RemoveMember(r.Context(), userID(r), id, uid); err != nil {
		writeError(w, "remove member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
