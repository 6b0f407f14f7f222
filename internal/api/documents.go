package api

import (
	"net/http"
	"strconv"

	"github.com/calloway/vellum/internal/docservice"
	"github.com/calloway/vellum/internal/models"
)

// ListDocuments handles GET /api/documents.
//
//	@Summary	List documents visible to the caller
//	@Tags		documents
//	@Produce	json
//	@Param		spaceId	query		int	false	"Restrict to a space"
//	@Success	200		{array}		models.Document
//	@Router		/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	spaceID, _ := strconv.ParseInt(r.URL.Query().Get("spaceId"), 10, 64)
	docs, err := h.docs.List(r.Context(), userID(r), spaceID)
	if err != nil {
		writeError(w, "list documents", err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// RecentDocuments handles GET /api/documents/recent.
//
//	@Summary	List the most recently updated visible documents
//	@Tags		documents
//	@Produce	json
//	@Param		limit	query		int	false	"Max results"
//	@Success	200		{array}		models.Document
//	@Router		/documents/recent [get]
func (h *Handler) RecentDocuments(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	docs, err := h.docs.Recent(r.Context(), userID(r), limit)
	if err != nil {
		writeError(w, "recent documents", err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// SearchDocuments handles GET /api/documents/search.
//
//	@Summary	Search visible documents by title or content
//	@Tags		documents
//	@Produce	json
//	@Param		q	query		string	false	"Search query"
//	@Success	200	{array}		models.Document
//	@Router		/documents/search [get]
func (h *Handler) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusOK, []models.Document{})
		return
	}
	docs, err := h.docs.Search(r.Context(), userID(r), q)
	if err != nil {
		writeError(w, "search documents", err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// GetDocument handles GET /api/documents/{id}.
//
//	@Summary	Get a document and count the view
//	@Tags		documents
//	@Produce	json
//	@Param		id	path		int	true	"Document id"
//	@Success	200	{object}	models.Document
//	@Failure	401	{object}	errResponse
//	@Failure	403	{object}	errResponse
//	@Failure	404	{object}	errResponse
//	@Router		/documents/{id} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid document id"))
		return
	}
	doc, err := h.docs.Get(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, "get document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// GetDocumentHTML handles GET /api/documents/{id}/html.
//
//	@Summary	Get a document's content rendered as HTML
//	@Tags		documents
//	@Produce	json
//	@Param		id	path		int	true	"Document id"
//	@Success	200	{object}	map[string]string
//	@Failure	404	{object}	errResponse
//	@Router		/documents/{id}/html [get]
func (h *Handler) GetDocumentHTML(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid document id"))
		return
	}
	html, err := h.docs.RenderHTML(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, "render document", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"html": html})
}

// CreateDocument handles POST /api/documents.
//
//	@Summary	Create a document
//	@Tags		documents
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreateDocumentRequest	true	"Document to create"
//	@Success	201		{object}	models.Document
//	@Failure	400		{object}	errResponse
//	@Router		/documents [post]
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	doc, err := h.docs.Create(r.Context(), userFrom(r), docservice.CreateInput{
		Title:      req.Title,
		Content:    req.Content,
		Visibility: req.Visibility,
		SpaceID:    req.SpaceID,
	})
	if err != nil {
		writeError(w, "create document", err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// UpdateDocument handles PUT /api/documents/{id}.
//
//	@Summary	Update a document, snapshotting the previous state
//	@Tags		documents
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"Document id"
//	@Param		body	body		UpdateDocumentRequest	true	"Fields to change"
//	@Success	200		{object}	models.Document
//	@Failure	403		{object}	errResponse
//	@Failure	404		{object}	errResponse
//	@Router		/documents/{id} [put]
func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid document id"))
		return
	}
	var req UpdateDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	doc, err := h.docs.Update(r.Context(), userFrom(r), id, docservice.UpdateInput{
		Title:      req.Title,
		Content:    req.Content,
		Visibility: req.Visibility,
		SpaceID:    req.SpaceID,
	})
	if err != nil {
		writeError(w, "update document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument handles DELETE /api/documents/{id}.
//
//	@Summary	Soft-delete a document
//	@Tags		documents
//	@Param		id	path	int	true	"Document id"
//	@Success	204	"Document deleted"
//	@Failure	403	{object}	errResponse
//	@Failure	404	{object}	errResponse
//	@Router		/documents/{id} [delete]
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid document id"))
		return
	}
	if err := h.docs.Delete(r.Context(), userID(r), id); err != nil {
		writeError(w, "delete document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListComments handles GET /api/documents/{id}/comments.
//
//	@Summary	List a document's comments
//	@Tags		comments
//	@Produce	json
//	@Param		id	path		int	true	"Document id"
//	@Success	200	{array}		models.Comment
//	@Failure	404	{object}	errResponse
//	@Router		/documents/{id}/comments [get]
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid document id"))
		return
	}
	comments, err := h.docs.Comments(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, "list comments", err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// CreateComment handles POST /api/documents/{id}/comments.
//
//	@Summary	Comment on a document
//	@Tags		comments
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"Document id"
//	@Param		body	body		CreateCommentRequest	true	"Comment to add"
//	@Success	201		{object}	models.Comment
//	@Failure	403		{object}	errResponse
//	@Failure	404		{object}	errResponse
//	@Router		/documents/{id}/comments [post]
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid document id"))
		return
	}
	var req CreateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	comment, err := h.docs.AddComment(r.Context(), userFrom(r), id, req.Content)
	if err != nil {
		writeError(w, "create comment", err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// ListPermissions handles GET /api/documents/{id}/permissions.
//
//	@Summary	List the explicit grants on a document
//	@Tags		permissions
//	@Produce	json
//	@Param		id	path		int	true	"Document id"
//	@Success	200	{array}		models.Permission
//	@Failure	403	{object}	errResponse
//	@Router		/documents/{id}/permissions [get]
func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid document id"))
		return
	}
	perms, err := h.docs.Permissions(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, "list permissions", err)
		return
	}
	writeJSON(w, http.StatusOK, perms)
}

// SharePermission handles POST /api/documents/{id}/permissions.
//
//	@Summary	Share a document with a user
//	@Tags		permissions
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"Document id"
//	@Param		body	body		SharePermissionRequest	true	"Grant to apply"
//	@Success	201		{object}	models.Permission
//	@Failure	403		{object}	errResponse
//	@Failure	404		{object}	errResponse
//	@Router		/documents/{id}/permissions [post]
func (h *Handler) SharePermission(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid document id"))
		return
	}
	var req SharePermissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	perm, err := h.docs.Share(r.Context(), userFrom(r), id, req.UserID, req.Permission)
	if err != nil {
		writeError(w, "share document", err)
		return
	}
	writeJSON(w, http.StatusCreated, perm)
}

// RemovePermission handles DELETE /api/documents/{id}/permissions/{userId}.
//
//	@Summary	Revoke a user's grant on a document
//	@Tags		permissions
//	@Param		id		path	int	true	"Document id"
//	@Param		userId	path	int	true	"Grantee user id"
//	@Success	204		"Grant removed"
//	@Failure	403		{object}	errResponse
//	@Router		/documents/{id}/permissions/{userId} [delete]
func (h *Handler) RemovePermission(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid document id"))
		return
	}
	uid, ok := idParam(r, "userId")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid user id"))
		return
	}
	if err := h.docs.Unshare(r.Context(), userID(r), id, uid); err != nil {
		writeError(w, "unshare document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListVersions handles GET /api/documents/{id}/versions.
//
//	@Summary	List a document's version history
//	@Tags		versions
//	@Produce	json
//	@Param		id	path		int	true	"Document id"
//	@Success	200	{array}		models.Version
//	@Failure	404	{object}	errResponse
//	@Router		/documents/{id}/versions [get]
func (h *Handler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid document id"))
		return
	}
	versions, err := h.docs.Versions(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, "list versions", err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}
