package api

import (
	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted. Session
// resolution runs on every route; document reads admit anonymous callers for
// public documents, everything else requires a session.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(SessionMiddleware(h.authSvc))

	// Account.
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	// Public-capable document reads.
	r.Get("/documents/{id}", h.GetDocument)
	r.Get("/documents/{id}/html", h.GetDocumentHTML)
	r.Get("/documents/{id}/comments", h.ListComments)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/user", h.CurrentUser)
		r.Get("/users/search", h.SearchUsers)

		// Documents.
		r.Get("/documents", h.ListDocuments)
		r.Post("/documents", h.CreateDocument)
		r.Get("/documents/recent", h.RecentDocuments)
		r.Get("/documents/search", h.SearchDocuments)
		r.Put("/documents/{id}", h.UpdateDocument)
		r.Delete("/documents/{id}", h.DeleteDocument)
		r.Post("/documents/{id}/comments", h.CreateComment)
		r.Get("/documents/{id}/permissions", h.ListPermissions)
		r.Post("/documents/{id}/permissions", h.SharePermission)
		r.Delete("/documents/{id}/permissions/{userId}", h.RemovePermission)
		r.Get("/documents/{id}/versions", h.ListVersions)

		// Spaces.
		r.Get("/spaces", h.ListSpaces)
		r.Post("/spaces", h.CreateSpace)
		r.Get("/spaces/{id}", h.GetSpace)
		r.Get("/spaces/{id}/members", h.ListMembers)
		r.Post("/spaces/{id}/members", h.AddMember)
		r.Delete("/spaces/{id}/members/{userId}", h.RemoveMember)

		// Notifications and live events.
		r.Get("/notifications", h.ListNotifications)
		r.Put("/notifications/{id}/read", h.MarkNotificationRead)
		r.Put("/notifications/read-all", h.MarkAllNotificationsRead)
		r.Get("/events", h.Events)
	})

	return r
}
