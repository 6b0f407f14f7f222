// Package docservice coordinates document operations: access gating, version
// snapshots, comments, sharing, and the mention pipeline.
package docservice

import (
	"context"
	"errors"
	"log/slog"

	"github.com/calloway/vellum/internal/access"
	"github.com/calloway/vellum/internal/apperr"
	"github.com/calloway/vellum/internal/markdown"
	"github.com/calloway/vellum/internal/mention"
	"github.com/calloway/vellum/internal/models"
	"github.com/calloway/vellum/internal/notify"
	"github.com/calloway/vellum/internal/slug"
	"github.com/calloway/vellum/internal/store"
)

// Service coordinates store, access, and notification operations.
type Service struct {
	db    *store.DB
	eval  *access.Evaluator
	notif *notify.Notifier
	log   *slog.Logger
}

// NewService creates a document service.
func NewService(db *store.DB, eval *access.Evaluator, notif *notify.Notifier, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{db: db, eval: eval, notif: notif, log: log}
}

// CreateInput carries the fields of a document creation.
type CreateInput struct {
	Title      string
	Content    string
	Visibility string
	SpaceID    int64
}

// UpdateInput carries the optional fields of a document update. Nil fields
// are left unchanged.
type UpdateInput struct {
	Title      *string
	Content    *string
	Visibility *string
	SpaceID    *int64
}

func accessDoc(d *store.DocumentWithRefs) access.Doc {
	return access.Doc{ID: d.ID, AuthorID: d.AuthorID, Visibility: d.Visibility, SpaceID: d.SpaceID}
}

// viewGate returns ErrUnauthenticated for anonymous callers and ErrForbidden
// for authenticated ones the document does not admit.
func (s *Service) viewGate(ctx context.Context, d *store.DocumentWithRefs, userID int64) error {
	ok, err := s.eval.CanView(ctx, accessDoc(d), userID)
	if err != nil {
		return err
	}
	if !ok {
		if userID == 0 {
			return apperr.ErrUnauthenticated
		}
		return apperr.ErrForbidden
	}
	return nil
}

func (s *Service) editGate(ctx context.Context, d *store.DocumentWithRefs, userID int64) error {
	ok, err := s.eval.CanEdit(ctx, accessDoc(d), userID)
	if err != nil {
		return err
	}
	if !ok {
		if userID == 0 {
			return apperr.ErrUnauthenticated
		}
		return apperr.ErrForbidden
	}
	return nil
}

// List returns the documents visible to the user, optionally scoped to a
// space.
func (s *Service) List(ctx context.Context, userID, spaceID int64) ([]models.Document, error) {
	rows, err := s.db.ListDocuments(ctx, userID, spaceID)
	if err != nil {
		return nil, err
	}
	return toDocuments(rows), nil
}

// Search returns the visible documents matching the query.
func (s *Service) Search(ctx context.Context, userID int64, query string) ([]models.Document, error) {
	rows, err := s.db.SearchDocuments(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	return toDocuments(rows), nil
}

// Recent returns the most recently updated visible documents.
func (s *Service) Recent(ctx context.Context, userID int64, limit int) ([]models.Document, error) {
	rows, err := s.db.RecentDocuments(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return toDocuments(rows), nil
}

// Get returns one document and counts the view. Anonymous callers are
// admitted to public documents only.
func (s *Service) Get(ctx context.Context, userID, id int64) (*models.Document, error) {
	d, err := s.db.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.viewGate(ctx, d, userID); err != nil {
		return nil, err
	}
	if err := s.db.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	out := models.NewDocument(*d)
	out.Views++
	return &out, nil
}

// RenderHTML returns the document's content rendered as HTML. Rendering does
// not count a view.
func (s *Service) RenderHTML(ctx context.Context, userID, id int64) (string, error) {
	d, err := s.db.GetDocument(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.viewGate(ctx, d, userID); err != nil {
		return "", err
	}
	return markdown.Render(d.Content)
}

// Create inserts a new document authored by actor. Mentions run only on
// update and comment creation, not here.
func (s *Service) Create(ctx context.Context, actor *store.User, in CreateInput) (*models.Document, error) {
	if in.Visibility == "" {
		in.Visibility = access.VisibilityPrivate
	}
	d := &store.Document{
		Title:      in.Title,
		Content:    in.Content,
		Slug:       slug.Make(in.Title),
		AuthorID:   actor.ID,
		SpaceID:    in.SpaceID,
		Visibility: in.Visibility,
	}
	if err := s.db.CreateDocument(ctx, d); err != nil {
		return nil, err
	}
	created, err := s.db.GetDocument(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	out := models.NewDocument(*created)
	return &out, nil
}

// Update snapshots the current document as a new version, applies the update,
// and processes mentions when the content changed. Requires edit rights.
func (s *Service) Update(ctx context.Context, actor *store.User, id int64, in UpdateInput) (*models.Document, error) {
	d, err := s.db.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.editGate(ctx, d, actor.ID); err != nil {
		return nil, err
	}

	upd := store.DocumentUpdate{
		Title:      in.Title,
		Content:    in.Content,
		Visibility: in.Visibility,
		SpaceID:    in.SpaceID,
	}
	if in.Title != nil {
		sl := slug.Make(*in.Title)
		upd.Slug = &sl
	}
	if err := s.db.UpdateDocument(ctx, id, upd, actor.ID); err != nil {
		return nil, err
	}

	updated, err := s.db.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Content != nil {
		s.processMentions(ctx, actor, updated, *in.Content, 0)
	}
	out := models.NewDocument(*updated)
	return &out, nil
}

// Delete soft-deletes a document. Requires edit rights.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	d, err := s.db.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if err := s.editGate(ctx, d, userID); err != nil {
		return err
	}
	return s.db.SoftDeleteDocument(ctx, id)
}

// Permissions lists the explicit grants on a document. Requires edit rights.
func (s *Service) Permissions(ctx context.Context, userID, docID int64) ([]models.Permission, error) {
	d, err := s.db.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if err := s.editGate(ctx, d, userID); err != nil {
		return nil, err
	}
	rows, err := s.db.ListPermissions(ctx, docID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Permission, len(rows))
	for i, r := range rows {
		out[i] = models.NewPermission(r)
	}
	return out, nil
}

// Share grants or updates a permission on the document and notifies the
// grantee. Requires edit rights. Re-sharing the same pair overwrites the
// permission kind.
func (s *Service) Share(ctx context.Context, actor *store.User, docID, targetUserID int64, permission string) (*models.Permission, error) {
	d, err := s.db.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if err := s.editGate(ctx, d, actor.ID); err != nil {
		return nil, err
	}
	target, err := s.db.GetUser(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	if err := s.db.UpsertPermission(ctx, docID, targetUserID, permission, actor.ID); err != nil {
		return nil, err
	}
	if err := s.notif.Share(ctx, target.ID, actor.Username, docID); err != nil {
		s.log.Error("share notification", slog.Int64("document", docID), slog.String("error", err.Error()))
	}
	row, err := s.db.GetPermission(ctx, docID, targetUserID)
	if err != nil {
		return nil, err
	}
	out := models.NewPermission(store.PermissionWithUser{DocumentPermission: *row, User: *target})
	return &out, nil
}

// Unshare removes an explicit grant from the document. Requires edit rights.
func (s *Service) Unshare(ctx context.Context, userID, docID, targetUserID int64) error {
	d, err := s.db.GetDocument(ctx, docID)
	if err != nil {
		return err
	}
	if err := s.editGate(ctx, d, userID); err != nil {
		return err
	}
	return s.db.RemovePermission(ctx, docID, targetUserID)
}

// Versions lists the document's edit history, newest first. Requires view
// rights.
func (s *Service) Versions(ctx context.Context, userID, docID int64) ([]models.Version, error) {
	d, err := s.db.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if err := s.viewGate(ctx, d, userID); err != nil {
		return nil, err
	}
	rows, err := s.db.ListVersions(ctx, docID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Version, len(rows))
	for i, r := range rows {
		out[i] = models.NewVersion(r)
	}
	return out, nil
}

// Comments lists the document's comments, oldest first. Requires view rights.
func (s *Service) Comments(ctx context.Context, userID, docID int64) ([]models.Comment, error) {
	d, err := s.db.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if err := s.viewGate(ctx, d, userID); err != nil {
		return nil, err
	}
	rows, err := s.db.ListComments(ctx, docID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Comment, len(rows))
	for i, r := range rows {
		out[i] = models.NewComment(r)
	}
	return out, nil
}

// AddComment creates a comment by actor and processes its mentions. Requires
// view rights.
func (s *Service) AddComment(ctx context.Context, actor *store.User, docID int64, content string) (*models.Comment, error) {
	d, err := s.db.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if err := s.viewGate(ctx, d, actor.ID); err != nil {
		return nil, err
	}
	c := &store.Comment{
		DocumentID: docID,
		AuthorID:   actor.ID,
		Content:    content,
		Mentions:   mention.Extract(content),
	}
	if err := s.db.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	s.processMentions(ctx, actor, d, content, c.ID)
	out := models.NewComment(store.CommentWithAuthor{Comment: *c, Author: *actor})
	return &out, nil
}

// processMentions resolves each @username in text, grants view access to
// resolved users who cannot yet see the document, and notifies them. Unknown
// usernames are skipped silently; any other failure is logged and the rest of
// the mentions still run. The caller's operation never fails on a mention.
func (s *Service) processMentions(ctx context.Context, actor *store.User, d *store.DocumentWithRefs, text string, commentID int64) {
	seen := make(map[string]struct{})
	for _, username := range mention.Extract(text) {
		if _, dup := seen[username]; dup {
			continue
		}
		seen[username] = struct{}{}
		if username == actor.Username {
			continue
		}

		target, err := s.db.GetUserByUsername(ctx, username)
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err != nil {
			s.log.Error("resolve mention",
				slog.String("username", username), slog.String("error", err.Error()))
			continue
		}

		canView, err := s.eval.CanView(ctx, accessDoc(d), target.ID)
		if err != nil {
			s.log.Error("mention access check",
				slog.String("username", username), slog.String("error", err.Error()))
			continue
		}
		if !canView {
			if err := s.db.GrantViewIfAbsent(ctx, d.ID, target.ID, actor.ID); err != nil {
				s.log.Error("mention view grant",
					slog.String("username", username), slog.String("error", err.Error()))
				continue
			}
		}

		if err := s.notif.Mention(ctx, target.ID, actor.Username, d.Title, d.ID, commentID); err != nil {
			s.log.Error("mention notification",
				slog.String("username", username), slog.String("error", err.Error()))
		}
	}
}

func toDocuments(rows []store.DocumentWithRefs) []models.Document {
	out := make([]models.Document, len(rows))
	for i, r := range rows {
		out[i] = models.NewDocument(r)
	}
	return out
}
