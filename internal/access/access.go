// Package access computes view and edit rights for (document, user) pairs.
//
// The evaluator operates on the minimal document tuple only; join-shaped
// projections from the storage layer never reach it.
package access

import "context"

// Document visibility tiers.
const (
	VisibilityPrivate = "private"
	VisibilityPublic  = "public"
	VisibilitySpace   = "space"
)

// Explicit permission kinds.
const (
	PermissionView = "view"
	PermissionEdit = "edit"
)

// Doc is the minimal slice of document state an access decision needs.
type Doc struct {
	ID         int64
	AuthorID   int64
	Visibility string
	SpaceID    int64 // 0 when the document belongs to no space
}

// PermissionSource looks up the explicit permission row for a
// (document, user) pair. ok is false when no row exists.
type PermissionSource interface {
	Permission(ctx context.Context, documentID, userID int64) (permission string, ok bool, err error)
}

// MemberSource reports space membership.
type MemberSource interface {
	IsSpaceMember(ctx context.Context, spaceID, userID int64) (bool, error)
}

// Evaluator resolves view and edit rights from visibility, authorship,
// explicit permissions, and space membership.
type Evaluator struct {
	perms   PermissionSource
	members MemberSource
}

// NewEvaluator creates an Evaluator backed by the given sources.
func NewEvaluator(perms PermissionSource, members MemberSource) *Evaluator {
	return &Evaluator{perms: perms, members: members}
}

// CanView reports whether userID may read the document. userID 0 denotes an
// unauthenticated caller, which only public documents admit. An explicit
// permission row of either kind grants view access.
func (e *Evaluator) CanView(ctx context.Context, doc Doc, userID int64) (bool, error) {
	if doc.Visibility == VisibilityPublic {
		return true, nil
	}
	if userID == 0 {
		return false, nil
	}
	if doc.AuthorID == userID {
		return true, nil
	}
	_, ok, err := e.perms.Permission(ctx, doc.ID, userID)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	if doc.Visibility == VisibilitySpace && doc.SpaceID != 0 {
		return e.members.IsSpaceMember(ctx, doc.SpaceID, userID)
	}
	return false, nil
}

// CanEdit reports whether userID may modify the document. Only authorship or
// an explicit edit permission qualifies; space membership grants nothing
// here, the admin role included.
func (e *Evaluator) CanEdit(ctx context.Context, doc Doc, userID int64) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	if doc.AuthorID == userID {
		return true, nil
	}
	perm, ok, err := e.perms.Permission(ctx, doc.ID, userID)
	if err != nil {
		return false, err
	}
	return ok && perm == PermissionEdit, nil
}
