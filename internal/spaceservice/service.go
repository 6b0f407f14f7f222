// Package spaceservice manages spaces and their membership rosters.
package spaceservice

import (
	"context"

	"github.com/calloway/vellum/internal/apperr"
	"github.com/calloway/vellum/internal/models"
	"github.com/calloway/vellum/internal/slug"
	"github.com/calloway/vellum/internal/store"
)

// Service coordinates space operations.
type Service struct {
	db *store.DB
}

// NewService creates a space service.
func NewService(db *store.DB) *Service {
	return &Service{db: db}
}

// CreateInput carries the fields of a space creation.
type CreateInput struct {
	Name        string
	Description string
	IsPrivate   bool
}

// List returns the spaces the user owns or belongs to.
func (s *Service) List(ctx context.Context, userID int64) ([]models.Space, error) {
	rows, err := s.db.ListSpaces(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Space, len(rows))
	for i, r := range rows {
		out[i] = models.NewSpace(r)
	}
	return out, nil
}

// Create inserts a new space owned by the caller. The slug is derived from
// the name; a taken slug yields apperr.ErrAlreadyExists.
func (s *Service) Create(ctx context.Context, ownerID int64, in CreateInput) (*models.Space, error) {
	sp := &store.Space{
		Name:        in.Name,
		Description: in.Description,
		Slug:        slug.Make(in.Name),
		OwnerID:     ownerID,
		IsPrivate:   in.IsPrivate,
	}
	if err := s.db.CreateSpace(ctx, sp); err != nil {
		return nil, err
	}
	out := models.NewSpace(*sp)
	return &out, nil
}

// Get returns one space. Only the owner and members may read it.
func (s *Service) Get(ctx context.Context, userID, spaceID int64) (*models.Space, error) {
	sp, err := s.memberGate(ctx, userID, spaceID)
	if err != nil {
		return nil, err
	}
	out := models.NewSpace(*sp)
	return &out, nil
}

// Members returns the space's roster. Only the owner and members may read it.
func (s *Service) Members(ctx context.Context, userID, spaceID int64) ([]models.SpaceMember, error) {
	if _, err := s.memberGate(ctx, userID, spaceID); err != nil {
		return nil, err
	}
	rows, err := s.db.ListSpaceMembers(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	out := make([]models.SpaceMember, len(rows))
	for i, r := range rows {
		out[i] = models.NewSpaceMember(r)
	}
	return out, nil
}

// AddMember adds a user to the space. Only the owner may manage membership.
// Adding an existing member yields apperr.ErrAlreadyExists.
func (s *Service) AddMember(ctx context.Context, actorID, spaceID, userID int64, role string) (*models.SpaceMember, error) {
	if err := s.ownerGate(ctx, actorID, spaceID); err != nil {
		return nil, err
	}
	u, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = "member"
	}
	m := &store.SpaceMember{SpaceID: spaceID, UserID: userID, Role: role}
	if err := s.db.AddSpaceMember(ctx, m); err != nil {
		return nil, err
	}
	out := models.NewSpaceMember(store.SpaceMemberWithUser{SpaceMember: *m, User: *u})
	return &out, nil
}

// RemoveMember removes a user from the space. Only the owner may manage
// membership.
func (s *Service) RemoveMember(ctx context.Context, actorID, spaceID, userID int64) error {
	if err := s.ownerGate(ctx, actorID, spaceID); err != nil {
		return err
	}
	return s.db.RemoveSpaceMember(ctx, spaceID, userID)
}

func (s *Service) ownerGate(ctx context.Context, actorID, spaceID int64) error {
	sp, err := s.db.GetSpace(ctx, spaceID)
	if err != nil {
		return err
	}
	if sp.OwnerID != actorID {
		return apperr.ErrForbidden
	}
	return nil
}

func (s *Service) memberGate(ctx context.Context, userID, spaceID int64) (*store.Space, error) {
	sp, err := s.db.GetSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if sp.OwnerID == userID {
		return sp, nil
	}
	ok, err := s.db.IsSpaceMember(ctx, spaceID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrForbidden
	}
	return sp, nil
}
