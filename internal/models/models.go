// Package models defines the API-facing representations for Vellum.
package models

import (
	"time"

	"github.com/calloway/vellum/internal/store"
)

// UserRef identifies a user in responses. It never carries credentials.
type UserRef struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// SpaceRef identifies a space embedded in a document response.
type SpaceRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Document is the full document representation.
type Document struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Slug       string    `json:"slug"`
	AuthorID   int64     `json:"authorId"`
	SpaceID    *int64    `json:"spaceId"`
	Visibility string    `json:"visibility"`
	Views      int64     `json:"views"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Author     UserRef   `json:"author"`
	Space      *SpaceRef `json:"space,omitempty"`
}

// Comment is a document comment with its author.
type Comment struct {
	ID         int64     `json:"id"`
	DocumentID int64     `json:"documentId"`
	AuthorID   int64     `json:"authorId"`
	Content    string    `json:"content"`
	Mentions   []string  `json:"mentions"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Author     UserRef   `json:"author"`
}

// Version is an entry in a document's edit history.
type Version struct {
	ID         int64     `json:"id"`
	DocumentID int64     `json:"documentId"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorID   int64     `json:"authorId"`
	Version    int64     `json:"version"`
	CreatedAt  time.Time `json:"createdAt"`
	Author     UserRef   `json:"author"`
}

// Permission is an explicit grant on a document.
type Permission struct {
	ID          int64     `json:"id"`
	DocumentID  int64     `json:"documentId"`
	UserID      int64     `json:"userId"`
	Permission  string    `json:"permission"`
	GrantedByID int64     `json:"grantedById"`
	CreatedAt   time.Time `json:"createdAt"`
	User        UserRef   `json:"user"`
}

// Space is the full space representation.
type Space struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	OwnerID     int64     `json:"ownerId"`
	IsPrivate   bool      `json:"isPrivate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SpaceMember is a space membership with the member's user.
type SpaceMember struct {
	ID        int64     `json:"id"`
	SpaceID   int64     `json:"spaceId"`
	UserID    int64     `json:"userId"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	User      UserRef   `json:"user"`
}

// NewUserRef strips a user row down to its public representation.
func NewUserRef(u store.User) UserRef {
	return UserRef{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// NewDocument builds the response shape from a joined row.
func NewDocument(d store.DocumentWithRefs) Document {
	out := Document{
		ID:         d.ID,
		Title:      d.Title,
		Content:    d.Content,
		Slug:       d.Slug,
		AuthorID:   d.AuthorID,
		Visibility: d.Visibility,
		Views:      d.Views,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
		Author:     NewUserRef(d.Author),
	}
	if d.SpaceID != 0 {
		id := d.SpaceID
		out.SpaceID = &id
	}
	if d.Space != nil {
		out.Space = &SpaceRef{ID: d.Space.ID, Name: d.Space.Name, Slug: d.Space.Slug}
	}
	return out
}

// NewComment builds the response shape from a joined row.
func NewComment(c store.CommentWithAuthor) Comment {
	mentions := c.Mentions
	if mentions == nil {
		mentions = []string{}
	}
	return Comment{
		ID:         c.ID,
		DocumentID: c.DocumentID,
		AuthorID:   c.AuthorID,
		Content:    c.Content,
		Mentions:   mentions,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		Author:     NewUserRef(c.Author),
	}
}

// NewVersion builds the response shape from a joined row.
func NewVersion(v store.VersionWithAuthor) Version {
	return Version{
		ID:         v.ID,
		DocumentID: v.DocumentID,
		Title:      v.Title,
		Content:    v.Content,
		AuthorID:   v.AuthorID,
		Version:    v.Version,
		CreatedAt:  v.CreatedAt,
		Author:     NewUserRef(v.Author),
	}
}

// NewPermission builds the response shape from a joined row.
func NewPermission(p store.PermissionWithUser) Permission {
	return Permission{
		ID:          p.ID,
		DocumentID:  p.DocumentID,
		UserID:      p.UserID,
		Permission:  p.Permission,
		GrantedByID: p.GrantedByID,
		CreatedAt:   p.CreatedAt,
		User:        NewUserRef(p.User),
	}
}

// NewSpace builds the response shape from a row.
func NewSpace(s store.Space) Space {
	return Space{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Slug:        s.Slug,
		OwnerID:     s.OwnerID,
		IsPrivate:   s.IsPrivate,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// NewSpaceMember builds the response shape from a joined row.
func NewSpaceMember(m store.SpaceMemberWithUser) SpaceMember {
	return SpaceMember{
		ID:        m.ID,
		SpaceID:   m.SpaceID,
		UserID:    m.UserID,
		Role:      m.Role,
		CreatedAt: m.CreatedAt,
		User:      NewUserRef(m.User),
	}
}
