package store

import "time"

// User is a row in the users table.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Space is a row in the spaces table.
type Space struct {
	ID          int64
	Name        string
	Description string
	Slug        string
	OwnerID     int64
	IsPrivate   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SpaceMember is a row in the space_members table.
type SpaceMember struct {
	ID        int64
	SpaceID   int64
	UserID    int64
	Role      string
	CreatedAt time.Time
}

// SpaceMemberWithUser is a membership row with the member's user joined.
type SpaceMemberWithUser struct {
	SpaceMember
	User User
}

// Document is a row in the documents table. SpaceID 0 means the document
// belongs to no space.
type Document struct {
	ID         int64
	Title      string
	Content    string
	Slug       string
	AuthorID   int64
	SpaceID    int64
	Visibility string
	IsDeleted  bool
	Views      int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DocumentWithRefs is the eager read projection: a document with its author
// and (when set) space joined. It exists for response assembly only and is
// never fed to access decisions.
type DocumentWithRefs struct {
	Document
	Author User
	Space  *Space
}

// DocumentPermission is a row in the document_permissions table.
type DocumentPermission struct {
	ID          int64
	DocumentID  int64
	UserID      int64
	Permission  string
	GrantedByID int64
	CreatedAt   time.Time
}

// PermissionWithUser is a permission row with the grantee joined.
type PermissionWithUser struct {
	DocumentPermission
	User User
}

// Comment is a row in the comments table. Mentions holds the usernames
// captured when the comment was created; they are never re-derived.
type Comment struct {
	ID         int64
	DocumentID int64
	AuthorID   int64
	Content    string
	Mentions   []string
	IsDeleted  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CommentWithAuthor is a comment row with its author joined.
type CommentWithAuthor struct {
	Comment
	Author User
}

// DocumentVersion is an immutable pre-update snapshot of a document.
type DocumentVersion struct {
	ID         int64
	DocumentID int64
	Title      string
	Content    string
	AuthorID   int64
	Version    int64
	CreatedAt  time.Time
}

// VersionWithAuthor is a version row with the editing author joined.
type VersionWithAuthor struct {
	DocumentVersion
	Author User
}

// Notification is a row in the notifications table. Data is an opaque JSON
// payload.
type Notification struct {
	ID        int64
	UserID    int64
	Type      string
	Title     string
	Message   string
	Data      string
	IsRead    bool
	CreatedAt time.Time
}
