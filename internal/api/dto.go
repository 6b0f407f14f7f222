package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/calloway/vellum/internal/access"
)

// RegisterRequest is the request body for creating an account.
type RegisterRequest struct {
	Username  string `json:"username" example:"alice"`
	Email     string `json:"email" example:"alice@example.com"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Validate implements request validation.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50), is.Alphanumeric),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 128)),
	)
}

// LoginRequest is the request body for logging in.
type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password"`
}

// Validate implements request validation.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// CreateDocumentRequest is the request body for creating a document.
type CreateDocumentRequest struct {
	Title      string `json:"title" example:"Release Plan"`
	Content    string `json:"content"`
	Visibility string `json:"visibility,omitempty" example:"private"`
	SpaceID    int64  `json:"spaceId,omitempty"`
}

// Validate implements request validation.
func (r CreateDocumentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Visibility,
			validation.In(access.VisibilityPrivate, access.VisibilityPublic, access.VisibilitySpace)),
		validation.Field(&r.SpaceID, validation.Min(int64(0))),
	)
}

// UpdateDocumentRequest is the request body for updating a document. Absent
// fields are left unchanged.
type UpdateDocumentRequest struct {
	Title      *string `json:"title,omitempty"`
	Content    *string `json:"content,omitempty"`
	Visibility *string `json:"visibility,omitempty"`
	SpaceID    *int64  `json:"spaceId,omitempty"`
}

// Validate implements request validation.
func (r UpdateDocumentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(1, 200)),
		validation.Field(&r.Visibility,
			validation.In(access.VisibilityPrivate, access.VisibilityPublic, access.VisibilitySpace)),
	)
}

// CreateCommentRequest is the request body for commenting on a document.
type CreateCommentRequest struct {
	Content string `json:"content" example:"looks good @bob"`
}

// Validate implements request validation.
func (r CreateCommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required, validation.Length(1, 10000)),
	)
}

// SharePermissionRequest is the request body for granting document access.
type SharePermissionRequest struct {
	UserID     int64  `json:"userId"`
	Permission string `json:"permission" example:"view"`
}

// Validate implements request validation.
func (r SharePermissionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.Permission, validation.Required,
			validation.In(access.PermissionView, access.PermissionEdit)),
	)
}

// CreateSpaceRequest is the request body for creating a space.
type CreateSpaceRequest struct {
	Name        string `json:"name" example:"Platform Team"`
	Description string `json:"description,omitempty"`
	IsPrivate   bool   `json:"isPrivate,omitempty"`
}

// Validate implements request validation.
func (r CreateSpaceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
	)
}

// AddMemberRequest is the request body for adding a space member.
type AddMemberRequest struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role,omitempty" example:"member"`
}

// Validate implements request validation.
func (r AddMemberRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.Role, validation.In("member", "admin")),
	)
}
