package domain

import (
	"time"
)

// Defaults applied when a signup or profile edit leaves the image fields empty.
const (
	DefaultImageURL       = "/static/images/default-pic.png"
	DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"
)

// User represents a user entity.
type User struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	ImageURL       string    `json:"image_url"`
	HeaderImageURL string    `json:"header_image_url"`
	Bio            string    `json:"bio,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SignupRequest represents a signup request.
type SignupRequest struct {
	Username string `form:"username" json:"username" binding:"required,max=50"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,min=6"`
	ImageURL string `form:"image_url" json:"image_url" binding:"omitempty,url"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required,min=6"`
}

// UpdateProfileRequest represents a profile edit. Password is the user's
// current password; it gates the whole update and is never changed here.
type UpdateProfileRequest struct {
	Username       string `form:"username" json:"username" binding:"required,max=50"`
	Email          string `form:"email" json:"email" binding:"required,email"`
	ImageURL       string `form:"image_url" json:"image_url" binding:"omitempty,url"`
	HeaderImageURL string `form:"header_image_url" json:"header_image_url"`
	Bio            string `form:"bio" json:"bio"`
	Password       string `form:"password" json:"password" binding:"required,min=6"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	ImageURL       string    `json:"image_url"`
	HeaderImageURL string    `json:"header_image_url"`
	Bio            string    `json:"bio,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProfileResponse is a user plus the counts shown on the profile page.
type ProfileResponse struct {
	User      UserResponse `json:"user"`
	Followers int64        `json:"followers"`
	Following int64        `json:"following"`
}

// ToResponse converts User to UserResponse.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		ImageURL:       u.ImageURL,
		HeaderImageURL: u.HeaderImageURL,
		Bio:            u.Bio,
		CreatedAt:      u.CreatedAt,
	}
}

// UsersToResponses converts a user list for API responses.
func UsersToResponses(users []User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToResponse())
	}
	return out
}
