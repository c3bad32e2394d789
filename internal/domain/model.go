package domain

import (
	"time"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	Username       string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash   string    `gorm:"type:varchar(255);not null"`
	ImageURL       string    `gorm:"type:varchar(255)"`
	HeaderImageURL string    `gorm:"type:varchar(255)"`
	Bio            string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }

// ToDomain converts UserModel to a domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:             m.ID,
		Username:       m.Username,
		Email:          m.Email,
		PasswordHash:   m.PasswordHash,
		ImageURL:       m.ImageURL,
		HeaderImageURL: m.HeaderImageURL,
		Bio:            m.Bio,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// UserToModel converts a domain User to UserModel.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		ImageURL:       u.ImageURL,
		HeaderImageURL: u.HeaderImageURL,
		Bio:            u.Bio,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// WarbleModel is the GORM model for the warbles table.
type WarbleModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	AuthorID  uint      `gorm:"index;not null"`
	Text      string    `gorm:"type:varchar(140);not null"`
	Timestamp time.Time `gorm:"index;not null"`
}

func (WarbleModel) TableName() string { return "warbles" }

// ToDomain converts WarbleModel to a domain Warble. The author name is not
// stored on the row; list queries fill it in via a join.
func (m *WarbleModel) ToDomain() *Warble {
	return &Warble{
		ID:        m.ID,
		AuthorID:  m.AuthorID,
		Text:      m.Text,
		Timestamp: m.Timestamp,
	}
}

// FollowModel is the GORM model for the follows table. One row per directed
// edge; the composite unique index makes duplicate follows impossible.
type FollowModel struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	FollowerID uint      `gorm:"not null;uniqueIndex:uidx_follow_pair"`
	FollowedID uint      `gorm:"not null;uniqueIndex:uidx_follow_pair"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (FollowModel) TableName() string { return "follows" }

// LikeModel is the GORM model for the likes table.
type LikeModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UserID    uint      `gorm:"not null;uniqueIndex:uidx_like_pair"`
	WarbleID  uint      `gorm:"not null;uniqueIndex:uidx_like_pair"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (LikeModel) TableName() string { return "likes" }
