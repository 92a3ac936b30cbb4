package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin  = "admin"
	RoleNormal = "normal"
)

// ProfileLink is one named external site on a user's profile.
type ProfileLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ProfileLinks groups the two link lists shown on a profile.
type ProfileLinks struct {
	AnimeSites []ProfileLink `json:"anime_sites"`
	MangaSites []ProfileLink `json:"manga_sites"`
}

// Normalized never returns nil slices so JSON always renders [] instead of null.
func (p ProfileLinks) Normalized() ProfileLinks {
	if p.AnimeSites == nil {
		p.AnimeSites = []ProfileLink{}
	}
	if p.MangaSites == nil {
		p.MangaSites = []ProfileLink{}
	}
	return p
}

type User struct {
	ID           string       `gorm:"primaryKey;type:uuid" json:"id"`
	Username     string       `gorm:"uniqueIndex;not null" json:"username"`
	Email        string       `gorm:"uniqueIndex;not null" json:"email"`
	Password     string       `gorm:"column:password_hash;not null" json:"-"` // Not show in JSON
	Role         string       `gorm:"default:'normal';not null" json:"role"`  // "admin" or "normal"
	TokenVersion int          `gorm:"default:0;not null" json:"-"`            // bumped on password change
	ProfileLinks ProfileLinks `gorm:"serializer:json;type:text" json:"profile_links"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return
}

func (user *User) IsAdmin() bool {
	return user.Role == RoleAdmin
}

func (User) TableName() string {
	return "users"
}
