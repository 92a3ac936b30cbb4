package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusWatching  = "watching"
	StatusCompleted = "completed"
)

// AnimeLink is an external watch link attached to a group.
type AnimeLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// AnimeGroup is one show tracked by one user together with its entry timeline.
// IsPublic is a stored projection of "some entry is approved"; only the
// repository's visibility sync writes it.
type AnimeGroup struct {
	ID            string      `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string      `gorm:"type:uuid;not null;index" json:"user_id"`
	AnimeName     string      `gorm:"not null" json:"anime_name"`
	Genre         string      `gorm:"not null" json:"genre"`
	TotalEpisodes int         `gorm:"not null" json:"total_episodes"`
	Links         []AnimeLink `gorm:"serializer:json;type:text" json:"links"`
	CoverImage    *string     `gorm:"type:text" json:"cover_image,omitempty"`
	IsPublic      bool        `gorm:"default:false;not null;index" json:"is_public"`
	CreatedAt     time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	// Associations
	Entries []Entry `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE;" json:"entries"`
	User    *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (g *AnimeGroup) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return
}

// LastEntry returns the newest entry in timeline order, or nil.
// Entries must be loaded ordered by position.
func (g *AnimeGroup) LastEntry() *Entry {
	if len(g.Entries) == 0 {
		return nil
	}
	return &g.Entries[len(g.Entries)-1]
}

// Status is derived from the type of the last entry.
func (g *AnimeGroup) Status() string {
	if last := g.LastEntry(); last != nil && last.Type == EntryTypeComplete {
		return StatusCompleted
	}
	return StatusWatching
}

func (AnimeGroup) TableName() string {
	return "anime_groups"
}
