package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EntryTypeStart    = "start"
	EntryTypeUpdate   = "update"
	EntryTypeComplete = "complete"
)

// Entry is one timeline event of an AnimeGroup. ID is stable for the life of
// the entry. Position only orders entries within the group; the index shown to
// clients is the rank by position.
type Entry struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	GroupID       string    `gorm:"type:uuid;not null;index;uniqueIndex:idx_entry_group_position" json:"group_id"`
	Position      int       `gorm:"not null;uniqueIndex:idx_entry_group_position" json:"position"`
	Type          string    `gorm:"type:varchar(16);not null" json:"type"`
	Thoughts      string    `gorm:"type:text;not null" json:"thoughts"`
	Date          time.Time `gorm:"not null" json:"date"`
	StartTime     *string   `gorm:"type:varchar(5)" json:"start_time,omitempty"` // HH:MM, start entries
	EndTime       *string   `gorm:"type:varchar(5)" json:"end_time,omitempty"`   // HH:MM, complete entries
	AdminApproved bool      `gorm:"default:false;not null;index" json:"admin_approved"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (e *Entry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return
}

func (Entry) TableName() string {
	return "entries"
}
