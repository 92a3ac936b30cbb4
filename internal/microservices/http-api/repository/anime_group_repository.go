package repository

import (
	"context"
	"fmt"
	"time"

	"animehub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnimeGroupRepository interface {
	Create(ctx context.Context, group *models.AnimeGroup) error
	FindByID(ctx context.Context, id string) (*models.AnimeGroup, error)
	ListByUser(ctx context.Context, userID string) ([]models.AnimeGroup, error)
	ListPublicByUser(ctx context.Context, userID string) ([]models.AnimeGroup, error)
	AppendEntry(ctx context.Context, groupID string, entry *models.Entry) error
	ListFeed(ctx context.Context, limit int) ([]models.AnimeGroup, error)
	LatestByUsers(ctx context.Context, userIDs []string, publicOnly bool) (map[string]models.AnimeGroup, error)
	Count(ctx context.Context) (int64, error)
	CountCompleted(ctx context.Context) (int64, error)
}

type animeGroupRepository struct {
	db *gorm.DB
}

func NewAnimeGroupRepository(db *gorm.DB) AnimeGroupRepository {
	return &animeGroupRepository{db: db}
}

func orderedEntries(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func approvedEntries(db *gorm.DB) *gorm.DB {
	return db.Where("admin_approved = ?", true).Order("position ASC")
}

// Create inserts the group and its seed entries.
func (r *animeGroupRepository) Create(ctx context.Context, group *models.AnimeGroup) error {
	for i := range group.Entries {
		group.Entries[i].Position = i
	}
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return fmt.Errorf("create anime group: %w", err)
	}
	return nil
}

// FindByID loads a group with all of its entries in timeline order.
func (r *animeGroupRepository) FindByID(ctx context.Context, id string) (*models.AnimeGroup, error) {
	var group models.AnimeGroup
	err := r.db.WithContext(ctx).
		Preload("Entries", orderedEntries).
		First(&group, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// ListByUser returns every group a user owns, newest first, with all entries.
func (r *animeGroupRepository) ListByUser(ctx context.Context, userID string) ([]models.AnimeGroup, error) {
	var groups []models.AnimeGroup
	err := r.db.WithContext(ctx).
		Preload("Entries", orderedEntries).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("list groups by user: %w", err)
	}
	return groups, nil
}

// ListPublicByUser is the outside view of a user's groups: public groups only,
// approved entries only.
func (r *animeGroupRepository) ListPublicByUser(ctx context.Context, userID string) ([]models.AnimeGroup, error) {
	var groups []models.AnimeGroup
	err := r.db.WithContext(ctx).
		Preload("Entries", approvedEntries).
		Where("user_id = ? AND is_public = ?", userID, true).
		Order("created_at DESC").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("list public groups by user: %w", err)
	}
	return groups, nil
}

// AppendEntry adds entry at the end of the group's timeline. The group row is
// locked so concurrent appends get distinct positions. Visibility is left as is
// since a new entry is never approved.
func (r *animeGroupRepository) AppendEntry(ctx context.Context, groupID string, entry *models.Entry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockGroup(tx, groupID); err != nil {
			return err
		}

		var next int
		err := tx.Model(&models.Entry{}).
			Where("group_id = ?", groupID).
			Select("COALESCE(MAX(position), -1) + 1").
			Scan(&next).Error
		if err != nil {
			return fmt.Errorf("next position: %w", err)
		}

		entry.GroupID = groupID
		entry.Position = next
		entry.AdminApproved = false
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("append entry: %w", err)
		}

		return tx.Model(&models.AnimeGroup{}).
			Where("id = ?", groupID).
			UpdateColumn("updated_at", time.Now()).Error
	})
}

// ListFeed returns the newest public groups with their approved entries and owner.
func (r *animeGroupRepository) ListFeed(ctx context.Context, limit int) ([]models.AnimeGroup, error) {
	var groups []models.AnimeGroup
	err := r.db.WithContext(ctx).
		Preload("Entries", approvedEntries).
		Preload("User").
		Where("is_public = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("list feed: %w", err)
	}
	return groups, nil
}

// LatestByUsers maps each user id to that user's most recently created group.
// Users without a (public, when publicOnly) group are absent from the map.
func (r *animeGroupRepository) LatestByUsers(ctx context.Context, userIDs []string, publicOnly bool) (map[string]models.AnimeGroup, error) {
	latest := make(map[string]models.AnimeGroup, len(userIDs))
	if len(userIDs) == 0 {
		return latest, nil
	}

	q := r.db.WithContext(ctx).
		Select("id", "user_id", "anime_name", "cover_image", "created_at").
		Where("user_id IN ?", userIDs)
	if publicOnly {
		q = q.Where("is_public = ?", true)
	}

	var groups []models.AnimeGroup
	if err := q.Order("created_at DESC").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("latest groups by users: %w", err)
	}
	for _, g := range groups {
		if _, seen := latest[g.UserID]; !seen {
			latest[g.UserID] = g
		}
	}
	return latest, nil
}

func (r *animeGroupRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.AnimeGroup{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count groups: %w", err)
	}
	return n, nil
}

// CountCompleted counts groups whose last entry is a complete entry.
func (r *animeGroupRepository) CountCompleted(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.AnimeGroup{}).
		Where(`EXISTS (
			SELECT 1 FROM entries e
			WHERE e.group_id = anime_groups.id
			  AND e.type = ?
			  AND e.position = (SELECT MAX(l.position) FROM entries l WHERE l.group_id = anime_groups.id)
		)`, models.EntryTypeComplete).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count completed groups: %w", err)
	}
	return n, nil
}

// lockGroup takes a row lock on the group for the rest of tx. It returns
// gorm.ErrRecordNotFound when the group does not exist.
func lockGroup(tx *gorm.DB, groupID string) error {
	var group models.AnimeGroup
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&group, "id = ?", groupID).Error
}
