package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"animehub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// EntryRef addresses one entry of a group, by stable id when ID is set and by
// current timeline index otherwise.
type EntryRef struct {
	ID    string
	Index int
}

// PendingEntryRow is one unapproved entry joined with its group and owner.
type PendingEntryRow struct {
	EntryID    string
	GroupID    string
	EntryIndex int
	Type       string
	Thoughts   string
	Date       time.Time
	StartTime  *string
	EndTime    *string
	CreatedAt  time.Time
	AnimeName  string
	UserID     string
	Username   string
}

// ModerationRepository holds the entry approval state machine. Every mutation
// locks the owning group and recomputes its visibility before committing.
type ModerationRepository interface {
	ListPending(ctx context.Context) ([]PendingEntryRow, error)
	CountPending(ctx context.Context) (int64, error)
	Approve(ctx context.Context, groupID string, ref EntryRef) (*models.Entry, error)
	Reject(ctx context.Context, groupID string, ref EntryRef) (entry *models.Entry, groupDeleted bool, err error)
}

type moderationRepository struct {
	db *gorm.DB
}

func NewModerationRepository(db *gorm.DB) ModerationRepository {
	return &moderationRepository{db: db}
}

const pendingEntriesQuery = `
SELECT e.id AS entry_id,
       e.group_id,
       (SELECT COUNT(*) FROM entries p WHERE p.group_id = e.group_id AND p.position < e.position) AS entry_index,
       e.type,
       e.thoughts,
       e.date,
       e.start_time,
       e.end_time,
       e.created_at,
       g.anime_name,
       g.user_id,
       COALESCE(u.username, 'Unknown') AS username
FROM entries e
JOIN anime_groups g ON g.id = e.group_id
LEFT JOIN users u ON u.id = g.user_id
WHERE e.admin_approved = ?
ORDER BY g.created_at ASC, e.position ASC`

// ListPending returns the review queue: oldest group first, then timeline order.
func (r *moderationRepository) ListPending(ctx context.Context) ([]PendingEntryRow, error) {
	var rows []PendingEntryRow
	if err := r.db.WithContext(ctx).Raw(pendingEntriesQuery, false).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list pending entries: %w", err)
	}
	return rows, nil
}

func (r *moderationRepository) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Entry{}).
		Where("admin_approved = ?", false).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count pending entries: %w", err)
	}
	return n, nil
}

// Approve marks the referenced entry approved and makes the group public.
func (r *moderationRepository) Approve(ctx context.Context, groupID string, ref EntryRef) (*models.Entry, error) {
	var entry *models.Entry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockGroup(tx, groupID); err != nil {
			return err
		}

		var err error
		if entry, err = resolveEntry(tx, groupID, ref); err != nil {
			return err
		}

		if err := tx.Model(&models.Entry{}).
			Where("id = ?", entry.ID).
			UpdateColumn("admin_approved", true).Error; err != nil {
			return fmt.Errorf("approve entry: %w", err)
		}
		entry.AdminApproved = true

		return syncVisibility(tx, groupID)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Reject deletes the referenced entry. A group left without entries is
// deleted too; otherwise its visibility is recomputed from what remains.
func (r *moderationRepository) Reject(ctx context.Context, groupID string, ref EntryRef) (*models.Entry, bool, error) {
	var (
		entry   *models.Entry
		deleted bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockGroup(tx, groupID); err != nil {
			return err
		}

		var err error
		if entry, err = resolveEntry(tx, groupID, ref); err != nil {
			return err
		}

		if err := tx.Delete(&models.Entry{}, "id = ?", entry.ID).Error; err != nil {
			return fmt.Errorf("reject entry: %w", err)
		}

		var remaining int64
		if err := tx.Model(&models.Entry{}).Where("group_id = ?", groupID).Count(&remaining).Error; err != nil {
			return fmt.Errorf("count remaining entries: %w", err)
		}
		if remaining == 0 {
			deleted = true
			if err := tx.Delete(&models.AnimeGroup{}, "id = ?", groupID).Error; err != nil {
				return fmt.Errorf("delete empty group: %w", err)
			}
			return nil
		}

		return syncVisibility(tx, groupID)
	})
	if err != nil {
		return nil, false, err
	}
	return entry, deleted, nil
}

// resolveEntry finds the referenced entry inside tx. The index is the rank by
// position, so it always reflects the timeline as it is under the lock.
func resolveEntry(tx *gorm.DB, groupID string, ref EntryRef) (*models.Entry, error) {
	var entry models.Entry

	if ref.ID != "" {
		err := tx.Where("id = ? AND group_id = ?", ref.ID, groupID).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("load entry: %w", err)
		}
		return &entry, nil
	}

	if ref.Index < 0 {
		return nil, ErrEntryNotFound
	}
	var found []models.Entry
	err := tx.Where("group_id = ?", groupID).
		Order("position ASC").
		Offset(ref.Index).
		Limit(1).
		Find(&found).Error
	if err != nil {
		return nil, fmt.Errorf("load entry at index: %w", err)
	}
	if len(found) == 0 {
		return nil, ErrEntryNotFound
	}
	return &found[0], nil
}

// syncVisibility is the only writer of anime_groups.is_public: a group is
// public exactly when at least one of its entries is approved.
func syncVisibility(tx *gorm.DB, groupID string) error {
	err := tx.Model(&models.AnimeGroup{}).
		Where("id = ?", groupID).
		UpdateColumns(map[string]any{
			"is_public": gorm.Expr(
				"EXISTS (SELECT 1 FROM entries WHERE entries.group_id = anime_groups.id AND entries.admin_approved = ?)",
				true,
			),
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("sync group visibility: %w", err)
	}
	return nil
}
