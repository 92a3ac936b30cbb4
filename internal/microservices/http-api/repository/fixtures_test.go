package repository

import (
	"context"
	"testing"
	"time"

	"animehub/internal/microservices/http-api/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hash",
		Role:     role,
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

// seedGroup creates a group owned by userID whose entries have the given
// approval flags, in order. The first entry is the start entry.
func seedGroup(t *testing.T, db *gorm.DB, userID, name string, createdAt time.Time, approved ...bool) *models.AnimeGroup {
	t.Helper()
	group := &models.AnimeGroup{
		UserID:        userID,
		AnimeName:     name,
		Genre:         "Action",
		TotalEpisodes: 12,
		Links:         []models.AnimeLink{{Label: "stream", URL: "https://example.com/watch"}},
		CreatedAt:     createdAt,
	}
	for i := range approved {
		typ := models.EntryTypeUpdate
		if i == 0 {
			typ = models.EntryTypeStart
		}
		group.Entries = append(group.Entries, models.Entry{
			Type:     typ,
			Thoughts: "thoughts for entry",
			Date:     createdAt,
		})
	}
	require.NoError(t, NewAnimeGroupRepository(db).Create(context.Background(), group))

	// flags are written directly so fixtures can start in any state
	for i, ok := range approved {
		if ok {
			require.NoError(t, db.Model(&models.Entry{}).Where("id = ?", group.Entries[i].ID).
				UpdateColumn("admin_approved", true).Error)
		}
	}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return syncVisibility(tx, group.ID) }))
	return reloadGroup(t, db, group.ID)
}

func reloadGroup(t *testing.T, db *gorm.DB, id string) *models.AnimeGroup {
	t.Helper()
	group, err := NewAnimeGroupRepository(db).FindByID(context.Background(), id)
	require.NoError(t, err)
	return group
}
