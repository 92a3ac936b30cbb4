package repository

import (
	"context"
	"fmt"
	"strings"

	"animehub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) (tokenVersion int, err error)
	Search(ctx context.Context, term string) ([]models.User, error)
	DeleteWithGroups(ctx context.Context, id string) (groupsRemoved int64, err error)
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository in a GORM implementation
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translateDuplicate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	// return nil on miss so callers never mistake a zero-value user for a hit
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Update persists the editable profile fields of user.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).
		Model(user).
		Select("Username", "Email", "ProfileLinks", "UpdatedAt").
		Updates(user).Error
	return translateDuplicate(err)
}

// UpdatePassword stores a new hash and bumps the token version so tokens
// issued before the change stop authenticating.
func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) (int, error) {
	var version int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"password_hash": passwordHash,
				"token_version": gorm.Expr("token_version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.User{}).Where("id = ?", id).Pluck("token_version", &version).Error
	})
	if err != nil {
		return 0, err
	}
	return version, nil
}

// Search lists users ordered by username, optionally filtered by a
// case-insensitive substring of username or email.
func (r *userRepository) Search(ctx context.Context, term string) ([]models.User, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if term = strings.TrimSpace(term); term != "" {
		like := "%" + strings.ToLower(escapeLike(term)) + "%"
		q = q.Where(`LOWER(username) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, like, like)
	}

	var users []models.User
	if err := q.Order("username ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

// DeleteWithGroups removes a non-admin user together with every group and
// entry they own in one transaction.
func (r *userRepository) DeleteWithGroups(ctx context.Context, id string) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", id).Error; err != nil {
			return err
		}
		if user.IsAdmin() {
			return ErrProtectedUser
		}

		owned := tx.Model(&models.AnimeGroup{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("group_id IN (?)", owned).Delete(&models.Entry{}).Error; err != nil {
			return fmt.Errorf("delete entries: %w", err)
		}

		res := tx.Where("user_id = ?", id).Delete(&models.AnimeGroup{})
		if res.Error != nil {
			return fmt.Errorf("delete groups: %w", res.Error)
		}
		removed = res.RowsAffected

		if err := tx.Delete(&models.User{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
