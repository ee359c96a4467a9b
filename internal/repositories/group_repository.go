package repositories

import (
	"context"

	"github.com/anonto42/yatube/backend/internal/models"
	"github.com/anonto42/yatube/backend/validators"
	"gorm.io/gorm"
)

// GroupRepository defines the interface for group data operations
type GroupRepository interface {
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroupByID(ctx context.Context, id uint) (*models.Group, error)
	GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error)
	GetGroups(ctx context.Context) ([]models.Group, error)
}

type PostgresGroupRepository struct {
	db       *gorm.DB
	validate *validators.CustomValidator
}

func NewPostgresGroupRepository(db *gorm.DB) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db, validate: validators.NewValidator()}
}

// CreateGroup validates title and slug before inserting. A taken slug
// surfaces as gorm.ErrDuplicatedKey.
func (r *PostgresGroupRepository) CreateGroup(ctx context.Context, group *models.Group) error {
	if err := r.validate.Validate(group); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *PostgresGroupRepository) GetGroupByID(ctx context.Context, id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *PostgresGroupRepository) GetGroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// GetGroups lists every group by title, for the post form's select box.
func (r *PostgresGroupRepository) GetGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.WithContext(ctx).Order("title ASC").Find(&groups).Error
	return groups, err
}
