package repositories

import (
	"context"

	"github.com/anonto42/yatube/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows a post listing. Zero fields are ignored.
type PostFilter struct {
	AuthorID uint
	GroupID  uint
	// FollowerID keeps only posts whose author is followed by this user.
	FollowerID uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id uint) error
	CountPosts(ctx context.Context, filter PostFilter) (int64, error)
	ListPosts(ctx context.Context, filter PostFilter, offset, limit int) ([]models.Post, error)
}

// PostgresPostRepository implements PostRepository with GORM
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost inserts the post; PubDate is set by the database layer.
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

// GetPostByID loads a post with its author and group
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Preload("Author").Preload("Group").First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost writes the editable fields only: author and pub_date never change.
func (r *PostgresPostRepository) UpdatePost(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(post).
		Select("text", "group_id", "image").
		Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeletePost removes a post; its comments go with it.
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresPostRepository) CountPosts(ctx context.Context, filter PostFilter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Count(&count).Error
	return count, err
}

// ListPosts returns one window of the filtered posts, newest first.
func (r *PostgresPostRepository) ListPosts(ctx context.Context, filter PostFilter, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.filtered(ctx, filter).
		Preload("Author").
		Preload("Group").
		Order("pub_date DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *PostgresPostRepository) filtered(ctx context.Context, filter PostFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if filter.AuthorID != 0 {
		q = q.Where("author_id = ?", filter.AuthorID)
	}
	if filter.GroupID != 0 {
		q = q.Where("group_id = ?", filter.GroupID)
	}
	if filter.FollowerID != 0 {
		q = q.Where("author_id IN (?)",
			r.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", filter.FollowerID),
		)
	}
	return q
}
