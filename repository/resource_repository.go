package repository

import (
	"strings"

	"resourcehub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultTopN = 5

type ResourceRepository interface {
	BaseRepository[models.Resource]
	CreateWithTags(resource *models.Resource, tags []models.Tag) error
	GetByIDWithRelations(id uuid.UUID) (*models.Resource, error)
	Search(subject, semester, search string) ([]*models.Resource, error)
	TopRated(n int) ([]*models.Resource, error)
	MostDownloaded(n int) ([]*models.Resource, error)
	IncrementDownload(id uuid.UUID) error
	GetTags(id uuid.UUID) ([]models.Tag, error)
}

type ResourceRepositoryImpl struct {
	*BaseRepositoryImpl[models.Resource]
}

func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &ResourceRepositoryImpl{
		BaseRepositoryImpl: NewBaseRepository[models.Resource](db),
	}
}

// CreateWithTags 在一个事务里写入资源行并挂上标签关联
func (r *ResourceRepositoryImpl) CreateWithTags(resource *models.Resource, tags []models.Tag) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(resource).Error; err != nil {
			return err
		}
		if len(tags) == 0 {
			return nil
		}
		return tx.Model(resource).Association("Tags").Replace(tags)
	})
}

func (r *ResourceRepositoryImpl) GetByIDWithRelations(id uuid.UUID) (*models.Resource, error) {
	var resource models.Resource
	err := r.db.Preload("Tags").Preload("Uploader").First(&resource, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

// Search 过滤条件取交集；subject/semester 精确匹配，search 大小写不敏感地匹配标题或描述。
// 排序：平均分降序，平分时按 created_at 升序；时间戳也相同再按 id 兜底，
// 结果确定但此时不保证插入先后。
func (r *ResourceRepositoryImpl) Search(subject, semester, search string) ([]*models.Resource, error) {
	query := r.db.Model(&models.Resource{}).Preload("Tags").Preload("Uploader")
	if subject != "" {
		query = query.Where("subject = ?", subject)
	}
	if semester != "" {
		query = query.Where("semester = ?", semester)
	}
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	var resources []*models.Resource
	err := query.Order("average_rating DESC, created_at ASC, id ASC").Find(&resources).Error
	return resources, err
}

func (r *ResourceRepositoryImpl) TopRated(n int) ([]*models.Resource, error) {
	if n <= 0 {
		n = DefaultTopN
	}
	var resources []*models.Resource
	err := r.db.Order("average_rating DESC, created_at ASC, id ASC").Limit(n).Find(&resources).Error
	return resources, err
}

func (r *ResourceRepositoryImpl) MostDownloaded(n int) ([]*models.Resource, error) {
	if n <= 0 {
		n = DefaultTopN
	}
	var resources []*models.Resource
	err := r.db.Order("download_count DESC, created_at ASC, id ASC").Limit(n).Find(&resources).Error
	return resources, err
}

// IncrementDownload 用单条 UPDATE 自增，避免读改写竞争丢更新
func (r *ResourceRepositoryImpl) IncrementDownload(id uuid.UUID) error {
	res := r.db.Model(&models.Resource{}).Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ResourceRepositoryImpl) GetTags(id uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.Model(&models.Resource{Base: models.Base{ID: id}}).Association("Tags").Find(&tags)
	return tags, err
}
