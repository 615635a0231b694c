package repository

import (
	"errors"
	"strings"

	"resourcehub/models"

	"gorm.io/gorm"
)

type TagRepository interface {
	BaseRepository[models.Tag]
	GetByName(name string) (*models.Tag, error)
	FindOrCreate(names []string) ([]models.Tag, error)
}

type TagRepositoryImpl struct {
	*BaseRepositoryImpl[models.Tag]
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &TagRepositoryImpl{
		BaseRepositoryImpl: NewBaseRepository[models.Tag](db),
	}
}

func (r *TagRepositoryImpl) GetByName(name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.Where("name = ?", name).First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindOrCreate 按名字查找标签，不存在则创建。名字先去空白，空串和重复项跳过。
// 并发创建同名标签时以唯一索引为准：命中 ErrDuplicatedKey 就回读已有行。
func (r *TagRepositoryImpl) FindOrCreate(names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tag, err := r.GetByName(name)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fresh := models.Tag{Name: name}
			switch err = r.db.Create(&fresh).Error; {
			case err == nil:
				tag = &fresh
			case errors.Is(err, gorm.ErrDuplicatedKey):
				tag, err = r.GetByName(name)
			}
		}
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}
