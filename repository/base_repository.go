package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseRepository 是四类实体共用的持久层入口。目录里的实体只进不出：
// 没有删除，也没有事务外的整行更新，所以这里不开这些口子。
type BaseRepository[T any] interface {
	Create(entity *T) error
	GetByID(id uuid.UUID) (*T, error)
	Exists(id uuid.UUID) (bool, error)
	Count() (int64, error)
}

type BaseRepositoryImpl[T any] struct {
	db *gorm.DB
}

func NewBaseRepository[T any](db *gorm.DB) *BaseRepositoryImpl[T] {
	return &BaseRepositoryImpl[T]{db: db}
}

func (r *BaseRepositoryImpl[T]) Create(entity *T) error {
	return r.db.Create(entity).Error
}

func (r *BaseRepositoryImpl[T]) GetByID(id uuid.UUID) (*T, error) {
	var entity T
	if err := r.db.First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// Exists 给外键引用检查用，不拉整行
func (r *BaseRepositoryImpl[T]) Exists(id uuid.UUID) (bool, error) {
	var entity T
	var count int64
	err := r.db.Model(&entity).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *BaseRepositoryImpl[T]) Count() (int64, error) {
	var entity T
	var count int64
	err := r.db.Model(&entity).Count(&count).Error
	return count, err
}
