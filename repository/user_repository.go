package repository

import (
	"resourcehub/models"

	"gorm.io/gorm"
)

type UserRepository interface {
	BaseRepository[models.User]
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
}

type UserRepositoryImpl struct {
	*BaseRepositoryImpl[models.User]
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{
		BaseRepositoryImpl: NewBaseRepository[models.User](db),
	}
}

func (r *UserRepositoryImpl) GetByUsername(username string) (*models.User, error) {
	return r.getBy("username = ?", username)
}

func (r *UserRepositoryImpl) GetByEmail(email string) (*models.User, error) {
	return r.getBy("email = ?", email)
}

func (r *UserRepositoryImpl) getBy(cond, value string) (*models.User, error) {
	var user models.User
	if err := r.db.Where(cond, value).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
