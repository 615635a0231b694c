package service

import (
	"errors"
	"fmt"

	"resourcehub/common"
	"resourcehub/config"
	"resourcehub/models"
	"resourcehub/repository"
	"resourcehub/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService interface {
	Register(username, email, password string) (*models.User, error)
	Login(username, password string) (string, error)
}

type UserServiceImpl struct {
	repo repository.UserRepository
	jwt  config.JWTConfig
}

func NewUserService(repo repository.UserRepository, jwt config.JWTConfig) UserService {
	return &UserServiceImpl{repo: repo, jwt: jwt}
}

func (s *UserServiceImpl) Register(username, email, password string) (*models.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, common.ErrInvalidArgument
	}
	// 先查一遍是为了报错能点名冲突字段，真正的唯一性由索引兜底
	if err := s.checkTaken(username, email); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: username, Email: email, Password: string(hash)}
	if err := s.repo.Create(user); err != nil {
		return nil, common.FromDB(err, "username or email")
	}
	return user, nil
}

func (s *UserServiceImpl) checkTaken(username, email string) error {
	if _, err := s.repo.GetByUsername(username); err == nil {
		return fmt.Errorf("username: %w", common.ErrDuplicateKey)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return common.FromDB(err, "username")
	}
	if _, err := s.repo.GetByEmail(email); err == nil {
		return fmt.Errorf("email: %w", common.ErrDuplicateKey)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return common.FromDB(err, "email")
	}
	return nil
}

func (s *UserServiceImpl) Login(username, password string) (string, error) {
	user, err := s.repo.GetByUsername(username)
	if err != nil {
		return "", common.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", common.ErrUnauthorized
	}
	return utils.GenerateToken(user.ID.String(), s.jwt.Secret, s.jwt.ExpireMinutes)
}
