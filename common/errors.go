package common

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("requested entity not found")
	ErrDuplicateKey    = errors.New("unique constraint violated")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrStorageFailure  = errors.New("storage failure")
)

// FromDB 将 gorm 的错误翻译成领域错误，field 标注冲突/缺失的对象
func FromDB(err error, field string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", field, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", field, ErrDuplicateKey)
	default:
		return fmt.Errorf("%s: %v: %w", field, err, ErrStorageFailure)
	}
}

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrStorageFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
