package repository

import (
	"database/sql"
	"errors"
	"math"

	"resourcehub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingRepository interface {
	BaseRepository[models.Rating]
	GetByResourceAndUser(resourceID, userID uuid.UUID) (*models.Rating, error)
	CountByResource(resourceID uuid.UUID) (int64, error)
	// Upsert 写入或覆盖 (user, resource) 的评分并重算资源平均分，返回新的平均分
	Upsert(resourceID, userID uuid.UUID, score int, feedback string) (float64, error)
}

type RatingRepositoryImpl struct {
	*BaseRepositoryImpl[models.Rating]
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &RatingRepositoryImpl{
		BaseRepositoryImpl: NewBaseRepository[models.Rating](db),
	}
}

func (r *RatingRepositoryImpl) GetByResourceAndUser(resourceID, userID uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.Where("resource_id = ? AND user_id = ?", resourceID, userID).First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *RatingRepositoryImpl) CountByResource(resourceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Rating{}).Where("resource_id = ?", resourceID).Count(&count).Error
	return count, err
}

// Upsert 整个"查旧评分-写入-重算平均"跑在一个事务里，并对资源行加 FOR UPDATE，
// 同一资源的并发评分在这里串行化，不同资源互不阻塞。
func (r *RatingRepositoryImpl) Upsert(resourceID, userID uuid.UUID, score int, feedback string) (float64, error) {
	var average float64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		locked := tx
		// sqlite 不支持 FOR UPDATE，写事务本身互斥
		if tx.Dialector.Name() == "postgres" {
			locked = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var resource models.Resource
		if err := locked.First(&resource, "id = ?", resourceID).Error; err != nil {
			return err
		}

		var rating models.Rating
		err := tx.Where("resource_id = ? AND user_id = ?", resourceID, userID).First(&rating).Error
		switch {
		case err == nil:
			rating.Score = score
			rating.Feedback = feedback
			if err := tx.Save(&rating).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			rating = models.Rating{ResourceID: resourceID, UserID: userID, Score: score, Feedback: feedback}
			if err := tx.Create(&rating).Error; err != nil {
				return err
			}
		default:
			return err
		}

		var mean sql.NullFloat64
		if err := tx.Model(&models.Rating{}).Where("resource_id = ?", resourceID).
			Select("AVG(score)").Scan(&mean).Error; err != nil {
			return err
		}
		if mean.Valid {
			average = math.Round(mean.Float64*100) / 100
		}
		return tx.Model(&models.Resource{}).Where("id = ?", resourceID).
			UpdateColumn("average_rating", average).Error
	})
	if err != nil {
		return 0, err
	}
	return average, nil
}
