package repository

import (
	"math_edu_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) ListByLearner(learnerID uint) ([]model.UnitProgress, error) {
	var ps []model.UnitProgress
	err := r.DB.Where("learner_id = ?", learnerID).Find(&ps).Error
	return ps, err
}
