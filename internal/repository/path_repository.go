package repository

import (
	"math_edu_backend/internal/model"

	"gorm.io/gorm"
)

type PathRepository struct {
	DB *gorm.DB
}

func NewPathRepository(db *gorm.DB) *PathRepository {
	return &PathRepository{DB: db}
}

func (r *PathRepository) FindByLearner(learnerID uint) ([]model.LearningPath, error) {
	var ps []model.LearningPath
	err := r.DB.Where("learner_id = ?", learnerID).Order("created_at asc").Find(&ps).Error
	return ps, err
}

func (r *PathRepository) FindState(learnerID uint) (*model.TripleHelixState, error) {
	var s model.TripleHelixState
	err := r.DB.Where("learner_id = ?", learnerID).First(&s).Error
	return &s, err
}

