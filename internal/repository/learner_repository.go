package repository

import (
	"errors"

	"math_edu_backend/internal/model"

	"gorm.io/gorm"
)

type LearnerRepository struct {
	DB *gorm.DB
}

func NewLearnerRepository(db *gorm.DB) *LearnerRepository {
	return &LearnerRepository{DB: db}
}

func (r *LearnerRepository) Create(learner *model.Learner) error {
	return r.DB.Create(learner).Error
}

// FindByID 读取学习者档案，未建档时返回 (nil, nil)
func (r *LearnerRepository) FindByID(id uint) (*model.Learner, error) {
	var l model.Learner
	err := r.DB.Where("id = ?", id).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LearnerRepository) Exists(id uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Learner{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
