package repository

import (
	"errors"

	"math_edu_backend/internal/model"

	"gorm.io/gorm"
)

type MasteryRepository struct {
	DB *gorm.DB
}

func NewMasteryRepository(db *gorm.DB) *MasteryRepository {
	return &MasteryRepository{DB: db}
}

// Find 读取掌握状态，未初始化时返回 (nil, nil)
func (r *MasteryRepository) Find(learnerID uint, factID string) (*model.FactMastery, error) {
	var m model.FactMastery
	err := r.DB.Where("learner_id = ? AND fact_id = ?", learnerID, factID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MasteryRepository) Create(m *model.FactMastery) error {
	return r.DB.Create(m).Error
}

func (r *MasteryRepository) ListByLearner(learnerID uint) ([]model.FactMastery, error) {
	var ms []model.FactMastery
	err := r.DB.Where("learner_id = ?", learnerID).Order("fact_id asc").Find(&ms).Error
	return ms, err
}
