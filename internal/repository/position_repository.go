package repository

import (
	"errors"

	"math_edu_backend/internal/model"

	"gorm.io/gorm"
)

type PositionRepository struct {
	DB *gorm.DB
}

func NewPositionRepository(db *gorm.DB) *PositionRepository {
	return &PositionRepository{DB: db}
}

// FindAt 读取路径指定位置的占位，未占用时返回 (nil, nil)
func (r *PositionRepository) FindAt(pathID string, position int) (*model.PathPosition, error) {
	var p model.PathPosition
	err := r.DB.Where("path_id = ? AND position = ?", pathID, position).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListOccupied 按位置升序返回路径的全部占位
func (r *PositionRepository) ListOccupied(pathID string) ([]model.PathPosition, error) {
	var ps []model.PathPosition
	err := r.DB.Where("path_id = ?", pathID).Order("position asc").Find(&ps).Error
	return ps, err
}
