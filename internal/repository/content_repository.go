package repository

import (
	"math_edu_backend/internal/model"

	"gorm.io/gorm"
)

// ContentRepository 内容仓库，对调度核心只读；写入仅来自
// 管理端 authoring 与课程包导入。
type ContentRepository struct {
	DB *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

func (r *ContentRepository) FindUnitByID(id string) (*model.ContentUnit, error) {
	var u model.ContentUnit
	err := r.DB.Preload("Facts").Where("id = ?", id).First(&u).Error
	return &u, err
}

func (r *ContentRepository) FactExists(factID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Fact{}).Where("id = ?", factID).Count(&count).Error
	return count > 0, err
}
