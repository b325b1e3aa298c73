package service

import (
	"errors"

	"math_edu_backend/internal/model"
	"math_edu_backend/internal/repository"
	"math_edu_backend/internal/util"

	"gorm.io/gorm"
)

// PositionService 路径内容队列。位置稀疏且有序：空隙是刻意保留的，
// 新内容插入不需要整体重排；compress 是显式维护操作，绝不隐式触发。
type PositionService struct {
	DB   *gorm.DB
	Repo *repository.PositionRepository
}

func NewPositionService(db *gorm.DB, repo *repository.PositionRepository) *PositionService {
	return &PositionService{DB: db, Repo: repo}
}

// GetUnitAt 返回路径指定位置上的单元 id，空位返回 ""
func (s *PositionService) GetUnitAt(pathID string, position int) (string, error) {
	p, err := s.Repo.FindAt(pathID, position)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", nil
	}
	return p.UnitID, nil
}

// ListOccupied 按位置升序返回路径的全部占位
func (s *PositionService) ListOccupied(pathID string) ([]model.PathPosition, error) {
	return s.Repo.ListOccupied(pathID)
}

// Assign 把单元放入指定位置，位置已占用时返回 ErrPositionOccupied
func (s *PositionService) Assign(pathID string, position int, unitID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return assignPosition(tx, pathID, position, unitID)
	})
}

// ShiftRange 把 [from, to] 内全部被占用的位置前移一格，空位直接跳过
func (s *PositionService) ShiftRange(pathID string, from, to int) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return shiftRange(tx, pathID, from, to)
	})
}

// Compress 把全部占位重排为从 1 开始的连续整数，保持相对顺序，幂等
func (s *PositionService) Compress(pathID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return compressPath(tx, pathID)
	})
}

// 以下为事务内使用的底层操作，completeRound 复用它们组成单个事务

func positionAt(tx *gorm.DB, pathID string, position int) (*model.PathPosition, error) {
	var p model.PathPosition
	err := tx.Where("path_id = ? AND position = ?", pathID, position).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func assignPosition(tx *gorm.DB, pathID string, position int, unitID string) error {
	occupied, err := positionAt(tx, pathID, position)
	if err != nil {
		return err
	}
	if occupied != nil {
		return util.ErrPositionOccupied
	}
	return tx.Create(&model.PathPosition{
		PathID:   pathID,
		Position: position,
		UnitID:   unitID,
	}).Error
}

func vacatePosition(tx *gorm.DB, pathID string, position int) error {
	return tx.Where("path_id = ? AND position = ?", pathID, position).
		Delete(&model.PathPosition{}).Error
}

// shiftRange 升序处理保证目标槽位先被腾空，占位相对顺序不变
func shiftRange(tx *gorm.DB, pathID string, from, to int) error {
	var ps []model.PathPosition
	err := tx.Where("path_id = ? AND position BETWEEN ? AND ?", pathID, from, to).
		Order("position asc").Find(&ps).Error
	if err != nil {
		return err
	}

	for _, p := range ps {
		err := tx.Model(&model.PathPosition{}).
			Where("path_id = ? AND position = ?", pathID, p.Position).
			Update("position", p.Position-1).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// compressPath 重排为 1..n。升序处理时目标位置永远不大于当前位置，
// 不会撞上尚未移动的行
func compressPath(tx *gorm.DB, pathID string) error {
	var ps []model.PathPosition
	err := tx.Where("path_id = ?", pathID).Order("position asc").Find(&ps).Error
	if err != nil {
		return err
	}

	for i, p := range ps {
		target := i + 1
		if p.Position == target {
			continue
		}
		err := tx.Model(&model.PathPosition{}).
			Where("path_id = ? AND position = ?", pathID, p.Position).
			Update("position", target).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func countOccupied(tx *gorm.DB, pathID string) (int64, error) {
	var count int64
	err := tx.Model(&model.PathPosition{}).Where("path_id = ?", pathID).Count(&count).Error
	return count, err
}
