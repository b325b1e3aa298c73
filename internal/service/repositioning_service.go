package service

import (
	"errors"
	"time"

	"math_edu_backend/internal/model"
	"math_edu_backend/internal/repository"
	"math_edu_backend/internal/util"

	"gorm.io/gorm"
)

// RepositioningService 间隔重排引擎。完美轮次把单元沿固定序列
// [4,8,15,30,100,1000] 向后推，非完美轮次让单元留在位置 1 并把间隔数
// 打回 4。整个重排要么全部生效要么全部回滚。
type RepositioningService struct {
	DB       *gorm.DB
	Content  *repository.ContentRepository
	Progress *repository.ProgressRepository
}

func NewRepositioningService(
	db *gorm.DB,
	content *repository.ContentRepository,
	progress *repository.ProgressRepository,
) *RepositioningService {
	return &RepositioningService{
		DB:       db,
		Content:  content,
		Progress: progress,
	}
}

// Reposition 对一轮完成应用间隔重排，单独调用时自成事务
func (s *RepositioningService) Reposition(learnerID uint, unitID string, perf model.RoundPerformance) (*model.RepositionResult, error) {
	if !perf.Valid() {
		return nil, util.ErrInvalidPerformanceData
	}

	var result *model.RepositionResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		r, err := repositionUnit(tx, learnerID, unitID, perf)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// repositionUnit 事务内的重排核心，completeRound 直接复用。
// 调用方负责先完成 perf 校验。
func repositionUnit(tx *gorm.DB, learnerID uint, unitID string, perf model.RoundPerformance) (*model.RepositionResult, error) {
	var unit model.ContentUnit
	if err := tx.Where("id = ?", unitID).First(&unit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUnitNotFound
		}
		return nil, err
	}

	occupied, err := countOccupied(tx, unit.PathID)
	if err != nil {
		return nil, err
	}
	if occupied == 0 {
		return nil, util.ErrRepositioningFailed
	}

	var pos model.PathPosition
	err = tx.Where("path_id = ? AND unit_id = ?", unit.PathID, unitID).First(&pos).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 单元不在队列里，无法重排
		return nil, util.ErrRepositioningFailed
	}
	if err != nil {
		return nil, err
	}
	previousPosition := pos.Position

	var prog model.UnitProgress
	hasProgress := true
	err = tx.Where("learner_id = ? AND unit_id = ?", learnerID, unitID).First(&prog).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		hasProgress = false
	} else if err != nil {
		return nil, err
	}
	firstCompletion := !hasProgress || prog.CompletionCount == 0

	var skipNumber, newPosition int
	if perf.Perfect() {
		// 首次完成取序列起点 4；之后每次完美推进到下一档，封顶 1000
		if firstCompletion {
			skipNumber = model.DefaultSkipNumber
		} else {
			skipNumber = model.NextSkipNumber(unit.SkipNumber)
		}

		// 腾出当前占位，再把 [1, skipNumber] 内的占位整体前移一格，
		// 空出的 skipNumber 槽位停放刚完成的单元
		if err := vacatePosition(tx, unit.PathID, previousPosition); err != nil {
			return nil, err
		}
		if err := shiftRange(tx, unit.PathID, 1, skipNumber); err != nil {
			return nil, err
		}
		if err := assignPosition(tx, unit.PathID, skipNumber, unitID); err != nil {
			return nil, err
		}
		newPosition = skipNumber
	} else {
		skipNumber = model.DefaultSkipNumber
		newPosition = previousPosition
	}

	if err := tx.Model(&model.ContentUnit{}).Where("id = ?", unitID).
		Update("skip_number", skipNumber).Error; err != nil {
		return nil, err
	}

	if err := upsertProgress(tx, learnerID, unitID, perf, hasProgress, &prog); err != nil {
		return nil, err
	}

	return &model.RepositionResult{
		UnitID:           unitID,
		PathID:           unit.PathID,
		PreviousPosition: previousPosition,
		NewPosition:      newPosition,
		SkipNumber:       skipNumber,
	}, nil
}

func upsertProgress(tx *gorm.DB, learnerID uint, unitID string, perf model.RoundPerformance, exists bool, prog *model.UnitProgress) error {
	now := time.Now()
	if !exists {
		return tx.Create(&model.UnitProgress{
			LearnerID:       learnerID,
			UnitID:          unitID,
			CompletionCount: 1,
			CorrectCount:    perf.CorrectCount,
			TotalCount:      perf.TotalCount,
			MasteryScore:    float64(perf.CorrectCount) / float64(perf.TotalCount),
			LastCompletedAt: now,
		}).Error
	}

	correct := prog.CorrectCount + perf.CorrectCount
	total := prog.TotalCount + perf.TotalCount
	return tx.Model(&model.UnitProgress{}).
		Where("learner_id = ? AND unit_id = ?", learnerID, unitID).
		Updates(map[string]interface{}{
			"completion_count":  prog.CompletionCount + 1,
			"correct_count":     correct,
			"total_count":       total,
			"mastery_score":     float64(correct) / float64(total),
			"last_completed_at": now,
		}).Error
}
