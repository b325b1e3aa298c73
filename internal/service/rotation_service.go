package service

import (
	"errors"
	"fmt"
	"time"

	"math_edu_backend/internal/model"
	"math_edu_backend/internal/repository"
	"math_edu_backend/internal/util"

	"gorm.io/gorm"
)

// RotationService 三螺旋轮换：一条路径在台前演出，两条在后台备稿，
// 严格三槽轮转，连转三次回到原点。内容备稿的延迟藏在演出时间后面。
type RotationService struct {
	DB       *gorm.DB
	Paths    *repository.PathRepository
	Learners *repository.LearnerRepository
	locks    *LearnerLocks
}

func NewRotationService(
	db *gorm.DB,
	paths *repository.PathRepository,
	learners *repository.LearnerRepository,
	locks *LearnerLocks,
) *RotationService {
	return &RotationService{
		DB:       db,
		Paths:    paths,
		Learners: learners,
		locks:    locks,
	}
}

// Initialize 在入学时创建三条路径和轮换状态，重复初始化报 ALREADY_INITIALIZED
func (s *RotationService) Initialize(learnerID uint, initialDifficulty int) (*model.TripleHelixState, error) {
	if !model.ValidDifficulty(initialDifficulty) {
		return nil, util.ErrInvalidDifficulty
	}

	exists, err := s.Learners.Exists(learnerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, util.ErrLearnerNotFound
	}

	unlock := s.locks.Lock(learnerID)
	defer unlock()

	var state *model.TripleHelixState
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.TripleHelixState{}).
			Where("learner_id = ?", learnerID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return util.ErrAlreadyInitialized
		}

		statuses := [3]string{model.PathStatusActive, model.PathStatusPreparing, model.PathStatusPreparing}
		var ids [3]string
		for i := 0; i < 3; i++ {
			path := &model.LearningPath{
				LearnerID:  learnerID,
				Name:       fmt.Sprintf("tube-%d", i+1),
				Difficulty: initialDifficulty,
				Status:     statuses[i],
			}
			if err := tx.Create(path).Error; err != nil {
				return err
			}
			ids[i] = path.ID
		}

		state = &model.TripleHelixState{
			LearnerID:        learnerID,
			ActivePathID:     ids[0],
			PreparingFrontID: ids[1],
			PreparingBackID:  ids[2],
			Version:          1,
		}
		return tx.Create(state).Error
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Rotate 独立触发一次轮换（completeRound 之外的维护入口）
func (s *RotationService) Rotate(learnerID uint) (*model.RotationResult, error) {
	unlock := s.locks.Lock(learnerID)
	defer unlock()

	var result *model.RotationResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		state, err := loadState(tx, learnerID)
		if err != nil {
			return err
		}
		expected := state.Version

		r, err := rotateHelix(tx, state)
		if err != nil {
			return err
		}
		result = r

		return commitState(tx, state, expected)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateDifficulty 只调整目标路径的难度，其余路径不受影响
func (s *RotationService) UpdateDifficulty(learnerID uint, pathID string, newDifficulty int) (*model.LearningPath, error) {
	if !model.ValidDifficulty(newDifficulty) {
		return nil, util.ErrInvalidDifficulty
	}

	unlock := s.locks.Lock(learnerID)
	defer unlock()

	var path model.LearningPath
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		state, err := loadState(tx, learnerID)
		if err != nil {
			return err
		}
		if !state.Owns(pathID) {
			return util.ErrPathNotFound
		}
		expected := state.Version

		if err := tx.Where("id = ?", pathID).First(&path).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrPathNotFound
			}
			return err
		}

		path.Difficulty = newDifficulty
		if err := tx.Save(&path).Error; err != nil {
			return err
		}

		return commitState(tx, state, expected)
	})
	if err != nil {
		return nil, err
	}
	return &path, nil
}

func loadState(tx *gorm.DB, learnerID uint) (*model.TripleHelixState, error) {
	var state model.TripleHelixState
	err := tx.Where("learner_id = ?", learnerID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNoTripleHelix
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// rotateHelix 执行一次槽位轮转：台前路径退到备稿队尾并把当前单元
// 存回 next 引用，备稿队首晋升为台前并把 next 提为 current。
// 只更新路径行并在内存中改写 state，state 的落库由调用方统一做版本化提交。
func rotateHelix(tx *gorm.DB, state *model.TripleHelixState) (*model.RotationResult, error) {
	for _, id := range state.PathIDs() {
		if id == "" {
			return nil, util.ErrRotationFailed
		}
	}

	var demoted, promoted model.LearningPath
	if err := tx.Where("id = ?", state.ActivePathID).First(&demoted).Error; err != nil {
		return nil, util.ErrRotationFailed
	}
	if err := tx.Where("id = ?", state.PreparingFrontID).First(&promoted).Error; err != nil {
		return nil, util.ErrRotationFailed
	}

	demoted.NextUnitID = demoted.CurrentUnitID
	demoted.CurrentUnitID = nil
	demoted.Status = model.PathStatusPreparing

	promoted.CurrentUnitID = promoted.NextUnitID
	promoted.NextUnitID = nil
	promoted.Status = model.PathStatusActive

	if err := tx.Save(&demoted).Error; err != nil {
		return nil, err
	}
	if err := tx.Save(&promoted).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	previousActive := state.ActivePathID
	state.ActivePathID = state.PreparingFrontID
	state.PreparingFrontID = state.PreparingBackID
	state.PreparingBackID = previousActive
	state.RotationCount++
	state.RoundsSinceRotation = 0
	state.LastRotationAt = &now

	return &model.RotationResult{
		PreviousActivePathID: previousActive,
		ActivePathID:         state.ActivePathID,
		RotationCount:        state.RotationCount,
		RotatedAt:            now,
	}, nil
}

// commitState 按乐观版本写回轮换状态，版本过期时整个事务回滚并报 CONFLICT
func commitState(tx *gorm.DB, state *model.TripleHelixState, expectedVersion int64) error {
	res := tx.Model(&model.TripleHelixState{}).
		Where("learner_id = ? AND version = ?", state.LearnerID, expectedVersion).
		Updates(map[string]interface{}{
			"active_path_id":        state.ActivePathID,
			"preparing_front_id":    state.PreparingFrontID,
			"preparing_back_id":     state.PreparingBackID,
			"rotation_count":        state.RotationCount,
			"rounds_since_rotation": state.RoundsSinceRotation,
			"last_rotation_at":      state.LastRotationAt,
			"version":               expectedVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrConflict
	}
	state.Version = expectedVersion + 1
	return nil
}
