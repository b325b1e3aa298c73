package service

import (
	"errors"
	"sync"
	"time"

	"math_edu_backend/internal/config"
	"math_edu_backend/internal/model"
	"math_edu_backend/internal/repository"
	"math_edu_backend/internal/util"
	"math_edu_backend/pkg/logger"
	"math_edu_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AnalyticsSink 轮次事件的外发通道，发送失败只记日志不影响主流程
type AnalyticsSink interface {
	PublishRound(learnerID uint, result *model.RoundResult)
	PublishRejection(learnerID uint, code string)
}

// SchedulerService 调度门面。课堂端只跟它打交道：取下一个单元、交一轮
// 成绩，内部再分派给重排、掌握、轮换三个引擎。completeRound 的全部写入
// 在单个事务里完成，乐观版本号保证并发提交只有一个生效。
type SchedulerService struct {
	DB        *gorm.DB
	Learners  *repository.LearnerRepository
	Paths     *repository.PathRepository
	Content   *repository.ContentRepository
	Progress  *repository.ProgressRepository
	Mastery   *MasteryService
	Rotation  *RotationService
	Analytics AnalyticsSink

	locks *LearnerLocks

	mu  sync.RWMutex
	cfg config.SchedulerConfig
}

func NewSchedulerService(
	db *gorm.DB,
	learners *repository.LearnerRepository,
	paths *repository.PathRepository,
	content *repository.ContentRepository,
	progress *repository.ProgressRepository,
	mastery *MasteryService,
	rotation *RotationService,
	analytics AnalyticsSink,
	locks *LearnerLocks,
	cfg *config.SchedulerConfig,
) *SchedulerService {
	return &SchedulerService{
		DB:        db,
		Learners:  learners,
		Paths:     paths,
		Content:   content,
		Progress:  progress,
		Mastery:   mastery,
		Rotation:  rotation,
		Analytics: analytics,
		locks:     locks,
		cfg:       *cfg,
	}
}

// SetConfig 配置热更新入口，同步下发到掌握引擎
func (s *SchedulerService) SetConfig(cfg *config.SchedulerConfig) {
	s.mu.Lock()
	s.cfg = *cfg
	s.mu.Unlock()
	s.Mastery.SetPolicy(cfg)

	logger.Log.Info("调度配置已热更新",
		zap.Int("rotateEveryNRounds", cfg.RotateEveryNRounds),
		zap.Int("promotionStreak", cfg.PromotionStreak))
}

func (s *SchedulerService) currentConfig() config.SchedulerConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// InitializeLearner 入学：建档并创建三螺旋（三条路径 + 轮换状态）
func (s *SchedulerService) InitializeLearner(displayName string, initialDifficulty int) (*model.Learner, *model.TripleHelixState, error) {
	if !model.ValidDifficulty(initialDifficulty) {
		return nil, nil, util.ErrInvalidDifficulty
	}

	learner := &model.Learner{
		DisplayName: displayName,
		Role:        model.RoleLearner,
		OnboardedAt: time.Now(),
	}
	if err := s.Learners.Create(learner); err != nil {
		return nil, nil, err
	}

	state, err := s.Rotation.Initialize(learner.ID, initialDifficulty)
	if err != nil {
		return nil, nil, err
	}

	logger.Log.Info("学习者入学完成",
		zap.Uint("learnerId", learner.ID),
		zap.Int("difficulty", initialDifficulty))
	return learner, state, nil
}

// GetNextUnit 取路径位置 1 上的单元。位置 1 为空但路径非空时说明队列
// 零散，压缩一次后重试；仍为空才报 NO_UNITS_AVAILABLE。返回的边界等级取
// 该单元全部事实当前掌握等级的最小值，没有任何掌握数据时用单元默认值。
func (s *SchedulerService) GetNextUnit(learnerID uint, pathID string) (*model.NextUnitResult, error) {
	state, err := s.loadStateChecked(learnerID)
	if err != nil {
		return nil, err
	}
	if pathID == "" {
		pathID = state.ActivePathID
	}
	if !state.Owns(pathID) {
		return nil, util.ErrPathNotFound
	}

	var unitID string
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		p, err := positionAt(tx, pathID, 1)
		if err != nil {
			return err
		}
		if p == nil {
			occupied, err := countOccupied(tx, pathID)
			if err != nil {
				return err
			}
			if occupied == 0 {
				return util.ErrNoUnitsAvailable
			}
			if err := compressPath(tx, pathID); err != nil {
				return err
			}
			if p, err = positionAt(tx, pathID, 1); err != nil {
				return err
			}
			if p == nil {
				return util.ErrNoUnitsAvailable
			}
		}
		unitID = p.UnitID
		return nil
	})
	if err != nil {
		return nil, err
	}

	unit, err := s.Content.FindUnitByID(unitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUnitNotFound
		}
		return nil, err
	}

	level, err := s.boundaryLevelFor(learnerID, unit)
	if err != nil {
		return nil, err
	}

	return &model.NextUnitResult{
		Unit:          unit,
		PathID:        pathID,
		BoundaryLevel: level,
	}, nil
}

// boundaryLevelFor 木桶原则：按掌握最弱的事实出题
func (s *SchedulerService) boundaryLevelFor(learnerID uint, unit *model.ContentUnit) (int, error) {
	level := 0
	for _, uf := range unit.Facts {
		m, err := s.Mastery.Repo.Find(learnerID, uf.FactID)
		if err != nil {
			return 0, err
		}
		if m == nil {
			continue
		}
		if level == 0 || m.BoundaryLevel < level {
			level = m.BoundaryLevel
		}
	}
	if level == 0 {
		level = unit.BoundaryLevel
	}
	return level, nil
}

// CompleteRound 一轮成绩的统一提交入口。校验全部通过后在单个事务内
// 依次执行：版本检查、间隔重排、逐事实掌握更新、计轮并按配置触发轮换、
// 版本化写回。任何一步失败整体回滚，学习者状态保持轮次开始前的样子。
func (s *SchedulerService) CompleteRound(learnerID uint, unitID string, perf model.RoundPerformance, expectedVersion int64) (*model.RoundResult, error) {
	if !perf.Valid() {
		s.rejectRound(learnerID, util.ErrInvalidPerformanceData)
		return nil, util.ErrInvalidPerformanceData
	}

	exists, err := s.Learners.Exists(learnerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		s.rejectRound(learnerID, util.ErrLearnerNotFound)
		return nil, util.ErrLearnerNotFound
	}

	cfg := s.currentConfig()
	policy := s.Mastery.currentPolicy()

	unlock := s.locks.Lock(learnerID)
	defer unlock()

	var result *model.RoundResult
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		state, err := loadState(tx, learnerID)
		if err != nil {
			return err
		}
		if expectedVersion != 0 && state.Version != expectedVersion {
			return util.ErrConflict
		}
		baseVersion := state.Version

		reposition, err := repositionUnit(tx, learnerID, unitID, perf)
		if err != nil {
			return err
		}
		if !state.Owns(reposition.PathID) {
			return util.ErrPathNotFound
		}

		factIDs, err := factIDsOf(tx, unitID)
		if err != nil {
			return err
		}

		// 轮次摘要按均值摊到每个事实，逐题成绩由课堂端补充时再细化
		factPerf := model.FactPerformance{
			CorrectFirstAttempt: perf.Perfect(),
			ResponseTimeMs:      perf.AverageResponseTimeMs,
		}
		updates := make([]model.MasteryUpdateResult, 0, len(factIDs))
		for _, factID := range factIDs {
			u, err := updateFactMastery(tx, learnerID, factID, factPerf, policy)
			if err != nil {
				return err
			}
			updates = append(updates, *u)
		}

		var rotation *model.RotationResult
		state.RoundsSinceRotation++
		if state.RoundsSinceRotation >= cfg.RotateEveryNRounds {
			if rotation, err = rotateHelix(tx, state); err != nil {
				return err
			}
		}

		if err := commitState(tx, state, baseVersion); err != nil {
			return err
		}

		result = &model.RoundResult{
			LearnerID:      learnerID,
			Reposition:     reposition,
			MasteryUpdates: updates,
			Rotation:       rotation,
			Version:        state.Version,
			CompletedAt:    time.Now(),
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, util.ErrConflict) {
			monitoring.VersionConflicts.Inc()
		}
		if util.IsSchedulerError(err) {
			s.rejectRound(learnerID, err)
		}
		return nil, err
	}

	outcome := "imperfect"
	if perf.Perfect() {
		outcome = "perfect"
	}
	monitoring.RoundsCompleted.WithLabelValues(outcome).Inc()
	if result.Rotation != nil {
		monitoring.RotationsTotal.Inc()
	}
	for _, u := range result.MasteryUpdates {
		if u.NewLevel > u.PreviousLevel {
			monitoring.MasteryTransitions.WithLabelValues("promotion").Inc()
		} else if u.NewLevel < u.PreviousLevel {
			monitoring.MasteryTransitions.WithLabelValues("demotion").Inc()
		}
	}

	if s.Analytics != nil {
		go s.Analytics.PublishRound(learnerID, result)
	}

	logger.Log.Info("轮次提交完成",
		zap.Uint("learnerId", learnerID),
		zap.String("unitId", unitID),
		zap.String("outcome", outcome),
		zap.Int64("version", result.Version))
	return result, nil
}

// GetState 状态速览：轮换状态、三条路径与单元进度，供课堂端与排障用
func (s *SchedulerService) GetState(learnerID uint) (*model.SchedulerState, error) {
	state, err := s.loadStateChecked(learnerID)
	if err != nil {
		return nil, err
	}

	learner, err := s.Learners.FindByID(learnerID)
	if err != nil {
		return nil, err
	}

	paths, err := s.Paths.FindByLearner(learnerID)
	if err != nil {
		return nil, err
	}
	progress, err := s.Progress.ListByLearner(learnerID)
	if err != nil {
		return nil, err
	}
	mastery, err := s.Mastery.Repo.ListByLearner(learnerID)
	if err != nil {
		return nil, err
	}

	return &model.SchedulerState{
		LearnerID: learnerID,
		Learner:   learner,
		Helix:     *state,
		Paths:     paths,
		Progress:  progress,
		Mastery:   mastery,
	}, nil
}

func (s *SchedulerService) loadStateChecked(learnerID uint) (*model.TripleHelixState, error) {
	exists, err := s.Learners.Exists(learnerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, util.ErrLearnerNotFound
	}
	state, err := s.Paths.FindState(learnerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNoTripleHelix
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (s *SchedulerService) rejectRound(learnerID uint, err error) {
	code := util.CodeOf(err)
	monitoring.RoundsCompleted.WithLabelValues("rejected").Inc()
	if s.Analytics != nil {
		go s.Analytics.PublishRejection(learnerID, code)
	}
}

func factIDsOf(tx *gorm.DB, unitID string) ([]string, error) {
	var ids []string
	err := tx.Model(&model.UnitFact{}).Where("unit_id = ?", unitID).Pluck("fact_id", &ids).Error
	return ids, err
}
