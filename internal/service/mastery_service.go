package service

import (
	"errors"
	"sync"
	"time"

	"math_edu_backend/internal/config"
	"math_edu_backend/internal/model"
	"math_edu_backend/internal/repository"
	"math_edu_backend/internal/util"

	"gorm.io/gorm"
)

// MasteryPolicy 晋升/降级策略。阈值按边界等级 1-5 递减：等级越高，
// 要求的反应越快。策略可热更新，序列与等级范围是课程常量。
type MasteryPolicy struct {
	PromotionStreak int
	DemotionStreak  int
	ResponseTimeMs  [5]int
}

func policyFromConfig(cfg *config.SchedulerConfig) MasteryPolicy {
	p := MasteryPolicy{
		PromotionStreak: cfg.PromotionStreak,
		DemotionStreak:  cfg.DemotionStreak,
	}
	for i := 0; i < 5 && i < len(cfg.ResponseTimeMs); i++ {
		p.ResponseTimeMs[i] = cfg.ResponseTimeMs[i]
	}
	return p
}

// MasteryService 五级边界等级状态机，按 (学习者, 事实) 维护
type MasteryService struct {
	DB       *gorm.DB
	Repo     *repository.MasteryRepository
	Content  *repository.ContentRepository
	Learners *repository.LearnerRepository

	mu     sync.RWMutex
	policy MasteryPolicy
}

func NewMasteryService(
	db *gorm.DB,
	repo *repository.MasteryRepository,
	content *repository.ContentRepository,
	learners *repository.LearnerRepository,
	cfg *config.SchedulerConfig,
) *MasteryService {
	return &MasteryService{
		DB:       db,
		Repo:     repo,
		Content:  content,
		Learners: learners,
		policy:   policyFromConfig(cfg),
	}
}

// SetPolicy 应用热更新后的调度配置
func (s *MasteryService) SetPolicy(cfg *config.SchedulerConfig) {
	s.mu.Lock()
	s.policy = policyFromConfig(cfg)
	s.mu.Unlock()
}

func (s *MasteryService) currentPolicy() MasteryPolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

// transitionMastery 状态机核心：纯函数，(状态, 表现) -> 新状态。
// 晋升：在等级时限内连续答对 PromotionStreak 次，恰好升一级。
// 降级：连续 DemotionStreak 次首答错误，恰好降一级，不低于 1。
// 答对但超时不累计晋升连击，也不计为失误。
func transitionMastery(m model.FactMastery, perf model.FactPerformance, p MasteryPolicy) model.FactMastery {
	threshold := float64(p.ResponseTimeMs[m.BoundaryLevel-1])
	qualified := perf.CorrectFirstAttempt && perf.ResponseTimeMs <= threshold

	switch {
	case qualified:
		streak := m.ConsecutiveCorrect + 1
		if perf.ConsecutiveCorrect > streak {
			streak = perf.ConsecutiveCorrect
		}
		m.ConsecutiveCorrect = streak
		m.ConsecutiveIncorrect = 0
		if streak >= p.PromotionStreak && m.BoundaryLevel < model.MaxBoundaryLevel {
			m.BoundaryLevel++
			m.ConsecutiveCorrect = 0
		}
	case perf.CorrectFirstAttempt:
		m.ConsecutiveCorrect = 0
	default:
		m.ConsecutiveCorrect = 0
		m.ConsecutiveIncorrect++
		if m.ConsecutiveIncorrect >= p.DemotionStreak && m.BoundaryLevel > model.MinBoundaryLevel {
			m.BoundaryLevel--
			m.ConsecutiveIncorrect = 0
		}
	}

	m.MasteryScore = masteryScore(m, perf, p)
	return m
}

// masteryScore 由连击进度和反应速度合成 [0,1] 的掌握分
func masteryScore(m model.FactMastery, perf model.FactPerformance, p MasteryPolicy) float64 {
	accuracy := float64(m.ConsecutiveCorrect) / float64(p.PromotionStreak)
	if accuracy > 1 {
		accuracy = 1
	}

	speed := 0.0
	if perf.CorrectFirstAttempt {
		threshold := float64(p.ResponseTimeMs[m.BoundaryLevel-1])
		if perf.ResponseTimeMs <= threshold {
			speed = 1
		} else if perf.ResponseTimeMs > 0 {
			speed = threshold / perf.ResponseTimeMs
		}
	}

	score := 0.7*accuracy + 0.3*speed
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Initialize 显式建立掌握记录，常规路径是 Update 的惰性创建
func (s *MasteryService) Initialize(learnerID uint, factID string, startLevel int) (*model.FactMastery, error) {
	if !model.ValidBoundaryLevel(startLevel) {
		return nil, util.ErrInvalidLevel
	}
	if err := s.checkLearnerAndFact(learnerID, factID); err != nil {
		return nil, err
	}

	existing, err := s.Repo.Find(learnerID, factID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, util.ErrAlreadyInitialized
	}

	m := &model.FactMastery{
		LearnerID:     learnerID,
		FactID:        factID,
		BoundaryLevel: startLevel,
		LastSeenAt:    time.Now(),
	}
	if err := s.Repo.Create(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Update 评估一次表现并推进状态机，校验全部前置、失败不留任何变更
func (s *MasteryService) Update(learnerID uint, factID string, perf model.FactPerformance) (*model.MasteryUpdateResult, error) {
	if !perf.Valid() {
		return nil, util.ErrInvalidPerformanceData
	}
	if err := s.checkLearnerAndFact(learnerID, factID); err != nil {
		return nil, err
	}

	policy := s.currentPolicy()
	var result *model.MasteryUpdateResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		r, err := updateFactMastery(tx, learnerID, factID, perf, policy)
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

// GetCurrentLevel 读取当前边界等级，未初始化时报 NO_MASTERY_DATA
func (s *MasteryService) GetCurrentLevel(learnerID uint, factID string) (int, error) {
	m, err := s.GetMastery(learnerID, factID)
	if err != nil {
		return 0, err
	}
	return m.BoundaryLevel, nil
}

// GetMastery 读取完整掌握状态，未初始化时报 NO_MASTERY_DATA
func (s *MasteryService) GetMastery(learnerID uint, factID string) (*model.FactMastery, error) {
	if err := s.checkLearnerAndFact(learnerID, factID); err != nil {
		return nil, err
	}
	m, err := s.Repo.Find(learnerID, factID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, util.ErrNoMasteryData
	}
	return m, nil
}

func (s *MasteryService) checkLearnerAndFact(learnerID uint, factID string) error {
	exists, err := s.Learners.Exists(learnerID)
	if err != nil {
		return err
	}
	if !exists {
		return util.ErrLearnerNotFound
	}

	known, err := s.Content.FactExists(factID)
	if err != nil {
		return err
	}
	if !known {
		return util.ErrFactNotFound
	}
	return nil
}

// updateFactMastery 事务内的状态机推进，首次评估时惰性创建等级 1 的记录
func updateFactMastery(tx *gorm.DB, learnerID uint, factID string, perf model.FactPerformance, policy MasteryPolicy) (*model.MasteryUpdateResult, error) {
	var m model.FactMastery
	err := tx.Where("learner_id = ? AND fact_id = ?", learnerID, factID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		m = model.FactMastery{
			LearnerID:     learnerID,
			FactID:        factID,
			BoundaryLevel: model.MinBoundaryLevel,
		}
		if err := tx.Create(&m).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	previousLevel := m.BoundaryLevel
	next := transitionMastery(m, perf, policy)
	next.LastSeenAt = time.Now()

	err = tx.Model(&model.FactMastery{}).
		Where("learner_id = ? AND fact_id = ?", learnerID, factID).
		Updates(map[string]interface{}{
			"boundary_level":        next.BoundaryLevel,
			"mastery_score":         next.MasteryScore,
			"consecutive_correct":   next.ConsecutiveCorrect,
			"consecutive_incorrect": next.ConsecutiveIncorrect,
			"last_seen_at":          next.LastSeenAt,
		}).Error
	if err != nil {
		return nil, err
	}

	return &model.MasteryUpdateResult{
		FactID:        factID,
		PreviousLevel: previousLevel,
		NewLevel:      next.BoundaryLevel,
		LevelChanged:  next.BoundaryLevel != previousLevel,
		MasteryScore:  next.MasteryScore,
	}, nil
}
