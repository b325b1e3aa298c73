package service

import (
	"testing"

	"math_edu_backend/internal/config"
	"math_edu_backend/internal/model"
	"math_edu_backend/internal/repository"
	"math_edu_backend/pkg/database"
	"math_edu_backend/pkg/logger"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func testSchedulerConfig() *config.SchedulerConfig {
	cfg := &config.SchedulerConfig{}
	cfg.ApplyDefaults()
	return cfg
}

// fixture 聚合一套完整的服务栈，各测试按需取用
type fixture struct {
	db        *gorm.DB
	position  *PositionService
	reposer   *RepositioningService
	rotation  *RotationService
	mastery   *MasteryService
	scheduler *SchedulerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	cfg := testSchedulerConfig()
	locks := NewLearnerLocks()

	learners := repository.NewLearnerRepository(db)
	paths := repository.NewPathRepository(db)
	positions := repository.NewPositionRepository(db)
	content := repository.NewContentRepository(db)
	progress := repository.NewProgressRepository(db)
	masteryRepo := repository.NewMasteryRepository(db)

	mastery := NewMasteryService(db, masteryRepo, content, learners, cfg)
	rotation := NewRotationService(db, paths, learners, locks)

	return &fixture{
		db:       db,
		position: NewPositionService(db, positions),
		reposer:  NewRepositioningService(db, content, progress),
		rotation: rotation,
		mastery:  mastery,
		scheduler: NewSchedulerService(
			db, learners, paths, content, progress,
			mastery, rotation, NoopAnalyticsSink{}, locks, cfg,
		),
	}
}

func (f *fixture) createLearner(t *testing.T) *model.Learner {
	t.Helper()
	learner := &model.Learner{DisplayName: "测试学习者", Role: model.RoleLearner}
	require.NoError(t, f.db.Create(learner).Error)
	return learner
}

func (f *fixture) createPath(t *testing.T, learnerID uint, status string) *model.LearningPath {
	t.Helper()
	path := &model.LearningPath{
		LearnerID:  learnerID,
		Name:       "tube-test",
		Difficulty: 2,
		Status:     status,
	}
	require.NoError(t, f.db.Create(path).Error)
	return path
}

func (f *fixture) createFact(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.db.Create(&model.Fact{ID: id, Statement: id}).Error)
}

func (f *fixture) createUnit(t *testing.T, pathID string, position int, factIDs ...string) *model.ContentUnit {
	t.Helper()
	unit := &model.ContentUnit{
		PathID:        pathID,
		Name:          "unit",
		SkipNumber:    model.DefaultSkipNumber,
		BoundaryLevel: 2,
	}
	require.NoError(t, f.db.Create(unit).Error)
	for _, factID := range factIDs {
		require.NoError(t, f.db.Create(&model.UnitFact{UnitID: unit.ID, FactID: factID}).Error)
	}
	if position > 0 {
		require.NoError(t, f.position.Assign(pathID, position, unit.ID))
	}
	return unit
}

func (f *fixture) positionsOf(t *testing.T, pathID string) map[int]string {
	t.Helper()
	var ps []model.PathPosition
	require.NoError(t, f.db.Where("path_id = ?", pathID).Find(&ps).Error)
	out := make(map[int]string, len(ps))
	for _, p := range ps {
		out[p.Position] = p.UnitID
	}
	return out
}

func perfectRound() model.RoundPerformance {
	return model.RoundPerformance{CorrectCount: 20, TotalCount: 20, AverageResponseTimeMs: 2500}
}

func imperfectRound() model.RoundPerformance {
	return model.RoundPerformance{CorrectCount: 17, TotalCount: 20, AverageResponseTimeMs: 4000}
}
