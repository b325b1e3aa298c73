package service

import (
	"testing"

	"math_edu_backend/internal/model"
	"math_edu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextSkipNumber(t *testing.T) {
	cases := []struct {
		current int
		want    int
	}{
		{4, 8},
		{8, 15},
		{15, 30},
		{30, 100},
		{100, 1000},
		{1000, 1000}, // 封顶
		{0, 4},       // 不在序列内回到起点
		{7, 4},
		{2000, 1000},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, model.NextSkipNumber(c.current), "current=%d", c.current)
	}
}

func TestRepositionFirstPerfectCompletion(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)
	path := f.createPath(t, learner.ID, "active")

	a := f.createUnit(t, path.ID, 1)
	b := f.createUnit(t, path.ID, 2)
	c := f.createUnit(t, path.ID, 3)
	d := f.createUnit(t, path.ID, 4)
	e := f.createUnit(t, path.ID, 5)

	result, err := f.reposer.Reposition(learner.ID, a.ID, perfectRound())
	require.NoError(t, err)

	// 首次完成用序列起点 4，不推进
	assert.Equal(t, 4, result.SkipNumber)
	assert.Equal(t, 1, result.PreviousPosition)
	assert.Equal(t, 4, result.NewPosition)

	// 后续单元前移一格，完成的单元停在 4
	assert.Equal(t, map[int]string{
		1: b.ID, 2: c.ID, 3: d.ID, 4: a.ID, 5: e.ID,
	}, f.positionsOf(t, path.ID))
}

func TestRepositionPerfectAdvancesSkipNumber(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)
	path := f.createPath(t, learner.ID, "active")

	a := f.createUnit(t, path.ID, 1)
	for i := 2; i <= 10; i++ {
		f.createUnit(t, path.ID, i)
	}

	// 首轮完美后 a 的间隔数为 4
	_, err := f.reposer.Reposition(learner.ID, a.ID, perfectRound())
	require.NoError(t, err)

	// 模拟 a 再次到达队首
	resetToFront(t, f, path.ID, a.ID)

	result, err := f.reposer.Reposition(learner.ID, a.ID, perfectRound())
	require.NoError(t, err)
	assert.Equal(t, 8, result.SkipNumber)
	assert.Equal(t, 8, result.NewPosition)
}

func TestRepositionClampsAtSequenceEnd(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)
	path := f.createPath(t, learner.ID, "active")

	a := f.createUnit(t, path.ID, 1)
	f.createUnit(t, path.ID, 2)

	// 已在序列顶端且非首次完成
	require.NoError(t, f.db.Model(&model.ContentUnit{}).Where("id = ?", a.ID).
		Update("skip_number", 1000).Error)
	require.NoError(t, f.db.Create(&model.UnitProgress{
		LearnerID: learner.ID, UnitID: a.ID, CompletionCount: 6,
		CorrectCount: 120, TotalCount: 120,
	}).Error)

	result, err := f.reposer.Reposition(learner.ID, a.ID, perfectRound())
	require.NoError(t, err)
	assert.Equal(t, 1000, result.SkipNumber)
	assert.Equal(t, 1000, result.NewPosition)
}

func TestRepositionImperfectStaysAtFront(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)
	path := f.createPath(t, learner.ID, "active")

	a := f.createUnit(t, path.ID, 1)
	b := f.createUnit(t, path.ID, 2)

	// 非首次、间隔数已推进到 15
	require.NoError(t, f.db.Model(&model.ContentUnit{}).Where("id = ?", a.ID).
		Update("skip_number", 15).Error)
	require.NoError(t, f.db.Create(&model.UnitProgress{
		LearnerID: learner.ID, UnitID: a.ID, CompletionCount: 2,
		CorrectCount: 40, TotalCount: 40,
	}).Error)

	result, err := f.reposer.Reposition(learner.ID, a.ID, imperfectRound())
	require.NoError(t, err)

	// 留在位置 1，间隔数打回 4
	assert.Equal(t, 1, result.NewPosition)
	assert.Equal(t, 4, result.SkipNumber)
	assert.Equal(t, map[int]string{1: a.ID, 2: b.ID}, f.positionsOf(t, path.ID))

	var unit model.ContentUnit
	require.NoError(t, f.db.Where("id = ?", a.ID).First(&unit).Error)
	assert.Equal(t, 4, unit.SkipNumber)
}

func TestRepositionAccumulatesProgress(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)
	path := f.createPath(t, learner.ID, "active")

	a := f.createUnit(t, path.ID, 1)
	f.createUnit(t, path.ID, 2)

	_, err := f.reposer.Reposition(learner.ID, a.ID, imperfectRound())
	require.NoError(t, err)
	_, err = f.reposer.Reposition(learner.ID, a.ID, perfectRound())
	require.NoError(t, err)

	var prog model.UnitProgress
	require.NoError(t, f.db.Where("learner_id = ? AND unit_id = ?", learner.ID, a.ID).First(&prog).Error)
	assert.Equal(t, 2, prog.CompletionCount)
	assert.Equal(t, 37, prog.CorrectCount)
	assert.Equal(t, 40, prog.TotalCount)
}

func TestRepositionEmptyPathFails(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)
	path := f.createPath(t, learner.ID, "active")

	a := f.createUnit(t, path.ID, 0) // 未入队

	_, err := f.reposer.Reposition(learner.ID, a.ID, perfectRound())
	assert.ErrorIs(t, err, util.ErrRepositioningFailed)
}

func TestRepositionUnknownUnit(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)

	_, err := f.reposer.Reposition(learner.ID, "no-such-unit", perfectRound())
	assert.ErrorIs(t, err, util.ErrUnitNotFound)
}

func TestRepositionInvalidPerformance(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)
	path := f.createPath(t, learner.ID, "active")
	a := f.createUnit(t, path.ID, 1)

	cases := []model.RoundPerformance{
		{CorrectCount: 5, TotalCount: 0},
		{CorrectCount: -1, TotalCount: 20},
		{CorrectCount: 21, TotalCount: 20},
		{CorrectCount: 20, TotalCount: 20, AverageResponseTimeMs: -1},
	}
	for _, perf := range cases {
		_, err := f.reposer.Reposition(learner.ID, a.ID, perf)
		assert.ErrorIs(t, err, util.ErrInvalidPerformanceData)
	}

	// 校验失败不产生任何变更
	assert.Equal(t, map[int]string{1: a.ID}, f.positionsOf(t, path.ID))
}

// resetToFront 把单元搬回位置 1，其余占位依序后排
func resetToFront(t *testing.T, f *fixture, pathID, unitID string) {
	t.Helper()
	var ps []model.PathPosition
	require.NoError(t, f.db.Where("path_id = ?", pathID).Order("position asc").Find(&ps).Error)
	require.NoError(t, f.db.Where("path_id = ?", pathID).Delete(&model.PathPosition{}).Error)

	next := 2
	require.NoError(t, f.db.Create(&model.PathPosition{PathID: pathID, Position: 1, UnitID: unitID}).Error)
	for _, p := range ps {
		if p.UnitID == unitID {
			continue
		}
		require.NoError(t, f.db.Create(&model.PathPosition{PathID: pathID, Position: next, UnitID: p.UnitID}).Error)
		next++
	}
}
