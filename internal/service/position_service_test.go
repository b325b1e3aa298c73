package service

import (
	"testing"

	"math_edu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionAssignAndGet(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)
	path := f.createPath(t, learner.ID, "active")

	unit := f.createUnit(t, path.ID, 0)
	require.NoError(t, f.position.Assign(path.ID, 7, unit.ID))

	got, err := f.position.GetUnitAt(path.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, unit.ID, got)

	// 空位返回空串而不是错误
	got, err = f.position.GetUnitAt(path.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPositionAssignOccupied(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)
	path := f.createPath(t, learner.ID, "active")

	a := f.createUnit(t, path.ID, 3)
	b := f.createUnit(t, path.ID, 0)

	err := f.position.Assign(path.ID, 3, b.ID)
	assert.ErrorIs(t, err, util.ErrPositionOccupied)

	// 失败的插入不留痕迹
	got, err := f.position.GetUnitAt(path.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got)
}

func TestShiftRangeSkipsGaps(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)
	path := f.createPath(t, learner.ID, "active")

	// 稀疏占位: 2, 5, 9
	a := f.createUnit(t, path.ID, 2)
	b := f.createUnit(t, path.ID, 5)
	c := f.createUnit(t, path.ID, 9)

	require.NoError(t, f.position.ShiftRange(path.ID, 1, 9))

	got := f.positionsOf(t, path.ID)
	assert.Equal(t, map[int]string{1: a.ID, 4: b.ID, 8: c.ID}, got)
}

func TestShiftRangeOnlyTouchesRange(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)
	path := f.createPath(t, learner.ID, "active")

	a := f.createUnit(t, path.ID, 2)
	b := f.createUnit(t, path.ID, 10)

	require.NoError(t, f.position.ShiftRange(path.ID, 1, 4))

	got := f.positionsOf(t, path.ID)
	assert.Equal(t, map[int]string{1: a.ID, 10: b.ID}, got)
}

func TestCompressPreservesOrder(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)
	path := f.createPath(t, learner.ID, "active")

	a := f.createUnit(t, path.ID, 4)
	b := f.createUnit(t, path.ID, 15)
	c := f.createUnit(t, path.ID, 1000)

	require.NoError(t, f.position.Compress(path.ID))
	assert.Equal(t, map[int]string{1: a.ID, 2: b.ID, 3: c.ID}, f.positionsOf(t, path.ID))

	// 幂等：再压一次不变
	require.NoError(t, f.position.Compress(path.ID))
	assert.Equal(t, map[int]string{1: a.ID, 2: b.ID, 3: c.ID}, f.positionsOf(t, path.ID))
}

func TestCompressEmptyPath(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)
	path := f.createPath(t, learner.ID, "active")

	require.NoError(t, f.position.Compress(path.ID))
	assert.Empty(t, f.positionsOf(t, path.ID))
}
