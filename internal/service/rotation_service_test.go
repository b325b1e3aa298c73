package service

import (
	"testing"

	"math_edu_backend/internal/model"
	"math_edu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeCreatesTripleHelix(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)

	state, err := f.rotation.Initialize(learner.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state.Version)
	assert.Equal(t, 0, state.RotationCount)

	var paths []model.LearningPath
	require.NoError(t, f.db.Where("learner_id = ?", learner.ID).Find(&paths).Error)
	require.Len(t, paths, 3)

	active, preparing := 0, 0
	for _, p := range paths {
		assert.Equal(t, 2, p.Difficulty)
		assert.True(t, state.Owns(p.ID))
		switch p.Status {
		case model.PathStatusActive:
			active++
		case model.PathStatusPreparing:
			preparing++
		}
	}
	assert.Equal(t, 1, active)
	assert.Equal(t, 2, preparing)
}

func TestInitializeInvalidDifficulty(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)

	for _, d := range []int{0, -1, 6} {
		_, err := f.rotation.Initialize(learner.ID, d)
		assert.ErrorIs(t, err, util.ErrInvalidDifficulty)
	}
}

func TestInitializeUnknownLearner(t *testing.T) {
	f := newFixture(t)

	_, err := f.rotation.Initialize(999, 2)
	assert.ErrorIs(t, err, util.ErrLearnerNotFound)
}

func TestInitializeTwiceFails(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)

	_, err := f.rotation.Initialize(learner.ID, 2)
	require.NoError(t, err)

	_, err = f.rotation.Initialize(learner.ID, 3)
	assert.ErrorIs(t, err, util.ErrAlreadyInitialized)
}

func TestRotatePeriodThree(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)

	state, err := f.rotation.Initialize(learner.ID, 2)
	require.NoError(t, err)
	original := state.ActivePathID
	front := state.PreparingFrontID

	r1, err := f.rotation.Rotate(learner.ID)
	require.NoError(t, err)
	assert.Equal(t, original, r1.PreviousActivePathID)
	assert.Equal(t, front, r1.ActivePathID)
	assert.Equal(t, 1, r1.RotationCount)

	r2, err := f.rotation.Rotate(learner.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, r2.RotationCount)

	// 三次轮换回到原点
	r3, err := f.rotation.Rotate(learner.ID)
	require.NoError(t, err)
	assert.Equal(t, original, r3.ActivePathID)
	assert.Equal(t, 3, r3.RotationCount)

	var fresh model.TripleHelixState
	require.NoError(t, f.db.Where("learner_id = ?", learner.ID).First(&fresh).Error)
	assert.Equal(t, int64(4), fresh.Version) // 初始 1 + 三次轮换
	assert.NotNil(t, fresh.LastRotationAt)
}

func TestRotateSwapsPathRoles(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)

	state, err := f.rotation.Initialize(learner.ID, 2)
	require.NoError(t, err)

	// 给演出路径一个正在练习的单元
	unit := f.createUnit(t, state.ActivePathID, 1)
	require.NoError(t, f.db.Model(&model.LearningPath{}).Where("id = ?", state.ActivePathID).
		Update("current_unit_id", unit.ID).Error)

	demotedID := state.ActivePathID
	_, err = f.rotation.Rotate(learner.ID)
	require.NoError(t, err)

	var demoted model.LearningPath
	require.NoError(t, f.db.Where("id = ?", demotedID).First(&demoted).Error)
	assert.Equal(t, model.PathStatusPreparing, demoted.Status)
	assert.Nil(t, demoted.CurrentUnitID)
	// 当前单元存回 next，下次晋升时恢复
	require.NotNil(t, demoted.NextUnitID)
	assert.Equal(t, unit.ID, *demoted.NextUnitID)
}

func TestRotateWithoutInitialize(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)

	_, err := f.rotation.Rotate(learner.ID)
	assert.ErrorIs(t, err, util.ErrNoTripleHelix)
}

func TestUpdateDifficulty(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)

	state, err := f.rotation.Initialize(learner.ID, 2)
	require.NoError(t, err)

	path, err := f.rotation.UpdateDifficulty(learner.ID, state.PreparingFrontID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, path.Difficulty)

	// 其余路径不受影响
	var others []model.LearningPath
	require.NoError(t, f.db.Where("learner_id = ? AND id <> ?", learner.ID, path.ID).Find(&others).Error)
	for _, p := range others {
		assert.Equal(t, 2, p.Difficulty)
	}

	// 每次变更都推进版本
	var fresh model.TripleHelixState
	require.NoError(t, f.db.Where("learner_id = ?", learner.ID).First(&fresh).Error)
	assert.Equal(t, int64(2), fresh.Version)
}

func TestUpdateDifficultyForeignPath(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)
	other := f.createLearner(t)

	_, err := f.rotation.Initialize(learner.ID, 2)
	require.NoError(t, err)
	otherState, err := f.rotation.Initialize(other.ID, 2)
	require.NoError(t, err)

	// 别人的路径对本学习者不可见
	_, err = f.rotation.UpdateDifficulty(learner.ID, otherState.ActivePathID, 4)
	assert.ErrorIs(t, err, util.ErrPathNotFound)
}

func TestUpdateDifficultyInvalid(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)

	state, err := f.rotation.Initialize(learner.ID, 2)
	require.NoError(t, err)

	_, err = f.rotation.UpdateDifficulty(learner.ID, state.ActivePathID, 9)
	assert.ErrorIs(t, err, util.ErrInvalidDifficulty)
}
