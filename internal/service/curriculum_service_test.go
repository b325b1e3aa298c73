package service

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"math_edu_backend/internal/model"
	"math_edu_backend/internal/repository"
	"math_edu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPackSource 用内存 JSON 替代对象存储
type stubPackSource struct {
	payload string
}

func (s *stubPackSource) Fetch(ctx context.Context, objectName string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.payload)), nil
}

func newCurriculum(f *fixture, source PackSource) *CurriculumService {
	return NewCurriculumService(
		f.db,
		repository.NewContentRepository(f.db),
		repository.NewPathRepository(f.db),
		source,
	)
}

func TestCreateUnitAssignsPosition(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)
	path := f.createPath(t, learner.ID, "preparing")
	f.createFact(t, "4x6")
	svc := newCurriculum(f, nil)

	unit, err := svc.CreateUnit(path.ID, "四六二十四", 3, 2, []string{"4x6"})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSkipNumber, unit.SkipNumber)
	assert.Equal(t, map[int]string{3: unit.ID}, f.positionsOf(t, path.ID))

	var links []model.UnitFact
	require.NoError(t, f.db.Where("unit_id = ?", unit.ID).Find(&links).Error)
	require.Len(t, links, 1)
	assert.Equal(t, "4x6", links[0].FactID)
}

func TestCreateUnitOccupiedPosition(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)
	path := f.createPath(t, learner.ID, "preparing")
	f.createFact(t, "4x6")
	f.createUnit(t, path.ID, 3)
	svc := newCurriculum(f, nil)

	_, err := svc.CreateUnit(path.ID, "冲突", 3, 2, []string{"4x6"})
	assert.ErrorIs(t, err, util.ErrPositionOccupied)

	// 失败时单元与关联都不落库
	var count int64
	require.NoError(t, f.db.Model(&model.ContentUnit{}).Where("name = ?", "冲突").Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateUnitValidation(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)
	path := f.createPath(t, learner.ID, "preparing")
	f.createFact(t, "4x6")
	svc := newCurriculum(f, nil)

	_, err := svc.CreateUnit("no-such-path", "x", 1, 2, []string{"4x6"})
	assert.ErrorIs(t, err, util.ErrPathNotFound)

	_, err = svc.CreateUnit(path.ID, "x", 1, 9, []string{"4x6"})
	assert.ErrorIs(t, err, util.ErrInvalidLevel)

	_, err = svc.CreateUnit(path.ID, "x", 1, 2, []string{"no-such-fact"})
	assert.ErrorIs(t, err, util.ErrFactNotFound)
}

func TestImportPack(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)
	path := f.createPath(t, learner.ID, "preparing")

	pack := CurriculumPack{
		Facts: []PackFact{
			{ID: "7x7", Statement: "7×7=49"},
			{ID: "7x8", Statement: "7×8=56"},
		},
		Units: []PackUnit{
			{PathID: path.ID, Name: "七的乘法 A", Position: 1, BoundaryLevel: 2, FactIDs: []string{"7x7"}},
			{PathID: path.ID, Name: "七的乘法 B", Position: 2, BoundaryLevel: 2, FactIDs: []string{"7x7", "7x8"}},
		},
	}
	payload, err := json.Marshal(pack)
	require.NoError(t, err)

	svc := newCurriculum(f, &stubPackSource{payload: string(payload)})
	result, err := svc.ImportPack(context.Background(), "pack.json")
	require.NoError(t, err)
	assert.Equal(t, 2, result.FactsImported)
	assert.Equal(t, 2, result.UnitsImported)

	positions := f.positionsOf(t, path.ID)
	assert.Len(t, positions, 2)
}

func TestImportPackRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	learner := f.createLearner(t)
	path := f.createPath(t, learner.ID, "preparing")

	// 第二个单元引用不存在的事实，整包回滚
	pack := CurriculumPack{
		Facts: []PackFact{{ID: "9x9", Statement: "9×9=81"}},
		Units: []PackUnit{
			{PathID: path.ID, Name: "好单元", Position: 1, BoundaryLevel: 2, FactIDs: []string{"9x9"}},
			{PathID: path.ID, Name: "坏单元", Position: 2, BoundaryLevel: 2, FactIDs: []string{"missing"}},
		},
	}
	payload, err := json.Marshal(pack)
	require.NoError(t, err)

	svc := newCurriculum(f, &stubPackSource{payload: string(payload)})
	_, err = svc.ImportPack(context.Background(), "pack.json")
	assert.ErrorIs(t, err, util.ErrFactNotFound)

	assert.Empty(t, f.positionsOf(t, path.ID))
	var count int64
	require.NoError(t, f.db.Model(&model.Fact{}).Count(&count).Error)
	assert.Zero(t, count)
}
