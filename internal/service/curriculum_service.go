package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"math_edu_backend/internal/model"
	"math_edu_backend/internal/repository"
	"math_edu_backend/internal/util"
	"math_edu_backend/pkg/logger"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PackSource 课程包来源抽象，生产环境为 MinIO 桶
type PackSource interface {
	Fetch(ctx context.Context, objectName string) (io.ReadCloser, error)
}

// MinioPackSource 从 MinIO 对象存储拉取课程包
type MinioPackSource struct {
	Client *minio.Client
	Bucket string
}

func NewMinioPackSource(client *minio.Client, bucket string) *MinioPackSource {
	return &MinioPackSource{Client: client, Bucket: bucket}
}

func (s *MinioPackSource) Fetch(ctx context.Context, objectName string) (io.ReadCloser, error) {
	return s.Client.GetObject(ctx, s.Bucket, objectName, minio.GetObjectOptions{})
}

// CurriculumPack 课程包文件格式：事实登记表加按路径组织的单元
type CurriculumPack struct {
	Facts []PackFact `json:"facts"`
	Units []PackUnit `json:"units"`
}

type PackFact struct {
	ID        string `json:"id"`
	Statement string `json:"statement"`
}

type PackUnit struct {
	PathID        string   `json:"pathId"`
	Name          string   `json:"name"`
	Position      int      `json:"position"`
	BoundaryLevel int      `json:"boundaryLevel"`
	FactIDs       []string `json:"factIds"`
}

// CurriculumService 课程内容的管理端写入口：课程包批量导入与单件 authoring。
// 调度核心对内容只读，全部写入集中在这里。
type CurriculumService struct {
	DB      *gorm.DB
	Content *repository.ContentRepository
	Paths   *repository.PathRepository
	Source  PackSource
}

func NewCurriculumService(
	db *gorm.DB,
	content *repository.ContentRepository,
	paths *repository.PathRepository,
	source PackSource,
) *CurriculumService {
	return &CurriculumService{
		DB:      db,
		Content: content,
		Paths:   paths,
		Source:  source,
	}
}

// ImportResult 一次课程包导入的统计
type ImportResult struct {
	FactsImported int `json:"factsImported"`
	UnitsImported int `json:"unitsImported"`
}

// ImportPack 从对象存储拉取课程包并整包导入，任何一条记录失败整体回滚。
// 事实按主键 upsert，重复导入同一个包是幂等的语义错误以外不会报错。
func (s *CurriculumService) ImportPack(ctx context.Context, objectName string) (*ImportResult, error) {
	rc, err := s.Source.Fetch(ctx, objectName)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var pack CurriculumPack
	if err := json.NewDecoder(rc).Decode(&pack); err != nil {
		return nil, err
	}

	result := &ImportResult{}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, f := range pack.Facts {
			fact := model.Fact{ID: f.ID, Statement: f.Statement}
			if err := tx.Where("id = ?", f.ID).Assign(fact).FirstOrCreate(&model.Fact{}).Error; err != nil {
				return err
			}
			result.FactsImported++
		}

		for _, u := range pack.Units {
			if _, err := createUnit(tx, u.PathID, u.Name, u.Position, u.BoundaryLevel, u.FactIDs); err != nil {
				return err
			}
			result.UnitsImported++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("课程包导入完成",
		zap.String("object", objectName),
		zap.Int("facts", result.FactsImported),
		zap.Int("units", result.UnitsImported))
	return result, nil
}

// CreateUnit 向路径队列添加单件内容，目标位置已占用时报 POSITION_OCCUPIED
func (s *CurriculumService) CreateUnit(pathID, name string, position, boundaryLevel int, factIDs []string) (*model.ContentUnit, error) {
	var unit *model.ContentUnit
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		u, err := createUnit(tx, pathID, name, position, boundaryLevel, factIDs)
		if err != nil {
			return err
		}
		unit = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

func createUnit(tx *gorm.DB, pathID, name string, position, boundaryLevel int, factIDs []string) (*model.ContentUnit, error) {
	if !model.ValidBoundaryLevel(boundaryLevel) {
		return nil, util.ErrInvalidLevel
	}
	if position < 1 {
		return nil, errors.New("position must be a positive integer")
	}

	var path model.LearningPath
	if err := tx.Where("id = ?", pathID).First(&path).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPathNotFound
		}
		return nil, err
	}

	for _, factID := range factIDs {
		var count int64
		if err := tx.Model(&model.Fact{}).Where("id = ?", factID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, util.ErrFactNotFound
		}
	}

	unit := &model.ContentUnit{
		PathID:        pathID,
		Name:          name,
		SkipNumber:    model.DefaultSkipNumber,
		BoundaryLevel: boundaryLevel,
	}
	if err := tx.Create(unit).Error; err != nil {
		return nil, err
	}

	for _, factID := range factIDs {
		if err := tx.Create(&model.UnitFact{UnitID: unit.ID, FactID: factID}).Error; err != nil {
			return nil, err
		}
	}

	if err := assignPosition(tx, pathID, position, unit.ID); err != nil {
		return nil, err
	}
	return unit, nil
}
