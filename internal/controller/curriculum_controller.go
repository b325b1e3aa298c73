package controller

import (
	"math_edu_backend/internal/service"
	"math_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CurriculumController struct {
	Curriculum *service.CurriculumService
	Positions  *service.PositionService
}

func NewCurriculumController(curriculum *service.CurriculumService, positions *service.PositionService) *CurriculumController {
	return &CurriculumController{Curriculum: curriculum, Positions: positions}
}

type CreateUnitRequest struct {
	PathID        string   `json:"pathId" binding:"required"`
	Name          string   `json:"name" binding:"required"`
	Position      int      `json:"position" binding:"required,min=1"`
	BoundaryLevel int      `json:"boundaryLevel" binding:"required"`
	FactIDs       []string `json:"factIds" binding:"required,min=1"`
}

type ImportPackRequest struct {
	ObjectName string `json:"objectName" binding:"required"`
}

// @Summary 创建内容单元
// @Description 管理端向路径队列指定位置插入单元并关联事实
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateUnitRequest true "单元信息"
// @Success 201 {object} util.Response
// @Failure 409 {object} util.Response "目标位置已占用"
// @Router /api/admin/units [post]
func (c *CurriculumController) CreateUnit(ctx *gin.Context) {
	var req CreateUnitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	unit, err := c.Curriculum.CreateUnit(req.PathID, req.Name, req.Position, req.BoundaryLevel, req.FactIDs)
	if err != nil {
		util.SchedulerError(ctx, err)
		return
	}

	util.Created(ctx, unit)
}

// @Summary 压缩路径队列
// @Description 把占位重排为从 1 开始的连续整数，保持相对顺序，幂等
// @Tags 课程管理
// @Produce json
// @Security BearerAuth
// @Param pathId path string true "路径ID"
// @Success 200 {object} util.Response
// @Router /api/admin/paths/{pathId}/compress [post]
func (c *CurriculumController) CompressPath(ctx *gin.Context) {
	pathID := ctx.Param("pathId")
	if err := c.Positions.Compress(pathID); err != nil {
		util.SchedulerError(ctx, err)
		return
	}

	queue, err := c.Positions.ListOccupied(pathID)
	if err != nil {
		util.SchedulerError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"pathId": pathID, "queue": queue})
}

// @Summary 导入课程包
// @Description 从对象存储拉取 JSON 课程包并整包导入，失败整体回滚
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ImportPackRequest true "课程包对象名"
// @Success 200 {object} util.Response
// @Router /api/admin/curriculum/import [post]
func (c *CurriculumController) ImportPack(ctx *gin.Context) {
	var req ImportPackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Curriculum.ImportPack(ctx.Request.Context(), req.ObjectName)
	if err != nil {
		util.SchedulerError(ctx, err)
		return
	}

	util.Success(ctx, result)
}
