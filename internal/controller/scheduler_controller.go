package controller

import (
	"math_edu_backend/internal/model"
	"math_edu_backend/internal/service"
	"math_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SchedulerController struct {
	Scheduler *service.SchedulerService
	Rotation  *service.RotationService
}

func NewSchedulerController(scheduler *service.SchedulerService, rotation *service.RotationService) *SchedulerController {
	return &SchedulerController{Scheduler: scheduler, Rotation: rotation}
}

type InitializeLearnerRequest struct {
	DisplayName       string `json:"displayName" binding:"required"`
	InitialDifficulty int    `json:"initialDifficulty" binding:"required"`
}

type CompleteRoundRequest struct {
	UnitID                string  `json:"unitId" binding:"required"`
	CorrectCount          int     `json:"correctCount"`
	TotalCount            int     `json:"totalCount" binding:"required"`
	AverageResponseTimeMs float64 `json:"averageResponseTimeMs"`
	Version               int64   `json:"version"`
}

type UpdateDifficultyRequest struct {
	Difficulty int `json:"difficulty" binding:"required"`
}

// @Summary 学习者入学
// @Description 建档并创建三螺旋：一条演出路径加两条备稿路径
// @Tags 调度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body InitializeLearnerRequest true "入学信息"
// @Success 201 {object} util.Response
// @Router /api/scheduler/learners [post]
func (c *SchedulerController) InitializeLearner(ctx *gin.Context) {
	var req InitializeLearnerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	learner, state, err := c.Scheduler.InitializeLearner(req.DisplayName, req.InitialDifficulty)
	if err != nil {
		util.SchedulerError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"learner": learner, "state": state})
}

// @Summary 获取调度状态
// @Description 三螺旋状态（含版本号）、三条路径、单元进度与事实掌握
// @Tags 调度
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/scheduler/state [get]
func (c *SchedulerController) GetState(ctx *gin.Context) {
	claims := util.GetLearnerFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	state, err := c.Scheduler.GetState(claims.LearnerID)
	if err != nil {
		util.SchedulerError(ctx, err)
		return
	}

	util.Success(ctx, state)
}

// @Summary 获取下一个练习单元
// @Description 取路径位置 1 的单元；不传 pathId 时用当前演出路径
// @Tags 调度
// @Produce json
// @Security BearerAuth
// @Param pathId query string false "路径ID"
// @Success 200 {object} util.Response
// @Router /api/scheduler/next [get]
func (c *SchedulerController) GetNextUnit(ctx *gin.Context) {
	claims := util.GetLearnerFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Scheduler.GetNextUnit(claims.LearnerID, ctx.Query("pathId"))
	if err != nil {
		util.SchedulerError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 提交一轮成绩
// @Description 单事务执行重排、逐事实掌握更新与按配置的轮换；携带版本号做乐观并发控制
// @Tags 调度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CompleteRoundRequest true "轮次成绩"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "版本过期或状态冲突"
// @Router /api/scheduler/rounds [post]
func (c *SchedulerController) CompleteRound(ctx *gin.Context) {
	claims := util.GetLearnerFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CompleteRoundRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	perf := model.RoundPerformance{
		CorrectCount:          req.CorrectCount,
		TotalCount:            req.TotalCount,
		AverageResponseTimeMs: req.AverageResponseTimeMs,
	}
	result, err := c.Scheduler.CompleteRound(claims.LearnerID, req.UnitID, perf, req.Version)
	if err != nil {
		util.SchedulerError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 调整路径难度
// @Description 只影响目标路径，其余路径不变
// @Tags 调度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param pathId path string true "路径ID"
// @Param body body UpdateDifficultyRequest true "新难度 (1-5)"
// @Success 200 {object} util.Response
// @Router /api/scheduler/paths/{pathId}/difficulty [put]
func (c *SchedulerController) UpdateDifficulty(ctx *gin.Context) {
	claims := util.GetLearnerFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req UpdateDifficultyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	path, err := c.Rotation.UpdateDifficulty(claims.LearnerID, ctx.Param("pathId"), req.Difficulty)
	if err != nil {
		util.SchedulerError(ctx, err)
		return
	}

	util.Success(ctx, path)
}
