package controller

import (
	"math_edu_backend/internal/model"
	"math_edu_backend/internal/service"
	"math_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MasteryController struct {
	Mastery *service.MasteryService
}

func NewMasteryController(mastery *service.MasteryService) *MasteryController {
	return &MasteryController{Mastery: mastery}
}

// @Summary 获取全部边界等级说明
// @Tags 掌握
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/scheduler/boundary-levels [get]
func (c *MasteryController) ListBoundaryLevels(ctx *gin.Context) {
	util.Success(ctx, model.AllBoundaryLevels())
}

// @Summary 获取单个边界等级说明
// @Tags 掌握
// @Produce json
// @Security BearerAuth
// @Param level path int true "边界等级 (1-5)"
// @Success 200 {object} util.Response
// @Router /api/scheduler/boundary-levels/{level} [get]
func (c *MasteryController) GetBoundaryLevel(ctx *gin.Context) {
	level := util.MustParseInt(ctx.Param("level"))
	info, ok := model.BoundaryLevelDescription(level)
	if !ok {
		util.SchedulerError(ctx, util.ErrInvalidLevel)
		return
	}

	util.Success(ctx, info)
}

// @Summary 获取事实掌握状态
// @Description 当前边界等级、掌握分与连击计数
// @Tags 掌握
// @Produce json
// @Security BearerAuth
// @Param factId path string true "事实ID"
// @Success 200 {object} util.Response
// @Router /api/scheduler/mastery/{factId} [get]
func (c *MasteryController) GetMastery(ctx *gin.Context) {
	claims := util.GetLearnerFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	m, err := c.Mastery.GetMastery(claims.LearnerID, ctx.Param("factId"))
	if err != nil {
		util.SchedulerError(ctx, err)
		return
	}

	util.Success(ctx, m)
}
