package util

import (
	"math_edu_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	ErrorCode string      `json:"errorCode,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// 调度器错误码到 HTTP 状态码的映射
var statusByCode = map[string]int{
	"USER_NOT_FOUND":           http.StatusNotFound,
	"PATH_NOT_FOUND":           http.StatusNotFound,
	"FACT_NOT_FOUND":           http.StatusNotFound,
	"UNIT_NOT_FOUND":           http.StatusNotFound,
	"NO_MASTERY_DATA":          http.StatusNotFound,
	"NO_TRIPLE_HELIX":          http.StatusNotFound,
	"INVALID_PERFORMANCE_DATA": http.StatusBadRequest,
	"INVALID_DIFFICULTY":       http.StatusBadRequest,
	"INVALID_LEVEL":            http.StatusBadRequest,
	"ALREADY_INITIALIZED":      http.StatusConflict,
	"POSITION_OCCUPIED":        http.StatusConflict,
	"NO_UNITS_AVAILABLE":       http.StatusConflict,
	"ROTATION_FAILED":          http.StatusConflict,
	"REPOSITIONING_FAILED":     http.StatusConflict,
	"CONFLICT":                 http.StatusConflict,
}

// SchedulerError 按错误分类返回响应，错误码原样下发
func SchedulerError(c *gin.Context, err error) {
	code := CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		LogInternalError(c, err)
		return
	}

	logger.Log.Warn("scheduler operation rejected",
		zap.String("errorCode", code),
		zap.Error(err),
	)
	c.JSON(status, Response{
		Code:      status,
		Message:   err.Error(),
		ErrorCode: code,
	})
}
