package util

import "errors"

var (
	ErrLearnerNotFound        = errors.New("learner not found")
	ErrPathNotFound           = errors.New("learning path not found")
	ErrFactNotFound           = errors.New("fact not found")
	ErrUnitNotFound           = errors.New("content unit not found")
	ErrNoMasteryData          = errors.New("no mastery data for fact")
	ErrNoTripleHelix          = errors.New("triple helix state not initialized")
	ErrInvalidPerformanceData = errors.New("invalid performance data")
	ErrInvalidDifficulty      = errors.New("difficulty must be between 1 and 5")
	ErrInvalidLevel           = errors.New("boundary level must be between 1 and 5")
	ErrAlreadyInitialized     = errors.New("already initialized")
	ErrPositionOccupied       = errors.New("position already occupied")
	ErrNoUnitsAvailable       = errors.New("no units available at position 1")
	ErrRotationFailed         = errors.New("rotation failed: missing preparing path")
	ErrRepositioningFailed    = errors.New("repositioning failed: path has no units")
	ErrConflict               = errors.New("stale version, state was modified concurrently")
)

// 错误码需原样透传到日志与分析端，外层只做文案翻译
var errorCodes = map[error]string{
	ErrLearnerNotFound:        "USER_NOT_FOUND",
	ErrPathNotFound:           "PATH_NOT_FOUND",
	ErrFactNotFound:           "FACT_NOT_FOUND",
	ErrUnitNotFound:           "UNIT_NOT_FOUND",
	ErrNoMasteryData:          "NO_MASTERY_DATA",
	ErrNoTripleHelix:          "NO_TRIPLE_HELIX",
	ErrInvalidPerformanceData: "INVALID_PERFORMANCE_DATA",
	ErrInvalidDifficulty:      "INVALID_DIFFICULTY",
	ErrInvalidLevel:           "INVALID_LEVEL",
	ErrAlreadyInitialized:     "ALREADY_INITIALIZED",
	ErrPositionOccupied:       "POSITION_OCCUPIED",
	ErrNoUnitsAvailable:       "NO_UNITS_AVAILABLE",
	ErrRotationFailed:         "ROTATION_FAILED",
	ErrRepositioningFailed:    "REPOSITIONING_FAILED",
	ErrConflict:               "CONFLICT",
}

// CodeOf 返回调度器错误对应的稳定错误码，未知错误返回 INTERNAL_ERROR
func CodeOf(err error) string {
	for sentinel, code := range errorCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return "INTERNAL_ERROR"
}

// IsSchedulerError 判断错误是否属于调度器错误分类
func IsSchedulerError(err error) bool {
	for sentinel := range errorCodes {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
