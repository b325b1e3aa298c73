package util

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"math_edu_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	secret := "test-secret-test-secret-test-secret"

	token, err := GenerateJWT(42, model.RoleAdmin, secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.LearnerID)
	assert.Equal(t, model.RoleAdmin, claims.Role)

	_, err = ParseJWT(token, "wrong-secret")
	assert.Error(t, err)
}

func TestErrorCodes(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{ErrLearnerNotFound, "USER_NOT_FOUND"},
		{ErrPathNotFound, "PATH_NOT_FOUND"},
		{ErrFactNotFound, "FACT_NOT_FOUND"},
		{ErrNoMasteryData, "NO_MASTERY_DATA"},
		{ErrNoTripleHelix, "NO_TRIPLE_HELIX"},
		{ErrInvalidPerformanceData, "INVALID_PERFORMANCE_DATA"},
		{ErrInvalidDifficulty, "INVALID_DIFFICULTY"},
		{ErrInvalidLevel, "INVALID_LEVEL"},
		{ErrAlreadyInitialized, "ALREADY_INITIALIZED"},
		{ErrPositionOccupied, "POSITION_OCCUPIED"},
		{ErrNoUnitsAvailable, "NO_UNITS_AVAILABLE"},
		{ErrRotationFailed, "ROTATION_FAILED"},
		{ErrRepositioningFailed, "REPOSITIONING_FAILED"},
		{ErrConflict, "CONFLICT"},
	}
	for _, c := range cases {
		assert.Equal(t, c.code, CodeOf(c.err))
		assert.True(t, IsSchedulerError(c.err))
		// 包装后仍能识别
		wrapped := fmt.Errorf("round rejected: %w", c.err)
		assert.Equal(t, c.code, CodeOf(wrapped))
	}

	assert.Equal(t, "INTERNAL_ERROR", CodeOf(errors.New("boom")))
	assert.False(t, IsSchedulerError(errors.New("boom")))
}

func TestStatusByCodeCoversAllCodes(t *testing.T) {
	for _, code := range errorCodes {
		_, ok := statusByCode[code]
		assert.True(t, ok, "missing HTTP status for %s", code)
	}
}
