package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	err := invalidInput("FitForest", "%d rows", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrUndefinedMetric)
	assert.Equal(t, "FitForest: invalid input: 0 rows", err.Error())

	wrapped := fmt.Errorf("train: %w", err)
	var me *Error
	assert.True(t, errors.As(wrapped, &me))
	assert.Equal(t, "FitForest", me.Op)

	cause := errors.New("bad cell")
	err = invalidInputErr("NewDataset", cause)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, cause)
}
