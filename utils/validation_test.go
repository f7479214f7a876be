package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Question  string `validate:"required,min=1,max=100"`
	TaskType  string `validate:"omitempty,oneof=general technical"`
	MaxTokens int    `validate:"omitempty,min=1,max=4096"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct", func(t *testing.T) {
		err := ValidateStruct(sampleRequest{Question: "What is Go?", TaskType: "general"})
		assert.NoError(t, err)
	})

	t.Run("missing required field", func(t *testing.T) {
		err := ValidateStruct(sampleRequest{})
		require.Error(t, err)
		require.True(t, IsValidationError(err))

		fields := GetValidationFields(err)
		assert.Contains(t, fields["Question"], "required")
	})

	t.Run("oneof violation", func(t *testing.T) {
		err := ValidateStruct(sampleRequest{Question: "q", TaskType: "poetry"})
		require.Error(t, err)

		fields := GetValidationFields(err)
		assert.Contains(t, fields["TaskType"], "must be one of")
	})

	t.Run("max violation", func(t *testing.T) {
		err := ValidateStruct(sampleRequest{Question: "q", MaxTokens: 10000})
		require.Error(t, err)

		fields := GetValidationFields(err)
		assert.Contains(t, fields["MaxTokens"], "at most")
	})
}

func TestIsValidationError(t *testing.T) {
	assert.False(t, IsValidationError(errors.New("plain error")))
	assert.False(t, IsValidationError(nil))

	err := ValidateStruct(sampleRequest{})
	assert.True(t, IsValidationError(err))
}

func TestGetValidationFields_NonValidationError(t *testing.T) {
	assert.Nil(t, GetValidationFields(errors.New("plain error")))
}
