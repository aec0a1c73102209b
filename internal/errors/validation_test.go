package errors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/serumrl/map-engine/internal/errors"
)

func TestValidationBuilderEmpty(t *testing.T) {
	vb := errors.NewValidationBuilder()
	assert.NoError(t, vb.Build())
}

func TestValidationBuilderFields(t *testing.T) {
	vb := errors.NewValidationBuilder()
	vb.RequiredField("Clock")
	vb.Fieldf("ViewDistance", "must be positive, got %d", -1)

	err := vb.Build()
	assert.Error(t, err)
	assert.Equal(t, errors.CodeInvalidArgument, errors.GetCode(err))

	meta := errors.GetMeta(err)
	assert.Contains(t, meta, "validation_errors")
}

func TestValidateHelpers(t *testing.T) {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("Name", "  ", vb)
	errors.ValidateRange("AlertLevel", 7, 0, 4, vb)
	errors.ValidatePositive("Width", 0, vb)

	err := vb.Build()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Name")
	assert.Contains(t, err.Error(), "AlertLevel")
	assert.Contains(t, err.Error(), "Width")
}
