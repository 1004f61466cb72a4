package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"access_code" validate:"omitempty,min=4"`
}

func TestValidate_ReportsJSONNames(t *testing.T) {
	errs := Validate(&sample{Code: "12"})
	assert.Equal(t, map[string]string{"name": "required", "access_code": "min"}, errs)
}

func TestValidate_Valid(t *testing.T) {
	assert.Nil(t, Validate(&sample{Name: "Tower A", Code: "1111"}))
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("en", "required,len=2,alpha"))
	assert.Error(t, Var("eng", "required,len=2,alpha"))
}
