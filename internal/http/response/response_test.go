package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOKWithData(t *testing.T) {
	resp := OKWithData(map[string]any{"id": 1})
	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("something broke")
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "something broke", resp.Error)
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Title  string `validate:"required,max=5"`
		Email  string `validate:"omitempty,email"`
		Status string `validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	}

	validate := validator.New()

	tests := []struct {
		name    string
		in      payload
		wantSub string
	}{
		{"пустое обязательное поле", payload{}, "field Title is a required field"},
		{"слишком длинное поле", payload{Title: "too long title"}, "field Title is longer than allowed"},
		{"неверный email", payload{Title: "ok", Email: "not-an-email"}, "field Email must be a valid email address"},
		{"значение вне списка", payload{Title: "ok", Status: "FINISHED"}, "field Status must be one of: TODO IN_PROGRESS DONE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.in)
			require.Error(t, err)
			resp := ValidationError(err.(validator.ValidationErrors))
			assert.Equal(t, StatusError, resp.Status)
			assert.Contains(t, resp.Error, tt.wantSub)
		})
	}
}
