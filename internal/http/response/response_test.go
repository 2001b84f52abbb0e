package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/account-service/internal/models"
)

func TestOKWithData(t *testing.T) {
	data := map[string]string{"key": "value"}
	resp := OKWithData(data)

	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, data, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("something went wrong")

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "something went wrong", resp.Error)
}

func TestValidationError(t *testing.T) {
	type TestStruct struct {
		Name  string `validate:"required"`
		Email string `validate:"email"`
	}

	err := validator.New().Struct(TestStruct{Email: "not-an-email"})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Name is a required field")
	assert.Contains(t, resp.Error, "field Email must be a valid email")
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"password mismatch", fmt.Errorf("op: %w", models.ErrPasswordMismatch), http.StatusBadRequest, "passwords don't match"},
		{"username taken", fmt.Errorf("op: %w", models.ErrUsernameTaken), http.StatusBadRequest, "username already taken"},
		{"email taken", models.ErrEmailTaken, http.StatusBadRequest, "email already registered"},
		{"invalid credentials", models.ErrInvalidCredentials, http.StatusBadRequest, "invalid credentials"},
		{"email not found", models.ErrEmailNotFound, http.StatusBadRequest, "email not found"},
		{"invalid email", models.ErrInvalidEmail, http.StatusBadRequest, "invalid email"},
		{"storage failure hides details", fmt.Errorf("op: %w: %w", models.ErrStorageFailure, errors.New("dial tcp 10.0.0.1")), http.StatusInternalServerError, "internal error"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := FromError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, resp.Error)
		})
	}
}

func TestNext(t *testing.T) {
	t.Run("form gets see other", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader("a=b"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()

		Next(rec, req, "/login", nil)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("json gets envelope", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		Next(rec, req, "/login", map[string]string{"username": "alice"})

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp Response
		require.NoError(t, render.DecodeJSON(rec.Body, &resp))
		assert.Equal(t, StatusOK, resp.Status)
		assert.Equal(t, "/login", resp.Next)
	})
}

func TestFail(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()

	Fail(rec, req, models.ErrInvalidCredentials)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}
