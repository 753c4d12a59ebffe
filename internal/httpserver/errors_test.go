package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/tube_accounts/internal/service"
	"github.com/Skotchmaster/tube_accounts/internal/transport"
)

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{name: "bad request", err: &service.Error{Kind: service.ErrBadRequest, Message: "All fields are required"}, code: 400, message: "All fields are required"},
		{name: "unauthorized", err: &service.Error{Kind: service.ErrUnauthorized, Message: "Invalid access token"}, code: 401, message: "Invalid access token"},
		{name: "not found", err: &service.Error{Kind: service.ErrNotFound, Message: "User does not exist"}, code: 404, message: "User does not exist"},
		{name: "internal", err: &service.Error{Kind: service.ErrInternal, Message: "Something went wrong"}, code: 500, message: "Something went wrong"},
		{name: "plain error", err: errors.New("boom"), code: 500, message: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := toHTTPError(tt.err)
			assert.Equal(t, tt.code, he.Code)
			assert.Equal(t, tt.message, he.Message)
			assert.ErrorIs(t, he.Internal, tt.err)
		})
	}
}

func TestErrorHandler_Envelope(t *testing.T) {
	e := echo.New()

	render := func(err error) (int, transport.ErrorEnvelope) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		ErrorHandler(err, c)

		var env transport.ErrorEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		return rec.Code, env
	}

	code, env := render(echo.NewHTTPError(http.StatusNotFound, "channel does not exist"))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, transport.ErrorEnvelope{StatusCode: 404, Message: "channel does not exist", Success: false, Errors: []string{}}, env)

	code, env = render(&ValidationError{Fields: map[string]string{"password": "is required", "email": "must be a valid email"}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", env.Message)
	assert.Equal(t, []string{"email: must be a valid email", "password: is required"}, env.Errors)

	code, env = render(errors.New("db down"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", env.Message)
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&transport.UpdateAccountRequest{FullName: "Ann", Username: "ann", Email: "not-an-email"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, map[string]string{"email": "must be a valid email"}, ve.Fields)

	assert.NoError(t, v.Validate(&transport.UpdateAccountRequest{FullName: "Ann", Username: "ann"}))
	assert.NoError(t, v.Validate(&transport.ChangePasswordRequest{OldPassword: "a", NewPassword: "b"}))
}

func TestCookies(t *testing.T) {
	ck := DeleteCookie("refreshToken", "/")
	assert.Equal(t, -1, ck.MaxAge)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	clearTokenCookies(c)
	assert.Len(t, rec.Result().Cookies(), 2)
}

func TestTempUploads_MissingFile(t *testing.T) {
	uploads, err := NewTempUploads(t.TempDir())
	require.NoError(t, err)

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
	path, err := uploads.Save(c, "avatar")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestTempUploads_SaveAndDiscard(t *testing.T) {
	uploads, err := NewTempUploads(t.TempDir())
	require.NoError(t, err)

	e := echo.New()
	req := multipartRequest(t, http.MethodPost, "/", nil, map[string][]byte{"avatar": pngBytes})
	c := e.NewContext(req, httptest.NewRecorder())

	path, err := uploads.Save(c, "avatar")
	require.NoError(t, err)
	require.NotEmpty(t, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)

	uploads.Discard(path, "")
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
