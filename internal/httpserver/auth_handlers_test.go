package httpserver

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRegisterHandler(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{
		"name":     "Asha",
		"email":    "asha@example.com",
		"password": "password",
	}

	rec, c := env.doJSONRequest(http.MethodPost, "/auth/register", payload, uuid.Nil)
	require.NoError(t, env.Auth.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	require.NotEmpty(t, body["token"])

	user := body["user"].(map[string]interface{})
	require.Equal(t, "asha@example.com", user["email"])
	require.Equal(t, "student", user["role"])
	require.NotContains(t, rec.Body.String(), "password_hash")

	// Duplicate registration is a conflict with a stable error code.
	rec2, c2 := env.doJSONRequest(http.MethodPost, "/auth/register", payload, uuid.Nil)
	require.NoError(t, env.Auth.Register(c2))
	require.Equal(t, http.StatusConflict, rec2.Code)
	require.Equal(t, "conflict", decodeBody(t, rec2)["code"])
}

func TestLoginHandler(t *testing.T) {
	env := newTestEnv(t)

	register := map[string]string{
		"name":     "Asha",
		"email":    "asha@example.com",
		"password": "password",
	}
	_, cReg := env.doJSONRequest(http.MethodPost, "/auth/register", register, uuid.Nil)
	require.NoError(t, env.Auth.Register(cReg))

	rec, c := env.doJSONRequest(http.MethodPost, "/auth/login",
		map[string]string{"email": "asha@example.com", "password": "password"}, uuid.Nil)
	require.NoError(t, env.Auth.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.NotEmpty(t, body["token"])

	recBad, cBad := env.doJSONRequest(http.MethodPost, "/auth/login",
		map[string]string{"email": "asha@example.com", "password": "wrong"}, uuid.Nil)
	require.NoError(t, env.Auth.Login(cBad))
	require.Equal(t, http.StatusUnauthorized, recBad.Code)
	require.Equal(t, "auth_error", decodeBody(t, recBad)["code"])
}
