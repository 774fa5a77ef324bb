package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_HandleLogin(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	authService := NewAuthService(testAdmin, time.Hour, db)
	authService.RandStringFunc = func(int) (string, error) {
		return "tkn", nil
	}
	now := time.Now()
	handler := NewHandler(authService)
	handler.now = func() time.Time { return now }

	mock.ExpectSet(sessionKeyPrefix+"tkn", now.Unix(), time.Hour).SetVal("OK")
	mock.ExpectSAdd(tokensSetKey, "tkn").SetVal(1)

	req := httptest.NewRequest("POST", "/a/login", strings.NewReader(`{"username":"testuser","password":"testpass"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.HandleLogin(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "tkn", resp.Token)
	assert.NoError(t, mock.ExpectationsWereMet())

	// form encoded, wrong password
	form := url.Values{"username": {"testuser"}, "password": {"nope"}}
	req = httptest.NewRequest("POST", "/a/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = httptest.NewRecorder()
	handler.HandleLogin(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest("POST", "/a/login", strings.NewReader(`{"username":"testuser"}`))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	handler.HandleLogin(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_HandleLogout(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	handler := NewHandler(NewAuthService(testAdmin, time.Hour, db))

	rr := httptest.NewRecorder()
	handler.HandleLogout(rr, httptest.NewRequest("POST", "/a/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	mock.ExpectDel(sessionKeyPrefix + "tkn").SetVal(1)
	mock.ExpectSRem(tokensSetKey, "tkn").SetVal(1)

	req := httptest.NewRequest("POST", "/a/logout", nil)
	req = req.WithContext(ContextWithToken(context.Background(), "tkn"))
	rr = httptest.NewRecorder()
	handler.HandleLogout(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "logged-out", rr.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
