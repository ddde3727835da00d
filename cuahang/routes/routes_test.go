package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cuahang/cuahang/config"
	"cuahang/cuahang/controllers"
	"cuahang/cuahang/sources/psql"
	"cuahang/cuahang/sources/psql/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testCfg = config.Config{JWTSecret: "routes-secret", CORSOrigins: []string{"*"}}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, psql.Migrate(context.Background(), db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) models.User {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com", Role: role}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func tokenFor(t *testing.T, u models.User) string {
	t.Helper()
	tok, err := controllers.IssueToken(testCfg.JWTSecret, u.ID, u.Role, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, h http.Handler, method, target, token string, body string, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
