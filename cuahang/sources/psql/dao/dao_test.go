package dao

import (
	"context"
	"testing"
	"time"

	"cuahang/cuahang/sources/psql"
	"cuahang/cuahang/sources/psql/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// --- Helpers ---
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open sqlite")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a second pooled connection would see a different in-memory database
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

func seedStore(t *testing.T, db *gorm.DB, owner models.User, name string) models.Store {
	t.Helper()
	s := models.Store{OwnerID: owner.ID, Name: name}
	require.NoError(t, db.Create(&s).Error)
	return s
}

func seedMessage(t *testing.T, db *gorm.DB, from, to, store int, body string, at time.Time) models.ChatMessage {
	t.Helper()
	m := models.ChatMessage{SenderID: from, ReceiverID: to, StoreID: store, Body: body, SentAt: at}
	require.NoError(t, db.Create(&m).Error)
	return m
}

var baseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
