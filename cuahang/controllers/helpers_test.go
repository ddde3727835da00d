package controllers

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"cuahang/cuahang/services/broker"
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

type delivery struct {
	UserID  int
	Channel string
	Payload any
}

// recordingDeliverer captures deliveries instead of pushing them to sockets.
type recordingDeliverer struct {
	mu     sync.Mutex
	got    []delivery
	failOn string
}

func (r *recordingDeliverer) Deliver(ctx context.Context, userID int, channel string, payload any) error {
	if channel == r.failOn {
		return errors.New("transport closed")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, delivery{UserID: userID, Channel: channel, Payload: payload})
	return nil
}

func (r *recordingDeliverer) on(channel string) []delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []delivery
	for _, d := range r.got {
		if d.Channel == channel {
			out = append(out, d)
		}
	}
	return out
}

var _ broker.Deliverer = (*recordingDeliverer)(nil)

func itoa(n int) string {
	return strconv.Itoa(n)
}
