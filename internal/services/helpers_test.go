package services

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-board/internal/config"
	"github.com/diewo77/go-board/internal/db"
	"github.com/diewo77/go-board/internal/models"
	"github.com/diewo77/go-board/internal/policy"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

// newFileTestDB opens a SQLite file the way the server does, with the
// default connection pool, so transactions really overlap.
func newFileTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "board.db")}
	gdb, err := db.Open(cfg, false)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func newEngine(gdb *gorm.DB) *ReactionEngine {
	return NewReactionEngine(gdb, policy.NewGate())
}

func mkUser(t *testing.T, gdb *gorm.DB, name string) models.User {
	t.Helper()
	u := models.User{Username: name, UsernameKey: models.FoldUsername(name), Password: "!"}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

func mkMessage(t *testing.T, gdb *gorm.DB, authorID uint, text string, at time.Time) models.Message {
	t.Helper()
	m := models.Message{AuthorID: authorID, Text: text, CreatedAt: at}
	require.NoError(t, gdb.Create(&m).Error)
	return m
}

func reload(t *testing.T, gdb *gorm.DB, id uint) models.Message {
	t.Helper()
	var m models.Message
	require.NoError(t, gdb.First(&m, id).Error)
	return m
}

func reactionRows(t *testing.T, gdb *gorm.DB, messageID uint) []models.Reaction {
	t.Helper()
	var rows []models.Reaction
	require.NoError(t, gdb.Where("message_id = ?", messageID).Find(&rows).Error)
	return rows
}

// assertCountersMatchRows checks every counter against the Reaction rows.
func assertCountersMatchRows(t *testing.T, gdb *gorm.DB, messageID uint) {
	t.Helper()
	m := reload(t, gdb, messageID)
	rows := reactionRows(t, gdb, messageID)
	byKind := map[models.ReactionKind]int{}
	for _, r := range rows {
		byKind[r.Type]++
	}
	for _, k := range models.ReactionKinds {
		require.Equalf(t, byKind[k], m.Count(k), "counter %s on message %d", k, messageID)
	}
	require.Equal(t, len(rows), m.TotalReactions())
}
