package db

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/diewo77/go-board/internal/config"
	"github.com/diewo77/go-board/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory_MigratesSchema(t *testing.T) {
	gdb, err := OpenMemory(t.Name())
	require.NoError(t, err)

	for _, m := range []any{&models.User{}, &models.Profile{}, &models.Message{}, &models.Reply{}, &models.Reaction{}, &models.Task{}} {
		assert.True(t, gdb.Migrator().HasTable(m), "missing table for %T", m)
	}
	assert.True(t, gdb.Migrator().HasIndex(&models.Reaction{}, "idx_reaction_user_message"))
	require.NoError(t, Ping(gdb))
}

func TestReactionUniquePerUserAndMessage(t *testing.T) {
	gdb, err := OpenMemory(t.Name())
	require.NoError(t, err)

	require.NoError(t, gdb.Create(&models.Reaction{UserID: 1, MessageID: 1, Type: models.ReactionLike}).Error)
	err = gdb.Create(&models.Reaction{UserID: 1, MessageID: 1, Type: models.ReactionFire}).Error
	assert.Error(t, err, "second reaction row for the same pair must be rejected")
}

func TestUsernameKeyUnique(t *testing.T) {
	gdb, err := OpenMemory(t.Name())
	require.NoError(t, err)

	require.NoError(t, gdb.Create(&models.User{Username: "Alice", UsernameKey: models.FoldUsername("Alice"), Password: "x"}).Error)
	err = gdb.Create(&models.User{Username: "alice", UsernameKey: models.FoldUsername("alice"), Password: "x"}).Error
	assert.Error(t, err)
}

func TestConnectAndMigrate_SQLiteFile(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "board.db")
	cfg.App.Dev = false

	gdb, err := ConnectAndMigrate(cfg)
	require.NoError(t, err)
	assert.True(t, gdb.Migrator().HasTable(&models.Message{}))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"}, false)
	assert.Error(t, err)
}

func TestSQLiteDSN_ImmediateWAL(t *testing.T) {
	dsn := sqliteDSN("board.db")
	assert.True(t, strings.HasPrefix(dsn, "board.db?"))
	assert.Contains(t, dsn, "_txlock=immediate")
	assert.Contains(t, dsn, "_journal_mode=WAL")
	assert.Contains(t, dsn, "_busy_timeout=5000")
}

func TestOpen_SQLiteFileUsesWAL(t *testing.T) {
	gdb, err := Open(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "board.db")}, false)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	var mode string
	require.NoError(t, gdb.Raw("PRAGMA journal_mode").Scan(&mode).Error)
	assert.Equal(t, "wal", strings.ToLower(mode))
}

func TestBackfillTextKeys(t *testing.T) {
	gdb, err := OpenMemory(t.Name())
	require.NoError(t, err)

	u := models.User{Username: "zoe", UsernameKey: "zoe", Password: "x"}
	require.NoError(t, gdb.Create(&u).Error)
	m := models.Message{AuthorID: u.ID, Text: "ÇAY İÇTİM ÉTÉ"}
	require.NoError(t, gdb.Create(&m).Error)
	assert.Equal(t, models.FoldText(m.Text), m.TextKey, "set on create")

	require.NoError(t, gdb.Model(&models.Message{}).Where("id = ?", m.ID).UpdateColumn("text_key", "").Error)
	n, err := BackfillTextKeys(gdb)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var got models.Message
	require.NoError(t, gdb.First(&got, m.ID).Error)
	assert.Equal(t, models.FoldText("ÇAY İÇTİM ÉTÉ"), got.TextKey)
	assert.Contains(t, got.TextKey, "été")

	n, err = BackfillTextKeys(gdb)
	require.NoError(t, err)
	assert.Zero(t, n)
}
