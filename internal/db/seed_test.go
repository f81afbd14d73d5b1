package db_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/grubk/cypress-clientside/internal/db"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(&db.Account{}, &db.Profile{}, &db.Edge{}, &db.Message{}))
	return gdb
}

func TestSeedMinimalTestData(t *testing.T) {
	gdb := setupDB(t)
	require.NoError(t, db.SeedMinimalTestData(gdb))

	var profiles []db.Profile
	require.NoError(t, gdb.Order("id ASC").Find(&profiles).Error)
	require.Len(t, profiles, 4)
	assert.Equal(t, "alice", profiles[0].ID)
	require.NotNil(t, profiles[0].Major)
	assert.Equal(t, "Science", *profiles[0].Major)
	assert.Equal(t, []string{"Hiking", "Music"}, profiles[0].Interests)

	var edges []db.Edge
	require.NoError(t, gdb.Order("id ASC").Find(&edges).Error)
	require.Len(t, edges, 4)

	// alice and bob like each other; carol's like at alice is unanswered
	assert.Equal(t, db.ActionLike, edges[0].Action)
	assert.Equal(t, "alice", edges[0].ActorID)
	assert.Equal(t, "bob", edges[0].TargetID)
	assert.Equal(t, db.ActionLike, edges[1].Action)
	assert.Equal(t, "bob", edges[1].ActorID)
	assert.Equal(t, db.ActionPass, edges[3].Action)
	assert.Equal(t, "dave", edges[3].TargetID)
}

// Re-seeding replaces the dataset instead of stacking rows on top of it.
func TestSeedMinimalTestDataIsIdempotent(t *testing.T) {
	gdb := setupDB(t)
	require.NoError(t, db.SeedMinimalTestData(gdb))
	require.NoError(t, db.SeedMinimalTestData(gdb))

	var profileCount, edgeCount int64
	require.NoError(t, gdb.Model(&db.Profile{}).Count(&profileCount).Error)
	require.NoError(t, gdb.Model(&db.Edge{}).Count(&edgeCount).Error)
	assert.Equal(t, int64(4), profileCount)
	assert.Equal(t, int64(4), edgeCount)
}
