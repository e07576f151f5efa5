// Package dbtest opens isolated in-memory SQLite stores for tests.
package dbtest

import (
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/muzz-social/internal/db"
)

// Open spins up an in-memory SQLite DB named after the test and migrates it.
//
// The pool is capped at one connection: SQLite serializes writers anyway and
// a single connection keeps shared-cache table locks out of concurrent tests.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	// Repeated subtest names get a "#01" suffix; escaped so it stays part
	// of the name instead of starting a URI fragment.
	name := url.PathEscape(strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()))
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// CreateUsers inserts users with ids 1..n, all with a profile picture.
func CreateUsers(t testing.TB, gdb *gorm.DB, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		u := db.User{
			ID:           uint64(i),
			Username:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("u%d@test.com", i),
			PasswordHash: "x",
			Gender:       "female",
			ProfileImage: fmt.Sprintf("/img/%d.jpg", i),
		}
		require.NoError(t, gdb.Create(&u).Error)
	}
}

// Like inserts liker -> liked directly.
func Like(t testing.TB, gdb *gorm.DB, likerID, likedID uint64) {
	t.Helper()
	require.NoError(t, gdb.Create(&db.Like{LikerID: likerID, LikedID: likedID}).Error)
}

// Count returns the number of rows of model matching the optional condition.
func Count(t testing.TB, gdb *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := gdb.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
