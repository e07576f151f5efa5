package dbtest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oggyb/muzz-social/internal/db"
	"github.com/oggyb/muzz-social/internal/db/dbtest"
)

func TestOpen_RepeatedSubtestsAreIsolated(t *testing.T) {
	for i := 0; i < 3; i++ {
		t.Run("same", func(t *testing.T) {
			gdb := dbtest.Open(t)
			dbtest.CreateUsers(t, gdb, 1)
			assert.Equal(t, int64(1), dbtest.Count(t, gdb, &db.User{}, ""))
		})
	}
}

func TestOpen_NameWithQueryCharacters(t *testing.T) {
	t.Run("what?a=b#c", func(t *testing.T) {
		gdb := dbtest.Open(t)
		dbtest.CreateUsers(t, gdb, 2)
		assert.Equal(t, int64(2), dbtest.Count(t, gdb, &db.User{}, ""))
	})
}
