package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/muzz-social/internal/utils/pagination"
)

func TestDecode_EmptyTokenIsFirstPage(t *testing.T) {
	c, err := pagination.Decode("")
	require.NoError(t, err)
	assert.True(t, c.IsZero())
}

func TestEncodeDecode(t *testing.T) {
	token, err := pagination.Encode(pagination.Cursor{ID: 42, CreatedUnix: 1700000000123})
	require.NoError(t, err)

	c, err := pagination.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), c.ID)
	assert.Equal(t, int64(1700000000123), c.CreatedUnix)
}

func TestDecode_Garbage(t *testing.T) {
	_, err := pagination.Decode("%%%not-base64")
	assert.Error(t, err)

	_, err = pagination.Decode("bm90LWpzb24=") // "not-json"
	assert.ErrorIs(t, err, pagination.ErrInvalidToken)
}
