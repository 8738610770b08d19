package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	got, err := ParseTime("from", "2020-02-03T04:05:06")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 2, 3, 4, 5, 6, 0, time.UTC), *got)

	got, err = ParseTime("from", "")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseTime("from", "2020-02-03")
	require.ErrorContains(t, err, "--from")
}
