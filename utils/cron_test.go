package utils

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler(t *testing.T) {
	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)

	c := NewScheduler(loc, zerolog.Nop())
	assert.Equal(t, loc, c.Location())

	_, err = c.AddFunc("0 9 * * *", func() {})
	require.NoError(t, err)
	_, err = c.AddFunc("every blue moon", func() {})
	assert.Error(t, err)
}
