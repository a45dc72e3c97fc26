package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUnixMillis(t *testing.T) {
	tt := UnixMillsTime(1453839313078)
	assert.EqualValues(t, 1453839313078, UnixMills(tt))

	now := time.Now()
	assert.Equal(t, now.UnixMilli(), UnixMills(now))
}
