package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasAny(t *testing.T) {
	assert.True(t, HasAny("Patchy light Rain", "rain"))
	assert.True(t, HasAny("Overcast", "cloud", "overcast"))
	assert.False(t, HasAny("Sunny", "rain", "snow"))
	assert.False(t, HasAny("Sunny"))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "18,248", FormatNumber(18248))
	assert.Equal(t, "7", FormatNumber(7))
}
