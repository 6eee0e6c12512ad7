package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsNewPoolLog_MatchesInitialize2(t *testing.T) {
	assert.True(t, isNewPoolLog([]string{"Program log: ray_log", "Program log: Initialize2: InitializeInstruction2 {...}"}))
}

func TestIsNewPoolLog_MatchesBareInitialize(t *testing.T) {
	assert.True(t, isNewPoolLog([]string{"Program log: Initialize"}))
}

func TestIsNewPoolLog_NoMatch(t *testing.T) {
	assert.False(t, isNewPoolLog([]string{"Program log: Swap", "Program consumed 1200 units"}))
}

func TestNextBackoff_DoublesUntilCap(t *testing.T) {
	d := initialBackoff
	d = nextBackoff(d)
	assert.Equal(t, initialBackoff*2, d)

	huge := maxBackoff - time.Millisecond
	assert.Equal(t, maxBackoff, nextBackoff(huge))
}

func TestNextBackoff_NeverExceedsCap(t *testing.T) {
	d := initialBackoff
	for i := 0; i < 20; i++ {
		d = nextBackoff(d)
	}
	assert.Equal(t, maxBackoff, d)
}
