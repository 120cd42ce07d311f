package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseWorldID(t *testing.T) {
	tests := []struct {
		id     string
		market string
		number int
		ok     bool
	}{
		{"br52", "br", 52, true},
		{"en1", "en", 1, true},
		{"52", "", 0, false},
		{"br", "", 0, false},
		{"BR52", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			market, number, err := ParseWorldID(tt.id)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.market, market)
			assert.Equal(t, tt.number, number)
			assert.Equal(t, tt.id, WorldID(market, number))
		})
	}
}

func TestMarket_Location(t *testing.T) {
	m := Market{ID: "br", TimeOffsetMinutes: -180}
	_, offset := time.Now().In(m.Location()).Zone()
	assert.Equal(t, -3*3600, offset)
}

func TestAchievement_Repeatable(t *testing.T) {
	period := "2024-01-01"
	assert.False(t, Achievement{}.Repeatable())
	assert.True(t, Achievement{Period: &period}.Repeatable())
}
