package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"Nil", nil, 0},
		{"Float", float64(42), 42},
		{"JSONNumber", json.Number("17"), 17},
		{"String", " 9 ", 9},
		{"Bytes", []byte("5"), 5},
		{"BoolTrue", true, 1},
		{"Garbage", "abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToInt(tt.in))
		})
	}
}

func TestToIntPtr(t *testing.T) {
	assert.Nil(t, ToIntPtr(nil))
	assert.Nil(t, ToIntPtr(float64(0)))
	if p := ToIntPtr(float64(12)); assert.NotNil(t, p) {
		assert.Equal(t, 12, *p)
	}
}

func TestToBool(t *testing.T) {
	assert.True(t, ToBool(true))
	assert.True(t, ToBool(float64(1)))
	assert.True(t, ToBool("true"))
	assert.False(t, ToBool(nil))
	assert.False(t, ToBool("0"))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "12", ToString(float64(12)))
	assert.Equal(t, "abc", ToString("abc"))
}
