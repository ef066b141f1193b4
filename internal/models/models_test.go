package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAverageOf(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{"Empty", nil, 0},
		{"AllFives", []int{5, 5, 5, 5, 5, 5, 5}, 5},
		{"Mixed", []int{5, 4, 5, 4, 5, 4, 5}, 4.6},
		{"RoundsDown", []int{4, 4, 4, 4, 4, 4, 5}, 4.1},
		{"Single", []int{3}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AverageOf(tt.ratings), 0.0001)
		})
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []string{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled} {
		assert.True(t, IsValidStatus(s), s)
	}
	assert.False(t, IsValidStatus("shipped"))
	assert.False(t, IsValidStatus(""))
	assert.False(t, IsValidStatus("Pending"))
}

func TestIsValidBranch(t *testing.T) {
	for _, b := range Branches {
		assert.True(t, IsValidBranch(b), b)
	}
	assert.False(t, IsValidBranch("Mumbai"))
	assert.False(t, IsValidBranch(""))
	assert.False(t, IsValidBranch("noida"))
}
