package flow

import (
	"testing"

	"github.com/mohitkumar/shipyard/model"
	"github.com/stretchr/testify/require"
)

func TestResolveInstanceCountPercentage(t *testing.T) {
	tests := []struct {
		name      string
		max       int
		value     int
		direction model.ResizeDirection
		expected  int
	}{
		{"half upsize", 10, 50, model.RESIZE_UPSIZE, 5},
		{"full upsize", 10, 100, model.RESIZE_UPSIZE, 10},
		{"rounds to nearest", 3, 50, model.RESIZE_UPSIZE, 2},
		{"upsize never resolves to zero", 10, 0, model.RESIZE_UPSIZE, 1},
		{"tiny percentage floors at one", 10, 1, model.RESIZE_UPSIZE, 1},
		{"clamps above hundred", 10, 150, model.RESIZE_UPSIZE, 10},
		{"clamps below zero", 10, -5, model.RESIZE_UPSIZE, 1},
		{"half downsize leaves half", 10, 50, model.RESIZE_DOWNSIZE, 5},
		{"full downsize leaves none", 10, 100, model.RESIZE_DOWNSIZE, 0},
		{"zero downsize leaves all", 10, 0, model.RESIZE_DOWNSIZE, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveInstanceCount(tt.max, tt.value, model.INSTANCE_UNIT_PERCENTAGE, tt.direction)
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveInstanceCountAbsolute(t *testing.T) {
	tests := []struct {
		name      string
		max       int
		value     int
		direction model.ResizeDirection
		expected  int
	}{
		{"upsize is the value itself", 10, 4, model.RESIZE_UPSIZE, 4},
		{"downsize is the complement", 10, 4, model.RESIZE_DOWNSIZE, 6},
		{"downsize beyond max leaves none", 10, 15, model.RESIZE_DOWNSIZE, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveInstanceCount(tt.max, tt.value, model.INSTANCE_UNIT_COUNT, tt.direction)
			require.Equal(t, tt.expected, got)
		})
	}
}

// For any percentage the new count plus the remaining old count covers max
// within one instance; the slack comes from the upsize floor of one.
func TestResolveInstanceCountPercentageSymmetry(t *testing.T) {
	for _, max := range []int{1, 3, 7, 10, 50} {
		for percent := 0; percent <= 100; percent += 5 {
			up := ResolveInstanceCount(max, percent, model.INSTANCE_UNIT_PERCENTAGE, model.RESIZE_UPSIZE)
			down := ResolveInstanceCount(max, percent, model.INSTANCE_UNIT_PERCENTAGE, model.RESIZE_DOWNSIZE)
			total := up + down
			require.LessOrEqual(t, total, max+1, "max=%d percent=%d", max, percent)
			require.GreaterOrEqual(t, total, max, "max=%d percent=%d", max, percent)
		}
	}
}

func TestResolveDownsizeCount(t *testing.T) {
	t.Run("nil downsize mirrors upsize count", func(t *testing.T) {
		got := ResolveDownsizeCount(10, 5, nil, model.INSTANCE_UNIT_PERCENTAGE)
		require.Equal(t, 5, got)
	})
	t.Run("explicit percentage downsize", func(t *testing.T) {
		value := 40
		got := ResolveDownsizeCount(10, 5, &value, model.INSTANCE_UNIT_PERCENTAGE)
		require.Equal(t, 6, got)
	})
	t.Run("explicit count downsize", func(t *testing.T) {
		value := 3
		got := ResolveDownsizeCount(10, 5, &value, model.INSTANCE_UNIT_COUNT)
		require.Equal(t, 7, got)
	})
}
