package flow

import (
	"math"

	"github.com/mohitkumar/shipyard/model"
)

// ResolveInstanceCount translates a percentage or absolute resize target into
// a concrete instance count. A percentage downsize value is the percent taken
// down; the result is the count that remains. An upsize never resolves to
// zero instances.
func ResolveInstanceCount(maxInstances int, value int, unit model.InstanceUnit, direction model.ResizeDirection) int {
	if unit == model.INSTANCE_UNIT_PERCENTAGE {
		percent := value
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		count := int(math.Round(float64(percent) * float64(maxInstances) / 100))
		if direction == model.RESIZE_UPSIZE {
			if count < 1 {
				count = 1
			}
			return count
		}
		if count < 0 {
			count = 0
		}
		return maxInstances - count
	}
	if direction == model.RESIZE_UPSIZE {
		return value
	}
	remaining := maxInstances - value
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// ResolveDownsizeCount resolves the old application's remaining count. With no
// explicit downsize value the resize is symmetric: the upsize-resolved count
// is reused unchanged.
func ResolveDownsizeCount(maxInstances int, upsizeCount int, downsizeValue *int, unit model.InstanceUnit) int {
	if downsizeValue == nil {
		return upsizeCount
	}
	return ResolveInstanceCount(maxInstances, *downsizeValue, unit, model.RESIZE_DOWNSIZE)
}
