package quest

import "math"

// LevelXPCoef scales the level curve: XP_req(L) = 500 * L^1.5.
const LevelXPCoef = 500.0

// XPRequiredForLevel returns the total XP threshold required to be at the given level.
// Level 0 requires 0 XP.
func XPRequiredForLevel(level int) int {
	if level <= 0 {
		return 0
	}
	// Ceil so floating point never makes a threshold easier.
	return int(math.Ceil(LevelXPCoef * math.Pow(float64(level), 1.5)))
}

// LevelForTotalXP returns the highest level L such that totalXP >= XPRequiredForLevel(L).
func LevelForTotalXP(totalXP int) int {
	if totalXP <= 0 {
		return 0
	}

	// Exponential search upper bound, then binary search.
	low, high := 0, 1
	for XPRequiredForLevel(high) <= totalXP {
		low = high
		high *= 2
		if high > 1_000_000 {
			break
		}
	}
	for low+1 < high {
		mid := low + (high-low)/2
		if XPRequiredForLevel(mid) <= totalXP {
			low = mid
		} else {
			high = mid
		}
	}
	return low
}

// LevelProgress returns the XP earned inside the current level and the XP
// span of that level.
func LevelProgress(totalXP int) (into, span int) {
	lvl := LevelForTotalXP(totalXP)
	cur := XPRequiredForLevel(lvl)
	next := XPRequiredForLevel(lvl + 1)
	return totalXP - cur, next - cur
}
