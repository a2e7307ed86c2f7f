package quest

import "math"

// CompletedCount returns how many of q's tasks are completed.
func CompletedCount(q Quest) int {
	n := 0
	for _, t := range q.Tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// Progress returns the completed share of q's tasks as a rounded percentage.
// A quest without tasks has progress 0.
func Progress(q Quest) int {
	total := len(q.Tasks)
	if total == 0 {
		return 0
	}
	ratio := float64(CompletedCount(q)) / float64(total)
	return int(math.Round(ratio * 100))
}

// TotalXP sums the xp of completed tasks across all quests.
// Not cached: callers recompute on every read.
func TotalXP(qs []Quest) int {
	sum := 0
	for _, q := range qs {
		for _, t := range q.Tasks {
			if t.Completed {
				sum += t.XP
			}
		}
	}
	return sum
}

// AvailableXP sums the xp of every task, completed or not.
func AvailableXP(qs []Quest) int {
	sum := 0
	for _, q := range qs {
		for _, t := range q.Tasks {
			sum += t.XP
		}
	}
	return sum
}
