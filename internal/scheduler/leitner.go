package scheduler

import "time"

// relearnInterval reschedules items answered incorrectly
const relearnInterval = 10 * time.Minute

// boxIntervals maps a Leitner box to its review spacing. Index 0 is unused
// (boxes start at 1); boxes past the table end use the last entry.
var boxIntervals = []time.Duration{
	0,
	6 * time.Hour,
	24 * time.Hour,
	3 * 24 * time.Hour,
	7 * 24 * time.Hour,
	14 * 24 * time.Hour,
	30 * 24 * time.Hour,
	60 * 24 * time.Hour,
}

// intervalForBox returns the review spacing for a box level. Monotonically
// non-decreasing in the box value and always positive.
func intervalForBox(box int) time.Duration {
	if box < 1 {
		box = 1
	}
	if box >= len(boxIntervals) {
		return boxIntervals[len(boxIntervals)-1]
	}
	return boxIntervals[box]
}

// nextBox applies the Leitner transition: correct answers climb one box,
// incorrect answers drop back to box 1
func nextBox(current int, correct bool) int {
	if current < 1 {
		current = 1
	}
	if correct {
		return current + 1
	}
	return 1
}

// nextDue computes the new due time after a transition. Correct answers are
// spaced by the new box's interval, incorrect ones resurface quickly.
func nextDue(now time.Time, box int, correct bool) time.Time {
	if correct {
		return now.Add(intervalForBox(box))
	}
	return now.Add(relearnInterval)
}
