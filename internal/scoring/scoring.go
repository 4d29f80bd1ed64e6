// Package scoring computes a challenge's current point value. It is a
// pure function over already-loaded challenge state so it can be
// exercised without a database.
package scoring

import (
	"math"

	"github.com/ctfquest07/ctf-server1-sub000/internal/model"
)

// CurrentValue returns the points a solver of ch would earn right now.
//
// Static challenges return their base Points. Dynamic challenges decay
// along a downward-opening quadratic (CTFd compatible):
//
//	value = floor(((minimum - initial) / decay^2) * solves^2 + initial)
//
// clamped to [minimum, initial]. Floor, not round; historical scores
// were computed with truncation and replays must match them exactly.
func CurrentValue(ch *model.Challenge) int {
	if !ch.Dynamic.Enabled {
		return ch.Points
	}
	return DecayValue(ch.Dynamic.Initial, ch.Dynamic.Minimum, ch.Dynamic.Decay, ch.SolveCount())
}

// DecayValue evaluates the decay curve at a given solve count.
func DecayValue(initial, minimum, decay, solves int) int {
	if solves <= 0 {
		return initial
	}
	if decay <= 0 || solves >= decay {
		return minimum
	}

	d := float64(decay)
	value := ((float64(minimum)-float64(initial))/(d*d))*float64(solves)*float64(solves) + float64(initial)
	v := int(math.Floor(value))

	if v < minimum {
		return minimum
	}
	if v > initial {
		return initial
	}
	return v
}
