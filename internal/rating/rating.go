// Package rating holds the score arithmetic applied when a match result is
// saved: set tabulation, team inference, bounded rating deltas and the
// win/loss/draw counters.
package rating

import (
	"math"

	"github.com/DhavalSuthar-24/padel/pkg/apperror"
)

type Outcome string

const (
	Unset Outcome = ""
	Won   Outcome = "won"
	Lost  Outcome = "lost"
	Draw  Outcome = "draw"
)

const (
	DefaultScore = 3.0
	MinScore     = 0.0
	MaxScore     = 10.0
	BasePoints   = 1.0

	WinPoints  = 10
	LossPoints = 2
	DrawPoints = 5
)

var ErrInsufficientPlayers = apperror.Validation("both teams need at least one player to save a result")

func (o Outcome) Valid() bool {
	switch o {
	case Unset, Won, Lost, Draw:
		return true
	}
	return false
}

// Flip returns the same outcome seen from the other team.
func Flip(o Outcome) Outcome {
	switch o {
	case Won:
		return Lost
	case Lost:
		return Won
	}
	return o
}

// Set is one padel set, games won by the left and the right team.
type Set struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// TabulateResult scores each set +1 for a left win, -1 for a right win and 0
// for a tie, and reads the outcome for the left team off the sum.
func TabulateResult(sets [3]Set) Outcome {
	setsWon := 0
	for _, s := range sets {
		switch {
		case s.Left > s.Right:
			setsWon++
		case s.Right > s.Left:
			setsWon--
		}
	}
	switch {
	case setsWon > 0:
		return Won
	case setsWon < 0:
		return Lost
	default:
		return Draw
	}
}

// InferTeams splits the four slots into the acting user's team and the rival
// team. Slots 1 and 2 form one team, slots 3 and 4 the other; empty slots are
// skipped.
func InferTeams(slots [4]*uint, actingUserID uint) (userTeam, rivalTeam []uint, err error) {
	home := present(slots[0], slots[1])
	away := present(slots[2], slots[3])

	if contains(home, actingUserID) {
		userTeam, rivalTeam = home, away
	} else {
		userTeam, rivalTeam = away, home
	}
	if len(userTeam) == 0 || len(rivalTeam) == 0 {
		return nil, nil, ErrInsufficientPlayers
	}
	return userTeam, rivalTeam, nil
}

// Delta computes the score change for each member of the user team and of the
// rival team. Beating a strong rival average earns more; losing to a weak one
// costs more. Both values stay within [-basePoints, basePoints].
func Delta(outcome Outcome, rivalAverage, basePoints float64) (userDelta, rivalDelta float64) {
	avg := clamp(rivalAverage, MinScore, MaxScore)
	gain := basePoints * (avg / MaxScore)
	loss := -basePoints * ((MaxScore - avg) / MaxScore)

	switch outcome {
	case Won:
		return gain, loss
	case Lost:
		return loss, gain
	default:
		return 0, 0
	}
}

// ApplyDelta returns current+delta clamped to [MinScore, MaxScore] and rounded
// to two decimals.
func ApplyDelta(current, delta float64) float64 {
	return round2(clamp(current+delta, MinScore, MaxScore))
}

// Average is the mean of scores, 0 for an empty slice.
func Average(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// StatLine is the counter increment one player receives for one match.
type StatLine struct {
	Won    int
	Lost   int
	Drawn  int
	Total  int
	Points int
}

var (
	winLine  = StatLine{Won: 1, Total: 1, Points: WinPoints}
	lossLine = StatLine{Lost: 1, Total: 1, Points: LossPoints}
	drawLine = StatLine{Drawn: 1, Total: 1, Points: DrawPoints}
)

// StatCounters returns the counter increment for every player of the match.
// Callers must apply it at most once per match.
func StatCounters(outcome Outcome, userTeam, rivalTeam []uint) map[uint]StatLine {
	lines := make(map[uint]StatLine, len(userTeam)+len(rivalTeam))
	userLine, rivalLine := drawLine, drawLine
	switch outcome {
	case Won:
		userLine, rivalLine = winLine, lossLine
	case Lost:
		userLine, rivalLine = lossLine, winLine
	}
	for _, id := range userTeam {
		lines[id] = userLine
	}
	for _, id := range rivalTeam {
		lines[id] = rivalLine
	}
	return lines
}

func present(ids ...*uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != nil {
			out = append(out, *id)
		}
	}
	return out
}

func contains(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
