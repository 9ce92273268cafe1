package match

import "github.com/DhavalSuthar-24/padel/pkg/apperror"

// Matches the caller may not see are reported as not found.
var (
	ErrMatchNotFound  = apperror.NotFound("match not found")
	ErrPlayerNotFound = apperror.NotFound("player not found")
	ErrUserNotFound   = apperror.NotFound("user not found")

	ErrAlreadyJoined = apperror.Conflict("you already play in this match")
	ErrMatchFull     = apperror.Conflict("match has no free slots")
	ErrAlreadySaved  = apperror.Conflict("match results were already saved")
	// ErrPlayersChanged is returned when the slots moved between reading
	// and writing an organizer's update.
	ErrPlayersChanged = apperror.Conflict("match players changed, reload and try again")

	ErrInvalidResults  = apperror.Validation("results need three sets with non-negative left and right scores")
	ErrDuplicatePlayer = apperror.Validation("a player can take only one slot")
	ErrInvalidSchedule = apperror.Validation("date must be YYYY-MM-DD and time HH:MM")
)
