package match

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DhavalSuthar-24/padel/internal/rating"
	"github.com/DhavalSuthar-24/padel/internal/user"
	"github.com/DhavalSuthar-24/padel/internal/weather"
	"github.com/DhavalSuthar-24/padel/pkg/apperror"
	"github.com/rs/zerolog"
)

// Service runs the match lifecycle: create, join, update, save and delete.
type Service struct {
	matches Repository
	players PlayerDirectory
	weather weather.Provider
	loc     *time.Location
	logger  zerolog.Logger
}

func NewService(matches Repository, players PlayerDirectory, wp weather.Provider, loc *time.Location, logger zerolog.Logger) *Service {
	if wp == nil {
		wp = weather.Disabled{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		matches: matches,
		players: players,
		weather: wp,
		loc:     loc,
		logger:  logger.With().Str("component", "match").Logger(),
	}
}

// Create stores a new match with the organizer in slot 1.
func (s *Service) Create(ctx context.Context, organizerID uint, in CreateInput) (*Match, error) {
	organizer, err := s.players.FindByID(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	if organizer == nil {
		return nil, ErrUserNotFound
	}

	var slots [3]*uint
	for i, name := range []string{in.Player2, in.Player3, in.Player4} {
		if slots[i], err = s.resolvePlayer(ctx, name); err != nil {
			return nil, err
		}
	}
	if err := checkDistinct(&organizerID, slots[0], slots[1], slots[2]); err != nil {
		return nil, err
	}

	at, err := ParseSchedule(in.Date, in.Time, s.loc)
	if err != nil {
		return nil, ErrInvalidSchedule
	}
	city := strings.TrimSpace(in.City)
	report, err := s.weather.Lookup(ctx, city, at)
	if err != nil {
		return nil, err
	}

	m := &Match{
		OrganizerID: organizerID,
		Player1ID:   organizerID,
		Player2ID:   slots[0],
		Player3ID:   slots[1],
		Player4ID:   slots[2],
		Date:        at.Format(DateLayout),
		Time:        at.Format(TimeLayout),
		City:        city,
		Weather:     report.Weather,
		RainWarning: report.RainWarning,
	}
	if err := s.matches.Create(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Info().Uint("match_id", m.ID).Uint("organizer_id", organizerID).Str("city", m.City).Msg("match created")
	return m, nil
}

// resolvePlayer turns a username into a user id. An empty name is an empty
// slot.
func (s *Service) resolvePlayer(ctx context.Context, username string) (*uint, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	u, err := s.players.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperror.Wrap(apperror.KindNotFound, ErrPlayerNotFound, fmt.Sprintf("player %q not found", username))
	}
	id := u.ID
	return &id, nil
}

func checkDistinct(ids ...*uint) error {
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if id == nil {
			continue
		}
		if seen[*id] {
			return ErrDuplicatePlayer
		}
		seen[*id] = true
	}
	return nil
}

// Join puts userID in the lowest empty slot among 2, 3 and 4. Each slot is
// claimed with a conditional update, so a join that loses a race on one slot
// moves on to the next.
func (s *Service) Join(ctx context.Context, userID, matchID uint) (*Match, error) {
	m, err := s.matches.FindByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	if m.HasPlayer(userID) {
		return nil, ErrAlreadyJoined
	}

	// Every slot is tried, not only those empty in m: a slot can free up
	// after the read and must still be filled first.
	for slot := 2; slot <= 4; slot++ {
		ok, err := s.matches.ClaimSlot(ctx, matchID, slot, userID)
		if err != nil {
			return nil, err
		}
		if ok {
			s.logger.Info().Uint("match_id", matchID).Uint("user_id", userID).Int("slot", slot).Msg("player joined")
			return s.Get(ctx, matchID)
		}
	}

	// Every claim failed: either the match filled up, it was deleted, or a
	// concurrent request from the same user got in first.
	m, err = s.matches.FindByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	switch {
	case m == nil:
		return nil, ErrMatchNotFound
	case m.HasPlayer(userID):
		return nil, ErrAlreadyJoined
	default:
		return nil, ErrMatchFull
	}
}

// Update applies an organizer's patch. Slot changes, the save pipeline
// (when is_saved comes with results) and the other fields are written in one
// transaction. Slots are replaced only if no join or update moved them since
// they were read.
func (s *Service) Update(ctx context.Context, organizerID, matchID uint, p Patch) (*Match, error) {
	m, err := s.matches.FindByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.OrganizerID != organizerID {
		return nil, ErrMatchNotFound
	}

	current := m.Slots()
	next := current
	slotsChanged := false
	for i, patch := range p.players() {
		if !patch.Present {
			continue
		}
		slot := i + 2
		var id *uint
		if !patch.Clear() {
			if id, err = s.resolvePlayer(ctx, *patch.Username); err != nil {
				return nil, err
			}
		}
		next[slot-1] = id
		if !sameSlot(current[slot-1], id) {
			slotsChanged = true
		}
	}
	if err := checkDistinct(next[:]...); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if p.Date != nil || p.Time != nil || p.City != nil {
		date, clock, city := m.Date, m.Time, m.City
		if p.Date != nil {
			date = *p.Date
		}
		if p.Time != nil {
			clock = *p.Time
		}
		if p.City != nil {
			city = strings.TrimSpace(*p.City)
		}
		at, err := ParseSchedule(date, clock, s.loc)
		if err != nil {
			return nil, ErrInvalidSchedule
		}
		report, err := s.weather.Lookup(ctx, city, at)
		if err != nil {
			return nil, err
		}
		fields["date"] = at.Format(DateLayout)
		fields["time"] = at.Format(TimeLayout)
		fields["city"] = city
		fields["weather"] = report.Weather
		fields["rain_warning"] = report.RainWarning
	}

	var plan *resultPlan
	if p.IsSaved != nil && *p.IsSaved {
		if m.IsSaved {
			return nil, ErrAlreadySaved
		}
		if plan, err = planResult(m, organizerID, p.Results); err != nil {
			return nil, err
		}
	}

	err = s.matches.WithTransaction(ctx, func(tx Repository, players PlayerDirectory) error {
		if slotsChanged {
			ok, err := tx.ReplaceSlots(ctx, matchID, current, next)
			if err != nil {
				return err
			}
			if !ok {
				return s.lostSlotRace(ctx, tx, matchID)
			}
		}
		if plan != nil {
			if err := s.commitResult(ctx, tx, players, m, plan); err != nil {
				return err
			}
		}
		return tx.UpdateFields(ctx, matchID, fields)
	})
	if err != nil {
		return nil, err
	}
	if plan != nil {
		s.logResult(m.ID, plan)
	}
	return s.Get(ctx, matchID)
}

func (s *Service) lostSlotRace(ctx context.Context, tx Repository, matchID uint) error {
	m, err := tx.FindByID(ctx, matchID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrMatchNotFound
	}
	s.logger.Info().Uint("match_id", matchID).Msg("players changed during update")
	return ErrPlayersChanged
}

// Save records the final score entered by a participant and applies the
// rating and counter changes exactly once.
func (s *Service) Save(ctx context.Context, userID, matchID uint, results *ResultsInput) (*Match, error) {
	m, err := s.matches.FindForParticipant(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	if m.IsSaved {
		return nil, ErrAlreadySaved
	}
	plan, err := planResult(m, userID, results)
	if err != nil {
		return nil, err
	}
	err = s.matches.WithTransaction(ctx, func(tx Repository, players PlayerDirectory) error {
		return s.commitResult(ctx, tx, players, m, plan)
	})
	if err != nil {
		return nil, err
	}
	s.logResult(m.ID, plan)
	return s.Get(ctx, matchID)
}

// resultPlan is a validated score sheet seen from the saving player's side.
type resultPlan struct {
	savedBy   uint
	sets      [3]rating.Set
	outcome   rating.Outcome
	stored    rating.Outcome
	userTeam  []uint
	rivalTeam []uint
}

func planResult(m *Match, actingUserID uint, results *ResultsInput) (*resultPlan, error) {
	sets, err := results.Sets()
	if err != nil {
		return nil, err
	}
	outcome := rating.TabulateResult(sets)
	userTeam, rivalTeam, err := rating.InferTeams(m.Slots(), actingUserID)
	if err != nil {
		return nil, err
	}

	stored := outcome
	if !m.OnFirstTeam(actingUserID) {
		stored = rating.Flip(outcome)
	}
	return &resultPlan{
		savedBy:   actingUserID,
		sets:      sets,
		outcome:   outcome,
		stored:    stored,
		userTeam:  userTeam,
		rivalTeam: rivalTeam,
	}, nil
}

// commitResult claims the match, bumps every player's counters and moves
// scores, all through tx. The rival average is read before any score is
// written.
func (s *Service) commitResult(ctx context.Context, tx Repository, players PlayerDirectory, m *Match, plan *resultPlan) error {
	claimed, err := tx.MarkSaved(ctx, m.ID, SaveRecord{Result: plan.stored, Results: SetResults(plan.sets), SavedByID: plan.savedBy})
	if err != nil {
		return err
	}
	if !claimed {
		return ErrAlreadySaved
	}

	for id, line := range rating.StatCounters(plan.outcome, plan.userTeam, plan.rivalTeam) {
		if err := players.IncrementStats(ctx, id, line); err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				s.logger.Warn().Uint("match_id", m.ID).Uint("user_id", id).Msg("player vanished, counters skipped")
				continue
			}
			return err
		}
	}

	if plan.outcome == rating.Draw {
		return nil
	}

	rivalAvg, err := s.teamAverage(ctx, players, plan.rivalTeam)
	if err != nil {
		return err
	}
	userDelta, rivalDelta := rating.Delta(plan.outcome, rivalAvg, rating.BasePoints)
	if err := s.adjust(ctx, players, m.ID, plan.userTeam, userDelta); err != nil {
		return err
	}
	return s.adjust(ctx, players, m.ID, plan.rivalTeam, rivalDelta)
}

func (s *Service) logResult(matchID uint, plan *resultPlan) {
	s.logger.Info().
		Uint("match_id", matchID).
		Uint("saved_by", plan.savedBy).
		Str("outcome", string(plan.outcome)).
		Str("result", string(plan.stored)).
		Msg("match result saved")
}

// teamAverage averages the scores of ids. A player that no longer exists
// counts as 0.
func (s *Service) teamAverage(ctx context.Context, players PlayerDirectory, ids []uint) (float64, error) {
	found, err := players.FindByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	byID := make(map[uint]float64, len(found))
	for _, u := range found {
		byID[u.ID] = u.Score
	}
	scores := make([]float64, 0, len(ids))
	for _, id := range ids {
		scores = append(scores, byID[id])
	}
	return rating.Average(scores), nil
}

func (s *Service) adjust(ctx context.Context, players PlayerDirectory, matchID uint, ids []uint, delta float64) error {
	for _, id := range ids {
		score, err := players.AdjustScore(ctx, id, delta)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				s.logger.Warn().Uint("match_id", matchID).Uint("user_id", id).Msg("player vanished, score skipped")
				continue
			}
			return err
		}
		s.logger.Debug().Uint("user_id", id).Float64("delta", delta).Float64("score", score).Msg("score adjusted")
	}
	return nil
}

// Delete removes a match the user plays in.
func (s *Service) Delete(ctx context.Context, userID, matchID uint) error {
	ok, err := s.matches.DeleteForParticipant(ctx, matchID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMatchNotFound
	}
	s.logger.Info().Uint("match_id", matchID).Uint("user_id", userID).Msg("match deleted")
	return nil
}

func (s *Service) ListJoinable(ctx context.Context) ([]Match, error) {
	return s.matches.ListJoinable(ctx)
}

// List returns the matches the user organizes or plays in, newest first.
func (s *Service) List(ctx context.Context, userID uint) ([]Match, error) {
	return s.matches.ListForUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, matchID uint) (*Match, error) {
	m, err := s.matches.FindByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	return m, nil
}

// Views resolves the players of ms in a single directory lookup.
func (s *Service) Views(ctx context.Context, ms []Match) ([]MatchView, error) {
	idSet := make(map[uint]struct{})
	for i := range ms {
		for _, id := range ms[i].Slots() {
			if id != nil {
				idSet[*id] = struct{}{}
			}
		}
	}
	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	users, err := s.players.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	summaries := make(map[uint]user.PlayerSummary, len(users))
	for i := range users {
		summaries[users[i].ID] = users[i].Summary()
	}

	views := make([]MatchView, 0, len(ms))
	for i := range ms {
		views = append(views, newView(&ms[i], summaries))
	}
	return views, nil
}

func (s *Service) View(ctx context.Context, m *Match) (MatchView, error) {
	views, err := s.Views(ctx, []Match{*m})
	if err != nil {
		return MatchView{}, err
	}
	return views[0], nil
}
