package match

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

const sweepJobName = "match-sweeper"

// Sweeper deletes matches whose start time has passed while a slot was
// still empty.
type Sweeper struct {
	matches Repository
	loc     *time.Location
	logger  zerolog.Logger
}

func NewSweeper(matches Repository, loc *time.Location, logger zerolog.Logger) *Sweeper {
	if loc == nil {
		loc = time.UTC
	}
	return &Sweeper{
		matches: matches,
		loc:     loc,
		logger:  logger.With().Str("component", "sweeper").Logger(),
	}
}

// Sweep deletes every expired match with an empty slot and returns how many
// were removed. A failed deletion is logged and the sweep goes on.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	open, err := s.matches.ListJoinable(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for i := range open {
		m := &open[i]
		at, err := m.ScheduledAt(s.loc)
		if err != nil {
			s.logger.Warn().Err(err).Uint("match_id", m.ID).Msg("unparseable schedule, skipped")
			continue
		}
		if at.After(now) {
			continue
		}
		if err := s.matches.Delete(ctx, m.ID); err != nil {
			s.logger.Error().Err(err).Uint("match_id", m.ID).Msg("failed to delete expired match")
			continue
		}
		deleted++
	}

	s.logger.Info().Int("checked", len(open)).Int("deleted", deleted).Msg("sweep finished")
	return deleted, nil
}

// Start schedules Sweep every interval on a new gocron scheduler. A non-nil
// locker makes the job run on one instance at a time. The caller owns the
// returned scheduler and must shut it down.
func (s *Sweeper) Start(ctx context.Context, interval time.Duration, locker gocron.Locker) (gocron.Scheduler, error) {
	opts := []gocron.SchedulerOption{
		gocron.WithLocation(s.loc),
		gocron.WithLogger(gocronLogger{s.logger}),
	}
	if locker != nil {
		opts = append(opts, gocron.WithDistributedLocker(locker))
	}

	sched, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create scheduler")
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := s.Sweep(ctx, time.Now()); err != nil {
				s.logger.Error().Err(err).Msg("sweep failed")
			}
		}),
		gocron.WithName(sweepJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, eris.Wrap(err, "failed to schedule sweep")
	}

	sched.Start()
	s.logger.Info().Dur("interval", interval).Bool("distributed", locker != nil).Msg("sweeper started")
	return sched, nil
}

// gocronLogger adapts zerolog to gocron.Logger.
type gocronLogger struct {
	l zerolog.Logger
}

func (g gocronLogger) Debug(msg string, args ...any) { g.l.Debug().Fields(pairs(args)).Msg(msg) }
func (g gocronLogger) Error(msg string, args ...any) { g.l.Error().Fields(pairs(args)).Msg(msg) }
func (g gocronLogger) Info(msg string, args ...any)  { g.l.Info().Fields(pairs(args)).Msg(msg) }
func (g gocronLogger) Warn(msg string, args ...any)  { g.l.Warn().Fields(pairs(args)).Msg(msg) }

func pairs(args []any) map[string]interface{} {
	out := make(map[string]interface{}, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		out[fmt.Sprint(args[i])] = args[i+1]
	}
	return out
}
