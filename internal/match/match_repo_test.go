package match

import (
	"context"
	"sync"
	"testing"

	"github.com/DhavalSuthar-24/padel/internal/dbtest"
	"github.com/DhavalSuthar-24/padel/internal/rating"
	"github.com/DhavalSuthar-24/padel/internal/user"
	"github.com/DhavalSuthar-24/padel/internal/weather"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gormFixture struct {
	repo  *GormMatchRepository
	users *user.GormUserRepository
	ids   [5]uint
}

func newGormFixture(t *testing.T) *gormFixture {
	t.Helper()
	db := dbtest.Open(t, &user.User{}, &Match{})
	f := &gormFixture{repo: NewGormMatchRepository(db), users: user.NewGormUserRepository(db)}
	for i, name := range []string{"ana", "bea", "carla", "dani", "eva"} {
		u := &user.User{Username: name, Email: name + "@example.com", Password: "x"}
		require.NoError(t, f.users.Create(context.Background(), u))
		f.ids[i] = u.ID
	}
	return f
}

func (f *gormFixture) create(t *testing.T, m Match) uint {
	t.Helper()
	if m.Date == "" {
		m.Date, m.Time, m.City = "2026-06-01", "18:00", "Valencia"
	}
	require.NoError(t, f.repo.Create(context.Background(), &m))
	return m.ID
}

func TestGormClaimSlot(t *testing.T) {
	f := newGormFixture(t)
	ctx := context.Background()
	id := f.create(t, Match{OrganizerID: f.ids[0], Player1ID: f.ids[0], Player3ID: ptr(f.ids[2])})

	ok, err := f.repo.ClaimSlot(ctx, id, 2, f.ids[1])
	require.NoError(t, err)
	assert.True(t, ok, "empty slot with the user absent")

	ok, err = f.repo.ClaimSlot(ctx, id, 2, f.ids[3])
	require.NoError(t, err)
	assert.False(t, ok, "slot already filled")

	ok, err = f.repo.ClaimSlot(ctx, id, 4, f.ids[1])
	require.NoError(t, err)
	assert.False(t, ok, "user already in slot 2")

	ok, err = f.repo.ClaimSlot(ctx, id, 4, f.ids[0])
	require.NoError(t, err)
	assert.False(t, ok, "organizer already in slot 1")

	ok, err = f.repo.ClaimSlot(ctx, 999, 4, f.ids[3])
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.repo.ClaimSlot(ctx, id, 1, f.ids[3])
	assert.Error(t, err)

	m, err := f.repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, f.ids[1], *m.Player2ID)
	assert.Equal(t, f.ids[2], *m.Player3ID)
	assert.Nil(t, m.Player4ID)
}

func TestGormReplaceSlots(t *testing.T) {
	f := newGormFixture(t)
	ctx := context.Background()
	id := f.create(t, Match{OrganizerID: f.ids[0], Player1ID: f.ids[0], Player2ID: ptr(f.ids[1])})
	m, err := f.repo.FindByID(ctx, id)
	require.NoError(t, err)
	read := m.Slots()

	// A join lands after the read.
	ok, err := f.repo.ClaimSlot(ctx, id, 3, f.ids[2])
	require.NoError(t, err)
	require.True(t, ok)

	next := read
	next[3] = ptr(f.ids[2])
	ok, err = f.repo.ReplaceSlots(ctx, id, read, next)
	require.NoError(t, err)
	assert.False(t, ok, "slots moved since the read")

	m, err = f.repo.FindByID(ctx, id)
	require.NoError(t, err)
	current := m.Slots()
	next = current
	next[1], next[2] = current[2], current[1]
	next[3] = ptr(f.ids[3])
	ok, err = f.repo.ReplaceSlots(ctx, id, current, next)
	require.NoError(t, err)
	assert.True(t, ok)

	m, err = f.repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, f.ids[2], *m.Player2ID)
	assert.Equal(t, f.ids[1], *m.Player3ID)
	assert.Equal(t, f.ids[3], *m.Player4ID)
}

func TestGormMarkSavedOnce(t *testing.T) {
	f := newGormFixture(t)
	ctx := context.Background()
	id := f.create(t, Match{OrganizerID: f.ids[0], Player1ID: f.ids[0], Player2ID: ptr(f.ids[1]), Player3ID: ptr(f.ids[2])})
	rec := SaveRecord{
		Result:    rating.Won,
		Results:   SetResults{{Left: 6, Right: 4}, {Left: 3, Right: 6}, {Left: 7, Right: 5}},
		SavedByID: f.ids[2],
	}

	ok, err := f.repo.MarkSaved(ctx, id, rec)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.repo.MarkSaved(ctx, id, SaveRecord{Result: rating.Lost})
	require.NoError(t, err)
	assert.False(t, ok, "second claim must lose")

	m, err := f.repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, m.IsSaved)
	assert.True(t, m.StatsCalculated)
	assert.Equal(t, rating.Won, m.Result)
	require.NotNil(t, m.Results)
	assert.Equal(t, rec.Results, *m.Results)
	assert.Equal(t, f.ids[2], *m.SavedByID)
}

func TestGormQueries(t *testing.T) {
	f := newGormFixture(t)
	ctx := context.Background()
	open := f.create(t, Match{OrganizerID: f.ids[0], Player1ID: f.ids[0], Player3ID: ptr(f.ids[2]), Date: "2026-06-02", Time: "10:00", City: "Valencia"})
	full := f.create(t, Match{OrganizerID: f.ids[1], Player1ID: f.ids[1], Player2ID: ptr(f.ids[0]), Player3ID: ptr(f.ids[2]), Player4ID: ptr(f.ids[3])})
	other := f.create(t, Match{OrganizerID: f.ids[4], Player1ID: f.ids[4], Date: "2026-06-03", Time: "09:00", City: "Madrid"})

	joinable, err := f.repo.ListJoinable(ctx)
	require.NoError(t, err)
	require.Len(t, joinable, 2)
	assert.Equal(t, other, joinable[0].ID, "newest schedule first")
	assert.Equal(t, open, joinable[1].ID)

	mine, err := f.repo.ListForUser(ctx, f.ids[2])
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	m, err := f.repo.FindForParticipant(ctx, full, f.ids[3])
	require.NoError(t, err)
	assert.NotNil(t, m)
	m, err = f.repo.FindForParticipant(ctx, full, f.ids[4])
	require.NoError(t, err)
	assert.Nil(t, m)

	ok, err := f.repo.DeleteForParticipant(ctx, full, f.ids[4])
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = f.repo.DeleteForParticipant(ctx, full, f.ids[3])
	require.NoError(t, err)
	assert.True(t, ok)
	m, err = f.repo.FindByID(ctx, full)
	require.NoError(t, err)
	assert.Nil(t, m)

	assert.ErrorIs(t, f.repo.UpdateFields(ctx, full, map[string]interface{}{"city": "Bilbao"}), ErrMatchNotFound)
}

func TestGormServiceFlow(t *testing.T) {
	f := newGormFixture(t)
	ctx := context.Background()
	svc := NewService(f.repo, f.users, weather.Disabled{}, nil, zerolog.Nop())

	created, err := svc.Create(ctx, f.ids[0], CreateInput{Date: "2026-06-01", Time: "18:00", City: "Valencia"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, uid := range f.ids[1:] {
		wg.Add(1)
		go func(uid uint) {
			defer wg.Done()
			_, _ = svc.Join(ctx, uid, created.ID)
		}(uid)
	}
	wg.Wait()

	m, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, m.HasOpenSlot())
	slots := m.Slots()
	require.NoError(t, checkDistinct(slots[:]...))

	saver := *m.Player3ID
	var saveWG sync.WaitGroup
	errs := make([]error, 3)
	for i := range errs {
		saveWG.Add(1)
		go func(i int) {
			defer saveWG.Done()
			_, errs[i] = svc.Save(ctx, saver, created.ID, sets(6, 4, 6, 4, 6, 4))
		}(i)
	}
	saveWG.Wait()

	saved := 0
	for _, err := range errs {
		if err == nil {
			saved++
		} else {
			assert.ErrorIs(t, err, ErrAlreadySaved)
		}
	}
	assert.Equal(t, 1, saved)

	m, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, rating.Lost, m.Result, "saver is on the second team")
	for _, id := range m.Slots() {
		u, err := f.users.FindByID(ctx, *id)
		require.NoError(t, err)
		assert.Equal(t, 1, u.TotalMatches, "user %d", u.ID)
	}
	winner, err := f.users.FindByID(ctx, *m.Player4ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.3, winner.Score, 0.001)
	loser, err := f.users.FindByID(ctx, f.ids[0])
	require.NoError(t, err)
	assert.InDelta(t, 2.3, loser.Score, 0.001)
}
