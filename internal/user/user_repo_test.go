package user_test

import (
	"context"
	"sync"
	"testing"

	"github.com/DhavalSuthar-24/padel/internal/dbtest"
	"github.com/DhavalSuthar-24/padel/internal/rating"
	"github.com/DhavalSuthar-24/padel/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGormRepo(t *testing.T, names ...string) (*user.GormUserRepository, []uint) {
	t.Helper()
	repo := user.NewGormUserRepository(dbtest.Open(t, &user.User{}))
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		u := &user.User{Username: name, Email: name + "@example.com", Password: "x"}
		require.NoError(t, repo.Create(context.Background(), u))
		ids = append(ids, u.ID)
	}
	return repo, ids
}

func TestGormCreateAppliesDefaults(t *testing.T) {
	repo, ids := newGormRepo(t, "ana")
	ctx := context.Background()

	u, err := repo.FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, rating.DefaultScore, u.Score)
	assert.Equal(t, user.RoleUser, u.Role)

	err = repo.Create(ctx, &user.User{Username: "ana", Email: "other@example.com", Password: "x"})
	assert.ErrorIs(t, err, user.ErrUserExists)

	missing, err := repo.FindByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGormIncrementStats(t *testing.T) {
	repo, ids := newGormRepo(t, "ana")
	ctx := context.Background()

	require.NoError(t, repo.IncrementStats(ctx, ids[0], rating.StatLine{Won: 1, Total: 1, Points: rating.WinPoints}))
	require.NoError(t, repo.IncrementStats(ctx, ids[0], rating.StatLine{Drawn: 1, Total: 1, Points: rating.DrawPoints}))

	u, err := repo.FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, 1, u.MatchesWon)
	assert.Equal(t, 0, u.MatchesLost)
	assert.Equal(t, 1, u.MatchesDrawn)
	assert.Equal(t, 2, u.TotalMatches)
	assert.Equal(t, rating.WinPoints+rating.DrawPoints, u.Points)

	assert.ErrorIs(t, repo.IncrementStats(ctx, 999, rating.StatLine{Total: 1}), user.ErrUserNotFound)
}

func TestGormIncrementStatsConcurrent(t *testing.T) {
	repo, ids := newGormRepo(t, "ana")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.IncrementStats(ctx, ids[0], rating.StatLine{Lost: 1, Total: 1, Points: rating.LossPoints}))
		}()
	}
	wg.Wait()

	u, err := repo.FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, 20, u.MatchesLost)
	assert.Equal(t, 20, u.TotalMatches)
	assert.Equal(t, 20*rating.LossPoints, u.Points)
}

func TestGormAdjustScore(t *testing.T) {
	repo, ids := newGormRepo(t, "ana")
	ctx := context.Background()

	score, err := repo.AdjustScore(ctx, ids[0], 0.333)
	require.NoError(t, err)
	assert.Equal(t, 3.33, score)

	score, err = repo.AdjustScore(ctx, ids[0], 100)
	require.NoError(t, err)
	assert.Equal(t, rating.MaxScore, score)

	score, err = repo.AdjustScore(ctx, ids[0], -100)
	require.NoError(t, err)
	assert.Equal(t, rating.MinScore, score)

	u, err := repo.FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, rating.MinScore, u.Score)

	_, err = repo.AdjustScore(ctx, 999, 1)
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestGormUpdateProfileMissingUser(t *testing.T) {
	repo, _ := newGormRepo(t)
	err := repo.UpdateProfile(context.Background(), 999, map[string]interface{}{"city": "Bilbao"})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
