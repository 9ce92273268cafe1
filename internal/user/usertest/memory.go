// Package usertest provides an in-memory user.Repository for tests.
package usertest

import (
	"context"
	"sort"
	"sync"

	"github.com/DhavalSuthar-24/padel/internal/rating"
	"github.com/DhavalSuthar-24/padel/internal/user"
)

// Repository is a mutex-guarded user.Repository.
type Repository struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*user.User
}

func New() *Repository {
	return &Repository{users: make(map[uint]*user.User)}
}

// Add stores u with the next free id and returns a copy of the stored row.
func (r *Repository) Add(u user.User) user.User {
	_ = r.Create(context.Background(), &u)
	return u
}

// Get returns a copy of the stored user, or the zero User.
func (r *Repository) Get(id uint) user.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return *u
	}
	return user.User{}
}

// SetRole changes a stored user's role.
func (r *Repository) SetRole(id uint, role string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.Role = role
	}
}

func (r *Repository) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username || (u.Email != "" && existing.Email == u.Email) {
			return user.ErrUserExists
		}
	}
	_ = u.BeforeCreate(nil)
	r.nextID++
	u.ID = r.nextID
	stored := *u
	r.users[u.ID] = &stored
	return nil
}

func (r *Repository) FindByID(_ context.Context, id uint) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *Repository) FindByIDs(_ context.Context, ids []uint) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []user.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *Repository) FindByUsername(_ context.Context, username string) (*user.User, error) {
	return r.findBy(func(u *user.User) bool { return u.Username == username })
}

func (r *Repository) FindByEmail(_ context.Context, email string) (*user.User, error) {
	return r.findBy(func(u *user.User) bool { return u.Email == email })
}

func (r *Repository) findBy(match func(*user.User) bool) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *Repository) ListByScore(_ context.Context, page, pageSize int) ([]user.User, int64, error) {
	r.mu.Lock()
	all := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, *u)
	}
	r.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		return all[i].ID < all[j].ID
	})
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, int64(len(all)), nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *Repository) UpdateProfile(_ context.Context, id uint, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	for k, v := range fields {
		s, _ := v.(string)
		switch k {
		case "phone":
			u.Phone = s
		case "city":
			u.City = s
		case "profile_picture":
			u.ProfilePicture = s
		}
	}
	return nil
}

func (r *Repository) IncrementStats(_ context.Context, id uint, line rating.StatLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.MatchesWon += line.Won
	u.MatchesLost += line.Lost
	u.MatchesDrawn += line.Drawn
	u.TotalMatches += line.Total
	u.Points += line.Points
	return nil
}

func (r *Repository) AdjustScore(_ context.Context, id uint, delta float64) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return 0, user.ErrUserNotFound
	}
	u.Score = rating.ApplyDelta(u.Score, delta)
	return u.Score, nil
}

// Snapshot copies every stored user and returns a func that puts the copy
// back, for fakes that roll back a failed transaction.
func (r *Repository) Snapshot() (restore func()) {
	r.mu.Lock()
	saved := make(map[uint]user.User, len(r.users))
	for id, u := range r.users {
		saved[id] = *u
	}
	nextID := r.nextID
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.users = make(map[uint]*user.User, len(saved))
		for id, u := range saved {
			u := u
			r.users[id] = &u
		}
		r.nextID = nextID
	}
}

var _ user.Repository = (*Repository)(nil)
