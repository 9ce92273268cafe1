package match

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DhavalSuthar-24/padel/internal/user/usertest"
	"github.com/DhavalSuthar-24/padel/internal/weather"
	"github.com/rotisserie/eris"
)

// memRepo is an in-memory Repository whose conditional updates are atomic
// under mu, like the SQL ones. Transactions run one at a time and a failed
// one restores the matches and users it started from.
type memRepo struct {
	mu     sync.Mutex
	txMu   sync.Mutex
	nextID uint
	rows   map[uint]*Match
	users  *usertest.Repository

	// beforeClaim runs before each ClaimSlot without the lock held.
	beforeClaim func(id uint, slot int)
	// beforeTx runs when WithTransaction is entered, before the snapshot.
	beforeTx   func()
	failUpdate error
	failDelete map[uint]bool
}

func newMemRepo(users *usertest.Repository) *memRepo {
	return &memRepo{rows: make(map[uint]*Match), users: users, failDelete: make(map[uint]bool)}
}

func copyMatch(m *Match) *Match {
	cp := *m
	if m.Results != nil {
		r := *m.Results
		cp.Results = &r
	}
	return &cp
}

// put stores m as is, keeping its slots, and returns the id.
func (r *memRepo) put(m Match) uint {
	_ = r.Create(context.Background(), &m)
	return m.ID
}

func (r *memRepo) get(id uint) *Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.rows[id]; ok {
		return copyMatch(m)
	}
	return nil
}

func (r *memRepo) Create(_ context.Context, m *Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	r.rows[m.ID] = copyMatch(m)
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id uint) (*Match, error) {
	return r.get(id), nil
}

func (r *memRepo) FindForParticipant(_ context.Context, id, userID uint) (*Match, error) {
	m := r.get(id)
	if m == nil || !m.HasPlayer(userID) {
		return nil, nil
	}
	return m, nil
}

func (r *memRepo) list(keep func(*Match) bool) []Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Match
	for _, m := range r.rows {
		if keep(m) {
			out = append(out, *copyMatch(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].Time > out[j].Time
	})
	return out
}

func (r *memRepo) ListForUser(_ context.Context, userID uint) ([]Match, error) {
	return r.list(func(m *Match) bool { return m.OrganizerID == userID || m.HasPlayer(userID) }), nil
}

func (r *memRepo) ListJoinable(context.Context) ([]Match, error) {
	return r.list(func(m *Match) bool { return m.HasOpenSlot() }), nil
}

func slotRef(m *Match, slot int) **uint {
	switch slot {
	case 2:
		return &m.Player2ID
	case 3:
		return &m.Player3ID
	case 4:
		return &m.Player4ID
	}
	return nil
}

func (r *memRepo) ClaimSlot(_ context.Context, id uint, slot int, userID uint) (bool, error) {
	if r.beforeClaim != nil {
		r.beforeClaim(id, slot)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok {
		return false, nil
	}
	ref := slotRef(m, slot)
	if ref == nil {
		return false, eris.Errorf("invalid slot %d", slot)
	}
	if *ref != nil || m.HasPlayer(userID) {
		return false, nil
	}
	uid := userID
	*ref = &uid
	return true, nil
}

func (r *memRepo) ReplaceSlots(_ context.Context, id uint, expected, next [4]*uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok {
		return false, nil
	}
	for slot := 2; slot <= 4; slot++ {
		if !sameSlot(*slotRef(m, slot), expected[slot-1]) {
			return false, nil
		}
	}
	for slot := 2; slot <= 4; slot++ {
		if id := next[slot-1]; id != nil {
			uid := *id
			*slotRef(m, slot) = &uid
		} else {
			*slotRef(m, slot) = nil
		}
	}
	return true, nil
}

func (r *memRepo) UpdateFields(_ context.Context, id uint, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate != nil {
		return r.failUpdate
	}
	m, ok := r.rows[id]
	if !ok {
		return ErrMatchNotFound
	}
	for k, v := range fields {
		switch k {
		case "player2_id", "player3_id", "player4_id":
			ref := slotRef(m, int(k[6]-'0'))
			if v == nil {
				*ref = nil
			} else {
				uid := v.(uint)
				*ref = &uid
			}
		case "date":
			m.Date = v.(string)
		case "time":
			m.Time = v.(string)
		case "city":
			m.City = v.(string)
		case "weather":
			m.Weather = v.(string)
		case "rain_warning":
			m.RainWarning = v.(bool)
		}
	}
	return nil
}

func (r *memRepo) MarkSaved(_ context.Context, id uint, rec SaveRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok || m.IsSaved || m.StatsCalculated {
		return false, nil
	}
	results := rec.Results
	savedBy := rec.SavedByID
	m.IsSaved = true
	m.StatsCalculated = true
	m.Result = rec.Result
	m.Results = &results
	m.SavedByID = &savedBy
	return true, nil
}

func (r *memRepo) DeleteForParticipant(_ context.Context, id, userID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok || !m.HasPlayer(userID) {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

func (r *memRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDelete[id] {
		return eris.New("connection reset")
	}
	delete(r.rows, id)
	return nil
}

func (r *memRepo) WithTransaction(_ context.Context, fn func(Repository, PlayerDirectory) error) error {
	if r.beforeTx != nil {
		r.beforeTx()
	}
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	saved := make(map[uint]*Match, len(r.rows))
	for id, m := range r.rows {
		saved[id] = copyMatch(m)
	}
	r.mu.Unlock()
	restoreUsers := r.users.Snapshot()

	if err := fn(r, r.users); err != nil {
		r.mu.Lock()
		r.rows = saved
		r.mu.Unlock()
		restoreUsers()
		return err
	}
	return nil
}

var _ Repository = (*memRepo)(nil)

// fakeWeather records lookups and answers with a fixed report.
type fakeWeather struct {
	mu     sync.Mutex
	report weather.Report
	err    error
	calls  []string
}

func (f *fakeWeather) Lookup(_ context.Context, city string, at time.Time) (weather.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, city+" "+at.Format(DateLayout+" "+TimeLayout))
	return f.report, f.err
}
