package match

import (
	"context"
	"errors"

	"github.com/DhavalSuthar-24/padel/internal/rating"
	"github.com/DhavalSuthar-24/padel/internal/user"
	"github.com/rotisserie/eris"
	"gorm.io/gorm"
)

// PlayerDirectory is the part of the user store the match flows need.
type PlayerDirectory interface {
	FindByID(ctx context.Context, id uint) (*user.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	IncrementStats(ctx context.Context, id uint, line rating.StatLine) error
	AdjustScore(ctx context.Context, id uint, delta float64) (float64, error)
}

// SaveRecord is written when a result is claimed.
type SaveRecord struct {
	Result    rating.Outcome
	Results   SetResults
	SavedByID uint
}

// Repository stores matches. Lookups return (nil, nil) when nothing matches.
type Repository interface {
	Create(ctx context.Context, m *Match) error
	FindByID(ctx context.Context, id uint) (*Match, error)
	// FindForParticipant returns the match only if userID holds a slot.
	FindForParticipant(ctx context.Context, id, userID uint) (*Match, error)
	ListForUser(ctx context.Context, userID uint) ([]Match, error)
	// ListJoinable returns matches with an empty slot, newest schedule first.
	ListJoinable(ctx context.Context) ([]Match, error)
	// ClaimSlot puts userID in slot (2 to 4) only if the slot is empty and
	// userID holds no other slot. It reports whether the row changed.
	ClaimSlot(ctx context.Context, id uint, slot int, userID uint) (bool, error)
	// ReplaceSlots writes next into slots 2 to 4 only while they still hold
	// expected. It reports whether the row changed.
	ReplaceSlots(ctx context.Context, id uint, expected, next [4]*uint) (bool, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	// MarkSaved flips is_saved and stats_calculated from false to true and
	// stores rec. It reports false when another save won.
	MarkSaved(ctx context.Context, id uint, rec SaveRecord) (bool, error)
	DeleteForParticipant(ctx context.Context, id, userID uint) (bool, error)
	Delete(ctx context.Context, id uint) error
	// WithTransaction runs fn against a repository and player directory
	// bound to one transaction.
	WithTransaction(ctx context.Context, fn func(Repository, PlayerDirectory) error) error
}

type GormMatchRepository struct {
	db *gorm.DB
}

func NewGormMatchRepository(db *gorm.DB) *GormMatchRepository {
	return &GormMatchRepository{db: db}
}

const participantClause = "(player1_id = ? OR player2_id = ? OR player3_id = ? OR player4_id = ?)"

const openSlotClause = "(player2_id IS NULL OR player3_id IS NULL OR player4_id IS NULL)"

// absentClause holds when the user is in no slot. NULL slots must be
// excluded explicitly since NULL <> x is not true.
const absentClause = "player1_id <> ? AND (player2_id IS NULL OR player2_id <> ?) AND (player3_id IS NULL OR player3_id <> ?) AND (player4_id IS NULL OR player4_id <> ?)"

func (r *GormMatchRepository) WithTransaction(ctx context.Context, fn func(Repository, PlayerDirectory) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormMatchRepository{db: tx}, user.NewGormUserRepository(tx))
	})
}

func (r *GormMatchRepository) Create(ctx context.Context, m *Match) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return eris.Wrap(err, "failed to create match")
	}
	return nil
}

func (r *GormMatchRepository) FindByID(ctx context.Context, id uint) (*Match, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *GormMatchRepository) FindForParticipant(ctx context.Context, id, userID uint) (*Match, error) {
	return r.first(r.db.WithContext(ctx).
		Where("id = ?", id).
		Where(participantClause, userID, userID, userID, userID))
}

func (r *GormMatchRepository) first(q *gorm.DB) (*Match, error) {
	var m Match
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "failed to load match")
	}
	return &m, nil
}

func (r *GormMatchRepository) ListForUser(ctx context.Context, userID uint) ([]Match, error) {
	var matches []Match
	err := r.db.WithContext(ctx).
		Where("(organizer_id = ? OR "+participantClause+")", userID, userID, userID, userID, userID).
		Order("date DESC").Order("time DESC").
		Find(&matches).Error
	if err != nil {
		return nil, eris.Wrapf(err, "failed to list matches for user %d", userID)
	}
	return matches, nil
}

func (r *GormMatchRepository) ListJoinable(ctx context.Context) ([]Match, error) {
	var matches []Match
	err := r.db.WithContext(ctx).
		Where(openSlotClause).
		Order("date DESC").Order("time DESC").
		Find(&matches).Error
	if err != nil {
		return nil, eris.Wrap(err, "failed to list joinable matches")
	}
	return matches, nil
}

func (r *GormMatchRepository) ClaimSlot(ctx context.Context, id uint, slot int, userID uint) (bool, error) {
	col := slotColumn(slot)
	if col == "" {
		return false, eris.Errorf("invalid slot %d", slot)
	}
	res := r.db.WithContext(ctx).Model(&Match{}).
		Where("id = ?", id).
		Where(col+" IS NULL").
		Where(absentClause, userID, userID, userID, userID).
		Update(col, userID)
	if res.Error != nil {
		return false, eris.Wrapf(res.Error, "failed to claim slot %d of match %d", slot, id)
	}
	return res.RowsAffected == 1, nil
}

func (r *GormMatchRepository) ReplaceSlots(ctx context.Context, id uint, expected, next [4]*uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&Match{}).Where("id = ?", id)
	updates := make(map[string]interface{})
	for slot := 2; slot <= 4; slot++ {
		col := slotColumn(slot)
		was, now := expected[slot-1], next[slot-1]
		if was == nil {
			q = q.Where(col + " IS NULL")
		} else {
			q = q.Where(col+" = ?", *was)
		}
		if sameSlot(was, now) {
			continue
		}
		if now == nil {
			updates[col] = nil
		} else {
			updates[col] = *now
		}
	}
	if len(updates) == 0 {
		return true, nil
	}

	res := q.Updates(updates)
	if res.Error != nil {
		return false, eris.Wrapf(res.Error, "failed to replace players of match %d", id)
	}
	return res.RowsAffected == 1, nil
}

func (r *GormMatchRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&Match{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return eris.Wrapf(res.Error, "failed to update match %d", id)
	}
	if res.RowsAffected == 0 {
		return ErrMatchNotFound
	}
	return nil
}

func (r *GormMatchRepository) MarkSaved(ctx context.Context, id uint, rec SaveRecord) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Match{}).
		Where("id = ? AND is_saved = ? AND stats_calculated = ?", id, false, false).
		Updates(map[string]interface{}{
			"is_saved":         true,
			"stats_calculated": true,
			"result":           rec.Result,
			"results":          rec.Results,
			"saved_by_id":      rec.SavedByID,
		})
	if res.Error != nil {
		return false, eris.Wrapf(res.Error, "failed to mark match %d saved", id)
	}
	return res.RowsAffected == 1, nil
}

func (r *GormMatchRepository) DeleteForParticipant(ctx context.Context, id, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where(participantClause, userID, userID, userID, userID).
		Delete(&Match{})
	if res.Error != nil {
		return false, eris.Wrapf(res.Error, "failed to delete match %d", id)
	}
	return res.RowsAffected == 1, nil
}

func (r *GormMatchRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&Match{}, id).Error; err != nil {
		return eris.Wrapf(err, "failed to delete match %d", id)
	}
	return nil
}
