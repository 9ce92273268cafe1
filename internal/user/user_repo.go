package user

import (
	"context"
	"errors"

	"github.com/DhavalSuthar-24/padel/internal/rating"
	"github.com/DhavalSuthar-24/padel/pkg/apperror"
	"github.com/rotisserie/eris"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserNotFound = apperror.NotFound("user not found")
	ErrUserExists   = apperror.Conflict("username or email already registered")
)

// Repository is the user directory. Lookups return (nil, nil) when the user
// does not exist.
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ListByScore(ctx context.Context, page, pageSize int) ([]User, int64, error)
	UpdateProfile(ctx context.Context, id uint, fields map[string]interface{}) error
	IncrementStats(ctx context.Context, id uint, line rating.StatLine) error
	AdjustScore(ctx context.Context, id uint, delta float64) (float64, error)
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, u *User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		return eris.Wrap(err, "failed to create user")
	}
	return nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*User, error) {
	var u User
	return r.first(r.db.WithContext(ctx).Where("id = ?", id), &u)
}

func (r *GormUserRepository) FindByIDs(ctx context.Context, ids []uint) ([]User, error) {
	var users []User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, eris.Wrap(err, "failed to load users")
	}
	return users, nil
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	return r.first(r.db.WithContext(ctx).Where("username = ?", username), &u)
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	return r.first(r.db.WithContext(ctx).Where("email = ?", email), &u)
}

func (r *GormUserRepository) first(q *gorm.DB, u *User) (*User, error) {
	if err := q.First(u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "failed to load user")
	}
	return u, nil
}

// ListByScore returns one page of users, best score first.
func (r *GormUserRepository) ListByScore(ctx context.Context, page, pageSize int) ([]User, int64, error) {
	var users []User
	var total int64

	query := r.db.WithContext(ctx).Model(&User{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, eris.Wrap(err, "failed to count users")
	}

	offset := (page - 1) * pageSize
	if err := query.Order("score DESC").Order("id ASC").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, 0, eris.Wrap(err, "failed to list users")
	}
	return users, total, nil
}

func (r *GormUserRepository) UpdateProfile(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return eris.Wrap(res.Error, "failed to update user profile")
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// IncrementStats adds line to the user's counters in a single UPDATE so that
// concurrent increments never lose writes.
func (r *GormUserRepository) IncrementStats(ctx context.Context, id uint, line rating.StatLine) error {
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"matches_won":   gorm.Expr("matches_won + ?", line.Won),
		"matches_lost":  gorm.Expr("matches_lost + ?", line.Lost),
		"matches_drawn": gorm.Expr("matches_drawn + ?", line.Drawn),
		"total_matches": gorm.Expr("total_matches + ?", line.Total),
		"points":        gorm.Expr("points + ?", line.Points),
	})
	if res.Error != nil {
		return eris.Wrapf(res.Error, "failed to increment stats for user %d", id)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// AdjustScore applies delta to the user's score under a row lock and returns
// the stored value.
func (r *GormUserRepository) AdjustScore(ctx context.Context, id uint, delta float64) (float64, error) {
	var next float64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "score").
			Where("id = ?", id).
			First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return eris.Wrapf(err, "failed to lock user %d", id)
		}

		next = rating.ApplyDelta(u.Score, delta)
		if err := tx.Model(&User{}).Where("id = ?", id).Update("score", next).Error; err != nil {
			return eris.Wrapf(err, "failed to update score for user %d", id)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}
