package user

import (
	"github.com/DhavalSuthar-24/padel/internal/rating"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	Username       string  `gorm:"uniqueIndex;not null" json:"username"`
	Email          string  `gorm:"uniqueIndex;not null" json:"email"`
	Password       string  `gorm:"not null" json:"-"`
	Role           string  `gorm:"not null;default:'user'" json:"role"`
	Phone          string  `json:"phone"`
	City           string  `json:"city"`
	ProfilePicture string  `json:"profile_picture"`
	Score          float64 `gorm:"not null;default:3" json:"score"`
	MatchesWon     int     `gorm:"not null;default:0" json:"matches_won"`
	MatchesLost    int     `gorm:"not null;default:0" json:"matches_lost"`
	MatchesDrawn   int     `gorm:"not null;default:0" json:"matches_drawn"`
	TotalMatches   int     `gorm:"not null;default:0" json:"total_matches"`
	Points         int     `gorm:"not null;default:0" json:"points"`
}

// BeforeCreate fills the defaults a zero-valued struct would otherwise
// override.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.Score == 0 {
		u.Score = rating.DefaultScore
	}
	return nil
}

// Profile is the user record as returned to clients.
type Profile struct {
	ID             uint    `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email,omitempty"`
	Phone          string  `json:"phone,omitempty"`
	City           string  `json:"city"`
	ProfilePicture string  `json:"profile_picture"`
	Role           string  `json:"role"`
	Score          float64 `json:"score"`
	MatchesWon     int     `json:"matches_won"`
	MatchesLost    int     `json:"matches_lost"`
	MatchesDrawn   int     `json:"matches_drawn"`
	TotalMatches   int     `json:"total_matches"`
	Points         int     `json:"points"`
}

// ToProfile returns the full profile, including contact details.
func (u *User) ToProfile() Profile {
	return Profile{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Phone:          u.Phone,
		City:           u.City,
		ProfilePicture: u.ProfilePicture,
		Role:           u.Role,
		Score:          u.Score,
		MatchesWon:     u.MatchesWon,
		MatchesLost:    u.MatchesLost,
		MatchesDrawn:   u.MatchesDrawn,
		TotalMatches:   u.TotalMatches,
		Points:         u.Points,
	}
}

// ToPublicProfile drops contact details for views of other users.
func (u *User) ToPublicProfile() Profile {
	p := u.ToProfile()
	p.Email = ""
	p.Phone = ""
	return p
}

// PlayerSummary is the slice of a user embedded in match responses.
type PlayerSummary struct {
	ID             uint    `json:"id"`
	Username       string  `json:"username"`
	Score          float64 `json:"score"`
	ProfilePicture string  `json:"profile_picture"`
}

func (u *User) Summary() PlayerSummary {
	return PlayerSummary{ID: u.ID, Username: u.Username, Score: u.Score, ProfilePicture: u.ProfilePicture}
}

type UpdateProfileRequest struct {
	Phone          *string `json:"phone,omitempty" binding:"omitempty,max=30" example:"+34600000000"`
	City           *string `json:"city,omitempty" binding:"omitempty,max=100" example:"Valencia"`
	ProfilePicture *string `json:"profile_picture,omitempty" binding:"omitempty,url" example:"https://cdn.example.com/me.png"`
}
