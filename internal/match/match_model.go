package match

import (
	"database/sql/driver"
	"strings"
	"time"

	"github.com/DhavalSuthar-24/padel/internal/models"
	"github.com/DhavalSuthar-24/padel/internal/rating"
	"github.com/DhavalSuthar-24/padel/internal/user"
	"github.com/goccy/go-json"
	"gorm.io/gorm"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Match is a padel game for up to four players. Player1 is always the
// organizer; slots 2 to 4 fill in order as players join.
type Match struct {
	gorm.Model
	OrganizerID     uint           `gorm:"not null;index" json:"organizer_id"`
	Player1ID       uint           `gorm:"not null;index" json:"player1_id"`
	Player2ID       *uint          `gorm:"index" json:"player2_id"`
	Player3ID       *uint          `gorm:"index" json:"player3_id"`
	Player4ID       *uint          `gorm:"index" json:"player4_id"`
	Date            string         `gorm:"type:varchar(10);not null;index" json:"date"` // YYYY-MM-DD
	Time            string         `gorm:"type:varchar(5);not null" json:"time"`        // HH:MM
	City            string         `gorm:"not null" json:"city"`
	Weather         string         `json:"weather"`
	RainWarning     bool           `gorm:"not null;default:false" json:"rain_warning"`
	Result          rating.Outcome `gorm:"type:varchar(8);not null;default:''" json:"result"` // relative to the slot 1 team
	IsSaved         bool           `gorm:"not null;default:false" json:"is_saved"`
	StatsCalculated bool           `gorm:"not null;default:false" json:"stats_calculated"`
	Results         *SetResults    `gorm:"type:jsonb" json:"results,omitempty"`
	SavedByID       *uint          `json:"saved_by_id,omitempty"`
}

// Slots returns the four player slots in order.
func (m *Match) Slots() [4]*uint {
	p1 := m.Player1ID
	return [4]*uint{&p1, m.Player2ID, m.Player3ID, m.Player4ID}
}

func (m *Match) HasPlayer(userID uint) bool {
	for _, id := range m.Slots() {
		if id != nil && *id == userID {
			return true
		}
	}
	return false
}

// OnFirstTeam reports whether userID plays in slot 1 or 2.
func (m *Match) OnFirstTeam(userID uint) bool {
	return m.Player1ID == userID || (m.Player2ID != nil && *m.Player2ID == userID)
}

func (m *Match) HasOpenSlot() bool {
	return m.Player2ID == nil || m.Player3ID == nil || m.Player4ID == nil
}

// ScheduledAt combines Date and Time in loc.
func (m *Match) ScheduledAt(loc *time.Location) (time.Time, error) {
	return ParseSchedule(m.Date, m.Time, loc)
}

func ParseSchedule(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout+" "+TimeLayout, strings.TrimSpace(date)+" "+strings.TrimSpace(clock), loc)
}

// slotColumn maps slot numbers 2 to 4 to their column.
func slotColumn(slot int) string {
	switch slot {
	case 2:
		return "player2_id"
	case 3:
		return "player3_id"
	case 4:
		return "player4_id"
	}
	return ""
}

func sameSlot(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// SetResults is the raw score sheet, stored as JSON. Left is the team of
// the player who entered it.
type SetResults [3]rating.Set

func (r SetResults) Value() (driver.Value, error) {
	return models.JSONValue(r)
}

func (r *SetResults) Scan(src interface{}) error {
	return models.ScanJSON(src, r, "SetResults")
}

// SetInput is one set as sent by a client. Missing sides stay nil.
type SetInput struct {
	Left  *int `json:"left" example:"6"`
	Right *int `json:"right" example:"4"`
}

type ResultsInput struct {
	Set1 *SetInput `json:"set1"`
	Set2 *SetInput `json:"set2"`
	Set3 *SetInput `json:"set3"`
}

// Sets checks that all three sets carry two non-negative scores.
func (in *ResultsInput) Sets() ([3]rating.Set, error) {
	var sets [3]rating.Set
	if in == nil {
		return sets, ErrInvalidResults
	}
	for i, s := range []*SetInput{in.Set1, in.Set2, in.Set3} {
		if s == nil || s.Left == nil || s.Right == nil || *s.Left < 0 || *s.Right < 0 {
			return sets, ErrInvalidResults
		}
		sets[i] = rating.Set{Left: *s.Left, Right: *s.Right}
	}
	return sets, nil
}

// OptionalUsername distinguishes an absent JSON field from an explicit null.
type OptionalUsername struct {
	Present  bool
	Username *string
}

func (o *OptionalUsername) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Username = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Username = &s
	return nil
}

// Clear reports whether the patch empties the slot.
func (o OptionalUsername) Clear() bool {
	return o.Present && (o.Username == nil || strings.TrimSpace(*o.Username) == "")
}

// CreateInput is what an organizer supplies for a new match.
type CreateInput struct {
	Player2 string
	Player3 string
	Player4 string
	Date    string
	Time    string
	City    string
}

// Patch is an organizer's partial update. Nil fields are left unchanged.
type Patch struct {
	Player2 OptionalUsername
	Player3 OptionalUsername
	Player4 OptionalUsername
	Date    *string
	Time    *string
	City    *string
	IsSaved *bool
	Results *ResultsInput
}

func (p Patch) players() [3]OptionalUsername {
	return [3]OptionalUsername{p.Player2, p.Player3, p.Player4}
}

// --- Request / response DTOs ---

type CreateMatchRequest struct {
	Player2Username string `json:"player2_username,omitempty" example:"bea"`
	Player3Username string `json:"player3_username,omitempty" example:"carla"`
	Player4Username string `json:"player4_username,omitempty"`
	Date            string `json:"date" binding:"required,datetime=2006-01-02" example:"2026-06-01"`
	Time            string `json:"time" binding:"required,datetime=15:04" example:"18:30"`
	City            string `json:"city" binding:"required,max=100" example:"Valencia"`
}

type UpdateMatchRequest struct {
	Player2Username OptionalUsername `json:"player2_username" swaggertype:"string"`
	Player3Username OptionalUsername `json:"player3_username" swaggertype:"string"`
	Player4Username OptionalUsername `json:"player4_username" swaggertype:"string"`
	Date            *string          `json:"date,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Time            *string          `json:"time,omitempty" binding:"omitempty,datetime=15:04"`
	City            *string          `json:"city,omitempty" binding:"omitempty,max=100"`
	IsSaved         *bool            `json:"is_saved,omitempty"`
	Results         *ResultsInput    `json:"results,omitempty"`
}

func (r UpdateMatchRequest) Patch() Patch {
	return Patch{
		Player2: r.Player2Username,
		Player3: r.Player3Username,
		Player4: r.Player4Username,
		Date:    r.Date,
		Time:    r.Time,
		City:    r.City,
		IsSaved: r.IsSaved,
		Results: r.Results,
	}
}

type SaveMatchRequest struct {
	Results *ResultsInput `json:"results"`
}

// MatchView is a match with its players resolved.
type MatchView struct {
	ID          uint                `json:"id"`
	OrganizerID uint                `json:"organizer_id"`
	Player1     *user.PlayerSummary `json:"player1"`
	Player2     *user.PlayerSummary `json:"player2"`
	Player3     *user.PlayerSummary `json:"player3"`
	Player4     *user.PlayerSummary `json:"player4"`
	Date        string              `json:"date"`
	Time        string              `json:"time"`
	City        string              `json:"city"`
	Weather     string              `json:"weather"`
	RainWarning bool                `json:"rain_warning"`
	Result      rating.Outcome      `json:"result"`
	IsSaved     bool                `json:"is_saved"`
	Results     *SetResults         `json:"results,omitempty"`
	SavedByID   *uint               `json:"saved_by_id,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func newView(m *Match, players map[uint]user.PlayerSummary) MatchView {
	lookup := func(id *uint) *user.PlayerSummary {
		if id == nil {
			return nil
		}
		if p, ok := players[*id]; ok {
			return &p
		}
		return &user.PlayerSummary{ID: *id}
	}
	slots := m.Slots()
	return MatchView{
		ID:          m.ID,
		OrganizerID: m.OrganizerID,
		Player1:     lookup(slots[0]),
		Player2:     lookup(slots[1]),
		Player3:     lookup(slots[2]),
		Player4:     lookup(slots[3]),
		Date:        m.Date,
		Time:        m.Time,
		City:        m.City,
		Weather:     m.Weather,
		RainWarning: m.RainWarning,
		Result:      m.Result,
		IsSaved:     m.IsSaved,
		Results:     m.Results,
		SavedByID:   m.SavedByID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
