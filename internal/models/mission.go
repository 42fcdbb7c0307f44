package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MissionType string

const (
	MissionCustom MissionType = "custom"
	MissionGlobal MissionType = "global"
)

// CategoryKind is the discriminator of a mission category. Only
// CategoryCustom carries a name.
type CategoryKind string

const (
	CategoryGeneral      CategoryKind = "general"
	CategoryMorning      CategoryKind = "morning"
	CategoryHealth       CategoryKind = "health"
	CategoryFitness      CategoryKind = "fitness"
	CategoryMindfulness  CategoryKind = "mindfulness"
	CategoryLearning     CategoryKind = "learning"
	CategoryProductivity CategoryKind = "productivity"
	CategorySocial       CategoryKind = "social"
	CategoryCustom       CategoryKind = "custom"
)

var fixedCategories = map[CategoryKind]bool{
	CategoryGeneral:      true,
	CategoryMorning:      true,
	CategoryHealth:       true,
	CategoryFitness:      true,
	CategoryMindfulness:  true,
	CategoryLearning:     true,
	CategoryProductivity: true,
	CategorySocial:       true,
}

const MaxCategoryNameLength = 40

type Category struct {
	Kind CategoryKind `gorm:"size:20;not null;default:'general'" json:"kind"`
	Name string       `gorm:"size:40" json:"name,omitempty"`
}

func GeneralCategory() Category {
	return Category{Kind: CategoryGeneral}
}

func CustomCategory(name string) Category {
	return Category{Kind: CategoryCustom, Name: name}
}

// Valid reports whether the pair is a well-formed tagged union value.
func (c Category) Valid() bool {
	if c.Kind == CategoryCustom {
		n := len([]rune(c.Name))
		return n > 0 && n <= MaxCategoryNameLength
	}
	return fixedCategories[c.Kind] && c.Name == ""
}

// Label is the display name of the category.
func (c Category) Label() string {
	if c.Kind == CategoryCustom {
		return c.Name
	}
	return string(c.Kind)
}

// Reminder days use time.Weekday numbering (Sunday = 0). An enabled reminder
// with no days fires every day.
type Reminder struct {
	Enabled bool                     `gorm:"not null;default:false" json:"enabled"`
	Hour    int                      `gorm:"not null" json:"hour"`
	Minute  int                      `gorm:"not null" json:"minute"`
	Days    datatypes.JSONSlice[int] `json:"days"`
}

const MaxDetailsLength = 140

type Mission struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	GlobalMissionID *uuid.UUID  `gorm:"type:uuid;index" json:"global_mission_id,omitempty"`
	SourceRequestID *uuid.UUID  `gorm:"type:uuid;index" json:"source_request_id,omitempty"`
	Title           string      `gorm:"not null;size:120" json:"title"`
	XP              int         `gorm:"not null" json:"xp"`
	Icon            string      `gorm:"size:50" json:"icon"`
	Type            MissionType `gorm:"size:10;not null;default:'custom'" json:"type"`
	Category        Category    `gorm:"embedded;embeddedPrefix:category_" json:"category"`
	Details         string      `gorm:"size:560" json:"details"`
	Reminder        Reminder    `gorm:"embedded;embeddedPrefix:reminder_" json:"reminder"`
	IsSelected      bool        `gorm:"not null;default:false" json:"is_selected"`
	Completed       bool        `gorm:"not null;default:false" json:"completed"`
	CompletionDate  *time.Time  `json:"completion_date"`
	ChallengeWon    bool        `gorm:"not null;default:false" json:"-"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func (m *Mission) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Category.Kind == "" {
		m.Category = GeneralCategory()
	}
	return nil
}

// IsNew marks missions created within the last two hours.
func (m *Mission) IsNew(now time.Time) bool {
	return now.Sub(m.CreatedAt) < 2*time.Hour
}

// CompletedToday reports whether the mission was completed on the civil
// day of now.
func (m *Mission) CompletedToday(now time.Time) bool {
	if !m.Completed || m.CompletionDate == nil {
		return false
	}
	c := m.CompletionDate.In(now.Location())
	y1, m1, d1 := c.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (m *Mission) MarkCompleted(now time.Time) {
	m.Completed = true
	m.IsSelected = false
	m.CompletionDate = &now
}

func (m *Mission) MarkIncomplete() {
	m.Completed = false
	m.IsSelected = false
	m.CompletionDate = nil
}

// RefreshDailyState resets a mission whose completion is not from today.
// It reports whether the mission changed.
func (m *Mission) RefreshDailyState(now time.Time) bool {
	if m.CompletedToday(now) {
		return false
	}
	if !m.Completed && !m.IsSelected && m.CompletionDate == nil {
		return false
	}
	m.MarkIncomplete()
	return true
}

// GlobalMission is the shared catalog entry behind per-user global mission
// rows. Content is read-only for users; completion state lives on Mission.
type GlobalMission struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"not null;size:120" json:"title"`
	XP        int       `gorm:"not null" json:"xp"`
	Icon      string    `gorm:"size:50" json:"icon"`
	Category  Category  `gorm:"embedded;embeddedPrefix:category_" json:"category"`
	Details   string    `gorm:"size:560" json:"details"`
	Active    bool      `gorm:"not null;default:true;index" json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func (g *GlobalMission) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// Materialize creates the per-user row for this catalog entry.
func (g *GlobalMission) Materialize(userID uuid.UUID) Mission {
	id := g.ID
	return Mission{
		ID:              uuid.New(),
		UserID:          userID,
		GlobalMissionID: &id,
		Title:           g.Title,
		XP:              g.XP,
		Icon:            g.Icon,
		Type:            MissionGlobal,
		Category:        g.Category,
		Details:         g.Details,
	}
}
