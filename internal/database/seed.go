package database

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
	"gorm.io/gorm"
)

type seedMission struct {
	Title    string
	XP       int
	Icon     string
	Category models.CategoryKind
	Details  string
}

var seedGlobalMissions = []seedMission{
	{"Drink a glass of water after waking up", 5, "drop.fill", models.CategoryMorning, "Hydrate before coffee."},
	{"Make your bed", 5, "bed.double.fill", models.CategoryMorning, ""},
	{"Walk 8,000 steps", 15, "figure.walk", models.CategoryFitness, "Any pace counts."},
	{"20 minute workout", 20, "dumbbell.fill", models.CategoryFitness, ""},
	{"Eat a serving of vegetables", 10, "leaf.fill", models.CategoryHealth, ""},
	{"Meditate for 10 minutes", 10, "brain.head.profile", models.CategoryMindfulness, "Sit still, breathe, notice."},
	{"Write three things you are grateful for", 10, "heart.text.square.fill", models.CategoryMindfulness, ""},
	{"Read 10 pages", 15, "book.fill", models.CategoryLearning, ""},
	{"Plan tomorrow's top three tasks", 10, "checklist", models.CategoryProductivity, ""},
	{"Message a friend you haven't talked to in a while", 15, "bubble.left.and.bubble.right.fill", models.CategorySocial, ""},
	{"No screens 30 minutes before bed", 25, "moon.zzz.fill", models.CategoryHealth, ""},
}

// SeedGlobalMissions fills the global mission catalog when it is empty.
func SeedGlobalMissions(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.GlobalMission{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	rows := make([]models.GlobalMission, 0, len(seedGlobalMissions))
	for _, sm := range seedGlobalMissions {
		rows = append(rows, models.GlobalMission{
			Title:    sm.Title,
			XP:       sm.XP,
			Icon:     sm.Icon,
			Category: models.Category{Kind: sm.Category},
			Details:  sm.Details,
			Active:   true,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return err
	}
	slog.Info("global missions seeded", "count", len(rows))
	return nil
}
