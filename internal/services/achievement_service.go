package services

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/achievements"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/dto"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AchievementService struct {
	db   *gorm.DB
	deps Deps
}

func NewAchievementService(d Deps) *AchievementService {
	d = d.withDefaults()
	return &AchievementService{db: d.DB, deps: d}
}

// Evaluate unlocks every badge the user now qualifies for and returns the
// new ones. Calling it again without a state change returns nothing.
func (s *AchievementService) Evaluate(tx *gorm.DB, userID uuid.UUID) ([]models.Achievement, error) {
	var stats models.UserStats
	if err := tx.Where("user_id = ?", userID).First(&stats).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var friendCount int64
	if err := tx.Model(&models.Friend{}).Where("user_id = ?", userID).Count(&friendCount).Error; err != nil {
		return nil, err
	}

	var unlocked []models.Achievement
	if err := tx.Where("user_id = ?", userID).Find(&unlocked).Error; err != nil {
		return nil, err
	}

	state := achievements.State{
		MissionCompletedCount: stats.MissionCompletedCount,
		BestStreakCount:       stats.BestStreakCount,
		XPGainedTotal:         stats.XPGainedTotal,
		FriendCount:           int(friendCount),
		ChallengeWonCount:     stats.ChallengeWonCount,
		Level:                 stats.Level,
	}
	fresh := achievements.Evaluate(userID, state, unlocked, s.deps.Clock.Current())
	if len(fresh) == 0 {
		return []models.Achievement{}, nil
	}
	if err := tx.Create(&fresh).Error; err != nil {
		return nil, err
	}
	return fresh, nil
}

func (s *AchievementService) List(userID uuid.UUID) ([]models.Achievement, error) {
	var list []models.Achievement
	if err := s.db.Where("user_id = ?", userID).Order("unlocked_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Catalog returns every badge with the user's unlock state.
func (s *AchievementService) Catalog(userID uuid.UUID) ([]dto.CatalogBadge, error) {
	unlocked, err := s.List(userID)
	if err != nil {
		return nil, err
	}
	byBadge := make(map[uuid.UUID]models.Achievement, len(unlocked))
	for _, a := range unlocked {
		byBadge[a.BadgeID] = a
	}

	out := make([]dto.CatalogBadge, 0, len(achievements.Catalog))
	for _, b := range achievements.Catalog {
		entry := dto.CatalogBadge{ID: b.ID, Title: b.Title, Icon: b.Icon, Color: b.Color, Details: b.Details}
		if a, ok := byBadge[b.ID]; ok {
			at := a.UnlockedAt
			entry.Unlocked = true
			entry.UnlockedAt = &at
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *AchievementService) MarkRead(userID, achievementID uuid.UUID) error {
	result := s.db.Model(&models.Achievement{}).
		Where("id = ? AND user_id = ?", achievementID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
