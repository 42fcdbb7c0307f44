package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/dto"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/progression"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AllowedXP is the set of rewards a mission may carry.
var AllowedXP = map[int]bool{5: true, 10: true, 15: true, 20: true, 25: true}

const maxTitleLength = 120

type MissionService struct {
	db           *gorm.DB
	deps         Deps
	progress     *ProgressService
	achievements *AchievementService
	moderation   *ModerationService
}

func NewMissionService(d Deps, progress *ProgressService, achievementService *AchievementService, moderation *ModerationService) *MissionService {
	d = d.withDefaults()
	return &MissionService{
		db:           d.DB,
		deps:         d,
		progress:     progress,
		achievements: achievementService,
		moderation:   moderation,
	}
}

// ---------- validation ----------

func (s *MissionService) validateContent(title string, xp int, category models.Category, details string) error {
	if title == "" {
		return Detailed(ErrInvalidInput, "title is required")
	}
	if len([]rune(title)) > maxTitleLength {
		return Detailed(ErrInvalidInput, "title is too long")
	}
	if !AllowedXP[xp] {
		return Detailed(ErrInvalidInput, "xp must be one of 5, 10, 15, 20, 25")
	}
	if !category.Valid() {
		return Detailed(ErrInvalidInput, "invalid category")
	}
	if len([]rune(details)) > models.MaxDetailsLength {
		return Detailed(ErrInvalidInput, "details must be at most 140 characters")
	}
	if err := s.moderation.CheckText("title", title); err != nil {
		return err
	}
	if err := s.moderation.CheckText("details", details); err != nil {
		return err
	}
	if category.Kind == models.CategoryCustom {
		return s.moderation.CheckText("category", category.Name)
	}
	return nil
}

func categoryFrom(in *dto.CategoryInput) models.Category {
	if in == nil {
		return models.GeneralCategory()
	}
	c := models.Category{Kind: models.CategoryKind(in.Kind), Name: normalizeText(in.Name)}
	if c.Kind == "" {
		c.Kind = models.CategoryGeneral
	}
	return c
}

func reminderFrom(in *dto.ReminderInput) (models.Reminder, error) {
	if in == nil {
		return models.Reminder{}, nil
	}
	if in.Hour < 0 || in.Hour > 23 || in.Minute < 0 || in.Minute > 59 {
		return models.Reminder{}, Detailed(ErrInvalidInput, "reminder time is out of range")
	}
	seen := map[int]bool{}
	days := make([]int, 0, len(in.Days))
	for _, d := range in.Days {
		if d < 0 || d > 6 {
			return models.Reminder{}, Detailed(ErrInvalidInput, "reminder days must be between 0 (Sunday) and 6")
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	return models.Reminder{
		Enabled: in.Enabled,
		Hour:    in.Hour,
		Minute:  in.Minute,
		Days:    datatypes.NewJSONSlice(days),
	}, nil
}

// ---------- reminders ----------

// syncReminder schedules or cancels the mission's reminder. Failures are
// logged and never abort the caller.
func (s *MissionService) syncReminder(m *models.Mission) {
	if !m.Reminder.Enabled {
		s.deps.Scheduler.Cancel(m.ID)
		return
	}
	job := ReminderJob{
		MissionID:  m.ID,
		UserID:     m.UserID,
		Title:      m.Title,
		Body:       "Time for your mission: " + m.Title,
		Hour:       m.Reminder.Hour,
		Minute:     m.Reminder.Minute,
		RepeatDays: []int(m.Reminder.Days),
		Repeats:    true,
	}
	if err := s.deps.Scheduler.Schedule(job); err != nil {
		slog.Warn("failed to schedule reminder", "mission_id", m.ID.String(), "user_id", m.UserID.String(), "error", err)
	}
}

// RestoreReminders schedules every enabled reminder; used at boot since
// schedules live in memory.
func (s *MissionService) RestoreReminders() (int, error) {
	var missions []models.Mission
	if err := s.db.Where("reminder_enabled = ?", true).Find(&missions).Error; err != nil {
		return 0, err
	}
	for i := range missions {
		s.syncReminder(&missions[i])
	}
	return len(missions), nil
}

// ---------- queries ----------

func (s *MissionService) loadOwned(tx *gorm.DB, userID, missionID uuid.UUID) (*models.Mission, error) {
	var m models.Mission
	if err := tx.Where("id = ? AND user_id = ?", missionID, userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// syncGlobalMissions gives the user a row for every active global mission
// it does not have yet.
func syncGlobalMissions(tx *gorm.DB, userID uuid.UUID) error {
	var globals []models.GlobalMission
	if err := tx.Where("active = ?", true).Find(&globals).Error; err != nil {
		return err
	}
	if len(globals) == 0 {
		return nil
	}

	var have []uuid.UUID
	if err := tx.Model(&models.Mission{}).
		Where("user_id = ? AND global_mission_id IS NOT NULL", userID).
		Pluck("global_mission_id", &have).Error; err != nil {
		return err
	}
	owned := make(map[uuid.UUID]bool, len(have))
	for _, id := range have {
		owned[id] = true
	}

	var missing []models.Mission
	for i := range globals {
		if !owned[globals[i].ID] {
			missing = append(missing, globals[i].Materialize(userID))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return tx.Create(&missing).Error
}

// List returns the user's missions after applying the daily reset.
func (s *MissionService) List(userID uuid.UUID) ([]models.Mission, error) {
	unlock := s.deps.Locker.Lock(userID)
	defer unlock()

	now := s.deps.Clock.Current()
	var missions []models.Mission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := syncGlobalMissions(tx, userID); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Order("created_at ASC").Find(&missions).Error; err != nil {
			return err
		}
		for i := range missions {
			if missions[i].RefreshDailyState(now) {
				if err := tx.Save(&missions[i]).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}
	return missions, nil
}

func (s *MissionService) Get(userID, missionID uuid.UUID) (*models.Mission, error) {
	return s.loadOwned(s.db, userID, missionID)
}

// Response decorates a mission with its display flags.
func (s *MissionService) Response(m *models.Mission) dto.MissionResponse {
	now := s.deps.Clock.Current()
	return dto.MissionResponse{
		Mission:        *m,
		IsNew:          m.IsNew(now),
		CompletedToday: m.CompletedToday(now),
	}
}

// ---------- mutations ----------

func (s *MissionService) Create(userID uuid.UUID, req *dto.CreateMissionRequest) (*models.Mission, error) {
	title := normalizeText(req.Title)
	details := normalizeText(req.Details)
	category := categoryFrom(req.Category)
	if err := s.validateContent(title, req.XP, category, details); err != nil {
		return nil, err
	}
	reminder, err := reminderFrom(req.Reminder)
	if err != nil {
		return nil, err
	}

	unlock := s.deps.Locker.Lock(userID)
	defer unlock()

	mission := models.Mission{
		ID:       uuid.New(),
		UserID:   userID,
		Title:    title,
		XP:       req.XP,
		Icon:     req.Icon,
		Type:     models.MissionCustom,
		Category: category,
		Details:  details,
		Reminder: reminder,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&mission).Error; err != nil {
			return fmt.Errorf("failed to create mission: %w", err)
		}
		return s.progress.Append(tx, userID, models.MissionEvent(models.EventAddMission, &mission), s.deps.Clock.Current())
	})
	if err != nil {
		return nil, err
	}

	s.syncReminder(&mission)
	return &mission, nil
}

// Update applies the present fields. Global missions only accept reminder
// changes.
func (s *MissionService) Update(userID, missionID uuid.UUID, req *dto.UpdateMissionRequest) (*models.Mission, error) {
	unlock := s.deps.Locker.Lock(userID)
	defer unlock()

	var mission *models.Mission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		mission, err = s.loadOwned(tx, userID, missionID)
		if err != nil {
			return err
		}
		if mission.Type == models.MissionGlobal && req.TouchesContent() {
			return ErrGlobalMissionReadOnly
		}

		if req.Title != nil {
			mission.Title = normalizeText(*req.Title)
		}
		if req.XP != nil {
			mission.XP = *req.XP
		}
		if req.Icon != nil {
			mission.Icon = *req.Icon
		}
		if req.Category != nil {
			mission.Category = categoryFrom(req.Category)
		}
		if req.Details != nil {
			mission.Details = normalizeText(*req.Details)
		}
		if req.TouchesContent() {
			if err := s.validateContent(mission.Title, mission.XP, mission.Category, mission.Details); err != nil {
				return err
			}
		}
		if req.Reminder != nil {
			reminder, err := reminderFrom(req.Reminder)
			if err != nil {
				return err
			}
			mission.Reminder = reminder
		}

		if err := tx.Save(mission).Error; err != nil {
			return fmt.Errorf("failed to update mission: %w", err)
		}
		return s.progress.Append(tx, userID, models.MissionEvent(models.EventEditedMission, mission), s.deps.Clock.Current())
	})
	if err != nil {
		return nil, err
	}

	s.syncReminder(mission)
	return mission, nil
}

func (s *MissionService) SetSelected(userID, missionID uuid.UUID, selected bool) (*models.Mission, error) {
	unlock := s.deps.Locker.Lock(userID)
	defer unlock()

	mission, err := s.loadOwned(s.db, userID, missionID)
	if err != nil {
		return nil, err
	}
	if mission.CompletedToday(s.deps.Clock.Current()) && selected {
		return nil, ErrMissionAlreadyCompleted
	}
	mission.IsSelected = selected
	if err := s.db.Save(mission).Error; err != nil {
		return nil, err
	}
	return mission, nil
}

// Delete removes a custom mission, its reminder and its notifications.
func (s *MissionService) Delete(userID, missionID uuid.UUID) error {
	unlock := s.deps.Locker.Lock(userID)
	defer unlock()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		mission, err := s.loadOwned(tx, userID, missionID)
		if err != nil {
			return err
		}
		if mission.Type == models.MissionGlobal {
			return ErrGlobalMissionReadOnly
		}
		if err := s.progress.Append(tx, userID, models.MissionEvent(models.EventDeleteMission, mission), s.deps.Clock.Current()); err != nil {
			return err
		}
		if err := retractReminders(tx, userID, mission.ID); err != nil {
			return err
		}
		return tx.Delete(mission).Error
	})
	if err != nil {
		return err
	}

	s.deps.Scheduler.Cancel(missionID)
	return nil
}

// CompletionResult is what Complete reports back.
type CompletionResult struct {
	Mission   models.Mission
	Stats     models.UserStats
	LeveledUp bool
	Unlocked  []models.Achievement
}

// Complete marks the mission done for today, credits XP, advances the
// streak, settles challenges and evaluates achievements in one transaction.
func (s *MissionService) Complete(userID, missionID uuid.UUID) (*CompletionResult, error) {
	unlock := s.deps.Locker.Lock(userID)
	defer unlock()

	now := s.deps.Clock.Current()
	result := &CompletionResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		mission, err := s.loadOwned(tx, userID, missionID)
		if err != nil {
			return err
		}
		if mission.CompletedToday(now) {
			return ErrMissionAlreadyCompleted
		}

		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		stats := user.Stats

		result.LeveledUp = progression.CompleteMission(&stats, mission, now)
		progression.UpdateStreakIfNeeded(&stats, true, now)

		if mission.SourceRequestID != nil && !mission.ChallengeWon {
			mission.ChallengeWon = true
			stats.ChallengeWonCount++
			if err := s.notifyChallengeWon(tx, user, mission); err != nil {
				return err
			}
		}

		if err := tx.Save(mission).Error; err != nil {
			return err
		}
		if err := tx.Save(&stats).Error; err != nil {
			return err
		}

		if err := s.progress.Append(tx, userID, models.MissionEvent(models.EventCompletedMission, mission), now); err != nil {
			return err
		}
		if result.LeveledUp {
			level := stats.Level
			if err := s.progress.Append(tx, userID, models.ProgressEvent{Type: models.EventUserLevelUp, UserLevel: &level}, now); err != nil {
				return err
			}
		}

		unlocked, err := s.achievements.Evaluate(tx, userID)
		if err != nil {
			return err
		}

		result.Mission = *mission
		result.Stats = stats
		result.Unlocked = unlocked
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("mission completed", "user_id", userID.String(), "mission_id", missionID.String(),
		"level", result.Stats.Level, "streak", result.Stats.StreakCount, "leveled_up", result.LeveledUp)
	return result, nil
}

// notifyChallengeWon tells the challenger that their mission was completed.
func (s *MissionService) notifyChallengeWon(tx *gorm.DB, user *models.User, mission *models.Mission) error {
	var req models.MissionRequest
	if err := tx.First(&req, "id = ?", *mission.SourceRequestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return push(tx, models.Notification{
		Kind:       models.NotificationChallenge,
		Sender:     user.Snapshot(),
		ReceiverID: req.From.FriendID,
		PayloadID:  historyPayload(req.ID, eventChallenge),
		Message:    user.Username + " completed your challenge: " + mission.Title,
	})
}

// ---------- global catalog ----------

func (s *MissionService) ListGlobal() ([]models.GlobalMission, error) {
	var list []models.GlobalMission
	if err := s.db.Where("active = ?", true).Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// PublishGlobal adds a catalog entry. Users receive it on their next List.
func (s *MissionService) PublishGlobal(req *dto.PublishGlobalMissionRequest) (*models.GlobalMission, error) {
	title := normalizeText(req.Title)
	details := normalizeText(req.Details)
	category := categoryFrom(req.Category)
	if err := s.validateContent(title, req.XP, category, details); err != nil {
		return nil, err
	}

	gm := models.GlobalMission{
		ID:       uuid.New(),
		Title:    title,
		XP:       req.XP,
		Icon:     req.Icon,
		Category: category,
		Details:  details,
		Active:   true,
	}
	if err := s.db.Create(&gm).Error; err != nil {
		return nil, fmt.Errorf("failed to publish global mission: %w", err)
	}
	return &gm, nil
}
