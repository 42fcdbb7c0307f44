package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/dto"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Badge keys understood by Badges and ClearBadge.
const (
	BadgeNotifications   = "notifications"
	BadgeFriendRequests  = "friend_requests"
	BadgeMissionRequests = "mission_requests"
	BadgeAchievements    = "achievements"
)

// NotificationService maintains the notification read model. Request
// notifications are projected from pending requests on demand; system and
// challenge notifications are pushed directly.
type NotificationService struct {
	db   *gorm.DB
	deps Deps
}

func NewNotificationService(d Deps) *NotificationService {
	d = d.withDefaults()
	return &NotificationService{db: d.DB, deps: d}
}

// ProjectFriendRequests maps pending friend requests to notifications.
func ProjectFriendRequests(reqs []models.FriendRequest) []models.Notification {
	out := make([]models.Notification, 0, len(reqs))
	for _, r := range reqs {
		if !r.Status.IsPending() {
			continue
		}
		out = append(out, models.Notification{
			Kind:       models.NotificationFriendRequest,
			Sender:     r.From,
			ReceiverID: r.To.FriendID,
			PayloadID:  r.ID,
			Status:     r.Status,
			Message:    r.From.Username + " sent you a friend request",
		})
	}
	return out
}

// ProjectMissionRequests maps pending mission requests to notifications.
func ProjectMissionRequests(reqs []models.MissionRequest) []models.Notification {
	out := make([]models.Notification, 0, len(reqs))
	for _, r := range reqs {
		if !r.Status.IsPending() {
			continue
		}
		out = append(out, models.Notification{
			Kind:       models.NotificationMissionRequest,
			Sender:     r.From,
			ReceiverID: r.To.FriendID,
			PayloadID:  r.ID,
			Status:     r.Status,
			Message:    r.From.Username + " challenged you: " + r.Mission.Title,
		})
	}
	return out
}

// Reconcile returns the projections whose payload is not represented in
// existing yet. Existing notifications are never modified.
func Reconcile(existing, fresh []models.Notification) []models.Notification {
	seen := make(map[uuid.UUID]bool, len(existing))
	for _, n := range existing {
		seen[n.PayloadID] = true
	}
	var missing []models.Notification
	for _, n := range fresh {
		if seen[n.PayloadID] {
			continue
		}
		seen[n.PayloadID] = true
		missing = append(missing, n)
	}
	return missing
}

// Sync materializes notifications for pending requests addressed to userID
// and returns the ones it inserted.
func (s *NotificationService) Sync(userID uuid.UUID) ([]models.Notification, error) {
	unlock := s.deps.Locker.Lock(userID)
	defer unlock()

	var inserted []models.Notification
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var friendReqs []models.FriendRequest
		if err := tx.Where("to_friend_id = ? AND status = ?", userID, models.RequestPending).
			Find(&friendReqs).Error; err != nil {
			return err
		}
		var missionReqs []models.MissionRequest
		if err := tx.Where("to_friend_id = ? AND status = ?", userID, models.RequestPending).
			Find(&missionReqs).Error; err != nil {
			return err
		}

		fresh := append(ProjectFriendRequests(friendReqs), ProjectMissionRequests(missionReqs)...)
		if len(fresh) == 0 {
			return nil
		}

		payloadIDs := make([]uuid.UUID, len(fresh))
		for i, n := range fresh {
			payloadIDs[i] = n.PayloadID
		}
		var existing []models.Notification
		if err := tx.Where("receiver_id = ? AND payload_id IN ?", userID, payloadIDs).
			Find(&existing).Error; err != nil {
			return err
		}

		inserted = Reconcile(existing, fresh)
		if len(inserted) == 0 {
			return nil
		}
		return tx.Create(&inserted).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sync notifications: %w", err)
	}
	return inserted, nil
}

// List syncs projections first, then returns the user's notifications
// newest first.
func (s *NotificationService) List(userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	if _, err := s.Sync(userID); err != nil {
		return nil, err
	}

	query := s.db.Where("receiver_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	var list []models.Notification
	if err := query.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *NotificationService) MarkRead(userID, notificationID uuid.UUID) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND receiver_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(userID uuid.UUID) error {
	return s.db.Model(&models.Notification{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

// Badges counts unread items per badge key from storage.
func (s *NotificationService) Badges(userID uuid.UUID) (*dto.BadgesResponse, error) {
	if _, err := s.Sync(userID); err != nil {
		return nil, err
	}

	var out dto.BadgesResponse
	unread := func() *gorm.DB {
		return s.db.Model(&models.Notification{}).Where("receiver_id = ? AND is_read = ?", userID, false)
	}
	if err := unread().Count(&out.Notifications).Error; err != nil {
		return nil, err
	}
	if err := unread().Where("kind = ?", models.NotificationFriendRequest).Count(&out.FriendRequests).Error; err != nil {
		return nil, err
	}
	if err := unread().Where("kind = ?", models.NotificationMissionRequest).Count(&out.MissionRequests).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Achievement{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&out.Achievements).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearBadge marks everything behind key as read.
func (s *NotificationService) ClearBadge(userID uuid.UUID, key string) error {
	switch key {
	case BadgeNotifications:
		return s.MarkAllRead(userID)
	case BadgeFriendRequests, BadgeMissionRequests:
		kind := models.NotificationFriendRequest
		if key == BadgeMissionRequests {
			kind = models.NotificationMissionRequest
		}
		return s.db.Model(&models.Notification{}).
			Where("receiver_id = ? AND kind = ? AND is_read = ?", userID, kind, false).
			Update("is_read", true).Error
	case BadgeAchievements:
		return s.db.Model(&models.Achievement{}).
			Where("user_id = ? AND is_read = ?", userID, false).
			Update("is_read", true).Error
	default:
		return Detailed(ErrInvalidInput, "unknown badge "+key)
	}
}

// PushSystem stores a system notification for userID outside of any
// request flow.
func (s *NotificationService) PushSystem(userID uuid.UUID, message string) error {
	return s.db.Create(&models.Notification{
		ID:         uuid.New(),
		Kind:       models.NotificationSystem,
		ReceiverID: userID,
		PayloadID:  uuid.New(),
		Message:    message,
	}).Error
}

// PushReminder records a fired reminder for missionID. Each mission keeps
// one reminder notification; a later firing replaces the earlier one.
// Reminders for missions that no longer exist are dropped.
func (s *NotificationService) PushReminder(userID, missionID uuid.UUID, message string) error {
	unlock := s.deps.Locker.Lock(userID)
	defer unlock()

	var n int64
	if err := s.db.Model(&models.Mission{}).
		Where("id = ? AND user_id = ?", missionID, userID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return pushLatest(s.db, models.Notification{
		Kind:       models.NotificationSystem,
		ReceiverID: userID,
		PayloadID:  missionID,
		Message:    message,
	}, s.deps.Clock.Current())
}

// push inserts n unless the receiver already has one for the payload.
func push(tx *gorm.DB, n models.Notification) error {
	var existing models.Notification
	err := tx.Where("receiver_id = ? AND payload_id = ?", n.ReceiverID, n.PayloadID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(&n).Error
}

// pushLatest inserts n, or refreshes the receiver's existing notification
// for the payload so it reads as new again.
func pushLatest(tx *gorm.DB, n models.Notification, now time.Time) error {
	res := tx.Model(&models.Notification{}).
		Where("receiver_id = ? AND payload_id = ? AND kind = ?", n.ReceiverID, n.PayloadID, n.Kind).
		Updates(map[string]any{
			"message":             n.Message,
			"status":              n.Status,
			"sender_friend_id":    n.Sender.FriendID,
			"sender_username":     n.Sender.Username,
			"sender_avatar":       n.Sender.Avatar,
			"sender_level":        n.Sender.Level,
			"sender_xp":           n.Sender.XP,
			"sender_streak_count": n.Sender.StreakCount,
			"is_read":             false,
			"created_at":          now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	n.CreatedAt = now
	return tx.Create(&n).Error
}

var requestKinds = []models.NotificationKind{
	models.NotificationFriendRequest,
	models.NotificationMissionRequest,
}

// setPayloadStatus propagates a request status change to its notifications.
func setPayloadStatus(tx *gorm.DB, payloadID uuid.UUID, status models.RequestStatus) error {
	return tx.Model(&models.Notification{}).
		Where("payload_id = ? AND kind IN ?", payloadID, requestKinds).
		Update("status", status).Error
}

// retractProjection removes the notifications projected from a request.
// History about the request, such as acceptance notices, stays.
func retractProjection(tx *gorm.DB, requestID uuid.UUID) error {
	return tx.Where("payload_id = ? AND kind IN ?", requestID, requestKinds).
		Delete(&models.Notification{}).Error
}

// retractReminders removes the reminder notifications userID holds for
// missionID.
func retractReminders(tx *gorm.DB, userID, missionID uuid.UUID) error {
	return tx.Where("receiver_id = ? AND payload_id = ? AND kind = ?", userID, missionID, models.NotificationSystem).
		Delete(&models.Notification{}).Error
}

// Events recorded about a request after it left the pending state.
const (
	eventAccepted  = "accepted"
	eventChallenge = "challenge"
)

// historyPayload keys a notice about a request apart from the request's own
// projections, so reconcile never mistakes one for the other.
func historyPayload(requestID uuid.UUID, event string) uuid.UUID {
	return uuid.NewSHA1(requestID, []byte(event))
}
