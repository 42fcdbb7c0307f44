package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/dto"
	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const searchLimit = 20

// SocialService owns friendships, friend requests and mission requests.
type SocialService struct {
	db           *gorm.DB
	deps         Deps
	progress     *ProgressService
	achievements *AchievementService
}

func NewSocialService(d Deps, progress *ProgressService, achievementService *AchievementService) *SocialService {
	d = d.withDefaults()
	return &SocialService{
		db:           d.DB,
		deps:         d,
		progress:     progress,
		achievements: achievementService,
	}
}

// ---------- friendships ----------

func hasFriend(db *gorm.DB, userID, friendID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&models.Friend{}).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Count(&count).Error
	return count > 0, err
}

func linkFriends(tx *gorm.DB, a, b uuid.UUID) error {
	edges := models.FriendEdges(a, b)
	if err := tx.Create(&edges).Error; err != nil {
		return fmt.Errorf("failed to link friends: %w", err)
	}
	return nil
}

// unlinkFriends removes both directed edges between a and b.
func unlinkFriends(tx *gorm.DB, a, b uuid.UUID) error {
	return tx.
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", a, b, b, a).
		Delete(&models.Friend{}).Error
}

// closePendingBetween moves every pending request between a and b to status
// and drops the notifications projected from them.
func closePendingBetween(tx *gorm.DB, a, b uuid.UUID, status models.RequestStatus) error {
	var friendIDs []uuid.UUID
	if err := tx.Model(&models.FriendRequest{}).
		Where("pair_key = ? AND status = ?", models.PairKey(a, b), models.RequestPending).
		Pluck("id", &friendIDs).Error; err != nil {
		return err
	}
	var missionIDs []uuid.UUID
	if err := tx.Model(&models.MissionRequest{}).
		Where("((from_friend_id = ? AND to_friend_id = ?) OR (from_friend_id = ? AND to_friend_id = ?)) AND status = ?",
			a, b, b, a, models.RequestPending).
		Pluck("id", &missionIDs).Error; err != nil {
		return err
	}

	if len(friendIDs) > 0 {
		if err := tx.Model(&models.FriendRequest{}).Where("id IN ?", friendIDs).
			Update("status", status).Error; err != nil {
			return err
		}
	}
	if len(missionIDs) > 0 {
		if err := tx.Model(&models.MissionRequest{}).Where("id IN ?", missionIDs).
			Update("status", status).Error; err != nil {
			return err
		}
	}
	for _, id := range append(friendIDs, missionIDs...) {
		if err := retractProjection(tx, id); err != nil {
			return err
		}
	}
	return nil
}

func loadUser(db *gorm.DB, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := db.Preload("Stats").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

type friendRow struct {
	FriendID              uuid.UUID
	Username              string
	Avatar                string
	Level                 int
	XP                    int
	StreakCount           int
	BestStreakCount       int
	MissionCompletedCount int
	IsFavorite            bool
	CreatedAt             time.Time
}

// ListFriends returns live snapshots of the user's friends, favorites first.
func (s *SocialService) ListFriends(userID uuid.UUID) ([]dto.FriendResponse, error) {
	var rows []friendRow
	err := s.db.Table("friends").
		Select(`friends.friend_id, users.username, users.avatar,
			user_stats.level, user_stats.xp, user_stats.streak_count, user_stats.best_streak_count,
			user_stats.mission_completed_count, friends.is_favorite, friends.created_at`).
		Joins("JOIN users ON users.id = friends.friend_id").
		Joins("LEFT JOIN user_stats ON user_stats.user_id = friends.friend_id").
		Where("friends.user_id = ?", userID).
		Order("friends.is_favorite DESC, users.username ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]dto.FriendResponse, len(rows))
	for i, r := range rows {
		out[i] = dto.FriendResponse{
			FriendID:              r.FriendID,
			Username:              r.Username,
			Avatar:                r.Avatar,
			Level:                 r.Level,
			XP:                    r.XP,
			StreakCount:           r.StreakCount,
			BestStreakCount:       r.BestStreakCount,
			MissionCompletedCount: r.MissionCompletedCount,
			IsFavorite:            r.IsFavorite,
			Since:                 r.CreatedAt,
		}
	}
	return out, nil
}

func (s *SocialService) HasFriend(userID, friendID uuid.UUID) (bool, error) {
	return hasFriend(s.db, userID, friendID)
}

// SetFavorite flags the friend on the caller's side only.
func (s *SocialService) SetFavorite(userID, friendID uuid.UUID, favorite bool) error {
	result := s.db.Model(&models.Friend{}).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Update("is_favorite", favorite)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveFriend deletes the friendship on both sides.
func (s *SocialService) RemoveFriend(userID, friendID uuid.UUID) error {
	unlock := s.deps.Locker.Lock(userID, friendID)
	defer unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := hasFriend(tx, userID, friendID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		return unlinkFriends(tx, userID, friendID)
	})
}

// Search finds users by username prefix. Blocked users in either direction
// and the caller are excluded.
func (s *SocialService) Search(userID uuid.UUID, query string) ([]dto.UserSearchResult, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []dto.UserSearchResult{}, nil
	}
	query = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(query)

	excluded, err := blockedEither(s.db, userID)
	if err != nil {
		return nil, err
	}
	excluded = append(excluded, userID)

	var users []models.User
	if err := s.db.Preload("Stats").
		Where(`username LIKE ? ESCAPE '\'`, query+"%").
		Where("id NOT IN ?", excluded).
		Order("username ASC").
		Limit(searchLimit).
		Find(&users).Error; err != nil {
		return nil, err
	}

	out := make([]dto.UserSearchResult, 0, len(users))
	for i := range users {
		u := &users[i]
		result := dto.UserSearchResult{Snapshot: u.Snapshot()}

		if result.IsFriend, err = hasFriend(s.db, userID, u.ID); err != nil {
			return nil, err
		}
		var req models.FriendRequest
		err := s.db.Where("pair_key = ?", models.PairKey(userID, u.ID)).First(&req).Error
		if err == nil && req.Status.IsPending() {
			id := req.ID
			result.RequestID = &id
			result.RequestStatus = req.Status
			result.Outgoing = req.From.FriendID == userID
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		out = append(out, result)
	}
	return out, nil
}

// ---------- friend requests ----------

// SendFriendRequest creates a pending request from userID to targetID, or
// revives the pair's previous request.
func (s *SocialService) SendFriendRequest(userID, targetID uuid.UUID) (*models.FriendRequest, error) {
	if userID == targetID {
		return nil, Detailed(ErrFriendInvalidTarget, "you cannot add yourself")
	}

	unlock := s.deps.Locker.Lock(userID, targetID)
	defer unlock()

	var req models.FriendRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		sender, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		target, err := loadUser(tx, targetID)
		if err != nil {
			return err
		}

		blocked, err := isBlocked(tx, userID, targetID)
		if err != nil {
			return err
		}
		if blocked {
			return ErrFriendInvalidTarget
		}

		friends, err := hasFriend(tx, userID, targetID)
		if err != nil {
			return err
		}
		if friends {
			return ErrFriendAlreadyFriends
		}

		err = tx.Where("pair_key = ?", models.PairKey(userID, targetID)).First(&req).Error
		switch {
		case err == nil && req.Status.IsPending():
			return ErrFriendAlreadySent
		case err == nil:
			req.From = sender.Snapshot()
			req.To = target.Snapshot()
			req.Status = models.RequestPending
			if err := tx.Save(&req).Error; err != nil {
				return err
			}
			return retractProjection(tx, req.ID)
		case errors.Is(err, gorm.ErrRecordNotFound):
			req = models.FriendRequest{
				ID:     uuid.New(),
				From:   sender.Snapshot(),
				To:     target.Snapshot(),
				Status: models.RequestPending,
			}
			req.PairKey = models.PairKey(userID, targetID)
			return tx.Create(&req).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	slog.Info("friend request sent", "user_id", userID.String(), "target_id", targetID.String(), "request_id", req.ID.String())
	return &req, nil
}

// lockFriendRequest fetches a request and locks both of its users. The
// caller must release the returned unlock func.
func (s *SocialService) lockFriendRequest(requestID uuid.UUID) (*models.FriendRequest, func(), error) {
	var req models.FriendRequest
	if err := s.db.First(&req, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	unlock := s.deps.Locker.Lock(req.From.FriendID, req.To.FriendID)
	return &req, unlock, nil
}

// AcceptFriendRequest lets the receiver accept. Both friend edges are
// created in the same transaction that flips the status.
func (s *SocialService) AcceptFriendRequest(requestID, userID uuid.UUID) (*models.FriendRequest, error) {
	req, unlock, err := s.lockFriendRequest(requestID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if req.To.FriendID != userID {
		return nil, ErrNotAuthorized
	}

	now := s.deps.Clock.Current()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(req, "id = ?", requestID).Error; err != nil {
			return err
		}
		if !req.Status.IsPending() {
			return ErrRequestNotPending
		}

		sender, err := loadUser(tx, req.From.FriendID)
		if err != nil {
			return err
		}
		receiver, err := loadUser(tx, req.To.FriendID)
		if err != nil {
			return err
		}

		already, err := hasFriend(tx, sender.ID, receiver.ID)
		if err != nil {
			return err
		}
		if !already {
			if err := linkFriends(tx, sender.ID, receiver.ID); err != nil {
				return err
			}
		}

		req.Status = models.RequestAccepted
		if err := tx.Save(req).Error; err != nil {
			return err
		}
		if err := setPayloadStatus(tx, req.ID, models.RequestAccepted); err != nil {
			return err
		}

		for _, pair := range [][2]uuid.UUID{{sender.ID, receiver.ID}, {receiver.ID, sender.ID}} {
			friendID := pair[1]
			ev := models.ProgressEvent{Type: models.EventFriendAdded, FriendID: &friendID}
			if err := s.progress.Append(tx, pair[0], ev, now); err != nil {
				return err
			}
			if _, err := s.achievements.Evaluate(tx, pair[0]); err != nil {
				return err
			}
		}

		return pushLatest(tx, models.Notification{
			Kind:       models.NotificationSystem,
			Sender:     receiver.Snapshot(),
			ReceiverID: sender.ID,
			PayloadID:  historyPayload(req.ID, eventAccepted),
			Status:     models.RequestAccepted,
			Message:    receiver.Username + " accepted your friend request",
		}, now)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// DeclineFriendRequest lets the receiver decline.
func (s *SocialService) DeclineFriendRequest(requestID, userID uuid.UUID) (*models.FriendRequest, error) {
	req, unlock, err := s.lockFriendRequest(requestID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if req.To.FriendID != userID {
		return nil, ErrNotAuthorized
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(req, "id = ?", requestID).Error; err != nil {
			return err
		}
		if !req.Status.IsPending() {
			return ErrRequestNotPending
		}
		req.Status = models.RequestDeclined
		if err := tx.Save(req).Error; err != nil {
			return err
		}
		return setPayloadStatus(tx, req.ID, models.RequestDeclined)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// CancelFriendRequest lets the sender withdraw and retracts the
// receiver's notification.
func (s *SocialService) CancelFriendRequest(requestID, userID uuid.UUID) (*models.FriendRequest, error) {
	req, unlock, err := s.lockFriendRequest(requestID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if req.From.FriendID != userID {
		return nil, ErrNotAuthorized
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(req, "id = ?", requestID).Error; err != nil {
			return err
		}
		if !req.Status.IsPending() {
			return ErrRequestNotPending
		}
		req.Status = models.RequestCanceled
		if err := tx.Save(req).Error; err != nil {
			return err
		}
		return retractProjection(tx, req.ID)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ListFriendRequests returns pending requests addressed to and sent by the
// user, newest first.
func (s *SocialService) ListFriendRequests(userID uuid.UUID) (*dto.FriendRequestsResponse, error) {
	out := &dto.FriendRequestsResponse{}
	if err := s.db.Where("to_friend_id = ? AND status = ?", userID, models.RequestPending).
		Order("updated_at DESC").Find(&out.Incoming).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("from_friend_id = ? AND status = ?", userID, models.RequestPending).
		Order("updated_at DESC").Find(&out.Outgoing).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ---------- mission requests ----------

// SendMissionRequest shares one of the sender's missions with a friend.
func (s *SocialService) SendMissionRequest(userID, targetID, missionID uuid.UUID) (*models.MissionRequest, error) {
	if userID == targetID {
		return nil, Detailed(ErrFriendInvalidTarget, "you cannot challenge yourself")
	}

	unlock := s.deps.Locker.Lock(userID, targetID)
	defer unlock()

	var req models.MissionRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var mission models.Mission
		if err := tx.Where("id = ? AND user_id = ?", missionID, userID).First(&mission).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		sender, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		target, err := loadUser(tx, targetID)
		if err != nil {
			return err
		}

		friends, err := hasFriend(tx, userID, targetID)
		if err != nil {
			return err
		}
		if !friends {
			return Detailed(ErrFriendInvalidTarget, "you can only challenge friends")
		}

		key := models.MissionRequestKey(userID, targetID, missionID)
		err = tx.Where("request_key = ?", key).First(&req).Error
		switch {
		case err == nil && req.Status.IsPending():
			return ErrFriendAlreadySent
		case err == nil:
			req.From = sender.Snapshot()
			req.To = target.Snapshot()
			req.Mission = models.PayloadOf(&mission)
			req.Status = models.RequestPending
			if err := tx.Save(&req).Error; err != nil {
				return err
			}
			return retractProjection(tx, req.ID)
		case errors.Is(err, gorm.ErrRecordNotFound):
			req = models.MissionRequest{
				ID:              uuid.New(),
				RequestKey:      key,
				SourceMissionID: missionID,
				From:            sender.Snapshot(),
				To:              target.Snapshot(),
				Mission:         models.PayloadOf(&mission),
				Status:          models.RequestPending,
			}
			return tx.Create(&req).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *SocialService) lockMissionRequest(requestID uuid.UUID) (*models.MissionRequest, func(), error) {
	var req models.MissionRequest
	if err := s.db.First(&req, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	unlock := s.deps.Locker.Lock(req.From.FriendID, req.To.FriendID)
	return &req, unlock, nil
}

// AcceptMissionRequest copies the shared mission into the receiver's list
// as a custom mission linked back to the request.
func (s *SocialService) AcceptMissionRequest(requestID, userID uuid.UUID) (*dto.AcceptMissionRequestResponse, error) {
	req, unlock, err := s.lockMissionRequest(requestID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if req.To.FriendID != userID {
		return nil, ErrNotAuthorized
	}

	now := s.deps.Clock.Current()
	var mission models.Mission
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(req, "id = ?", requestID).Error; err != nil {
			return err
		}
		if !req.Status.IsPending() {
			return ErrRequestNotPending
		}

		receiver, err := loadUser(tx, userID)
		if err != nil {
			return err
		}

		reqID := req.ID
		mission = models.Mission{
			ID:              uuid.New(),
			UserID:          userID,
			SourceRequestID: &reqID,
			Title:           req.Mission.Title,
			XP:              req.Mission.XP,
			Icon:            req.Mission.Icon,
			Type:            models.MissionCustom,
			Category:        req.Mission.Category,
			Details:         req.Mission.Details,
		}
		if err := tx.Create(&mission).Error; err != nil {
			return fmt.Errorf("failed to copy mission: %w", err)
		}
		if err := s.progress.Append(tx, userID, models.MissionEvent(models.EventAddMission, &mission), now); err != nil {
			return err
		}

		req.Status = models.RequestAccepted
		if err := tx.Save(req).Error; err != nil {
			return err
		}
		if err := setPayloadStatus(tx, req.ID, models.RequestAccepted); err != nil {
			return err
		}

		return pushLatest(tx, models.Notification{
			Kind:       models.NotificationSystem,
			Sender:     receiver.Snapshot(),
			ReceiverID: req.From.FriendID,
			PayloadID:  historyPayload(req.ID, eventAccepted),
			Status:     models.RequestAccepted,
			Message:    receiver.Username + " accepted your challenge: " + req.Mission.Title,
		}, now)
	})
	if err != nil {
		return nil, err
	}
	return &dto.AcceptMissionRequestResponse{Request: *req, Mission: mission}, nil
}

func (s *SocialService) DeclineMissionRequest(requestID, userID uuid.UUID) (*models.MissionRequest, error) {
	req, unlock, err := s.lockMissionRequest(requestID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if req.To.FriendID != userID {
		return nil, ErrNotAuthorized
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(req, "id = ?", requestID).Error; err != nil {
			return err
		}
		if !req.Status.IsPending() {
			return ErrRequestNotPending
		}
		req.Status = models.RequestDeclined
		if err := tx.Save(req).Error; err != nil {
			return err
		}
		return setPayloadStatus(tx, req.ID, models.RequestDeclined)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *SocialService) CancelMissionRequest(requestID, userID uuid.UUID) (*models.MissionRequest, error) {
	req, unlock, err := s.lockMissionRequest(requestID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if req.From.FriendID != userID {
		return nil, ErrNotAuthorized
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(req, "id = ?", requestID).Error; err != nil {
			return err
		}
		if !req.Status.IsPending() {
			return ErrRequestNotPending
		}
		req.Status = models.RequestCanceled
		if err := tx.Save(req).Error; err != nil {
			return err
		}
		return retractProjection(tx, req.ID)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *SocialService) ListMissionRequests(userID uuid.UUID) (*dto.MissionRequestsResponse, error) {
	out := &dto.MissionRequestsResponse{}
	if err := s.db.Where("to_friend_id = ? AND status = ?", userID, models.RequestPending).
		Order("updated_at DESC").Find(&out.Incoming).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("from_friend_id = ? AND status = ?", userID, models.RequestPending).
		Order("updated_at DESC").Find(&out.Outgoing).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ---------- expiry ----------

// ExpireStale moves pending requests untouched for longer than maxAge to
// expired, together with their notifications. It returns how many requests
// changed.
func (s *SocialService) ExpireStale(maxAge time.Duration) (int64, error) {
	cutoff := s.deps.Clock.Now().Add(-maxAge).UTC()
	var total int64

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.FriendRequest{}, &models.MissionRequest{}} {
			var ids []uuid.UUID
			if err := tx.Model(model).
				Where("status = ? AND updated_at < ?", models.RequestPending, cutoff).
				Pluck("id", &ids).Error; err != nil {
				return err
			}
			if len(ids) == 0 {
				continue
			}
			if err := tx.Model(model).Where("id IN ?", ids).
				Update("status", models.RequestExpired).Error; err != nil {
				return err
			}
			for _, id := range ids {
				if err := setPayloadStatus(tx, id, models.RequestExpired); err != nil {
					return err
				}
			}
			total += int64(len(ids))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
