package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"ass", "asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
	"spam", "scam", "scammer", "phishing", "malware",
}

type ModerationService struct {
	db                  *gorm.DB
	deps                Deps
	bannedWordRegexps   []*regexp.Regexp
	urlPattern          *regexp.Regexp
	emailPattern        *regexp.Regexp
	phonePattern        *regexp.Regexp
	repeatedCharPattern *regexp.Regexp
	compiled            bool
	mu                  sync.RWMutex
}

func NewModerationService(d Deps) *ModerationService {
	d = d.withDefaults()
	ms := &ModerationService{db: d.DB, deps: d}
	ms.compilePatterns()
	return ms
}

func (ms *ModerationService) compilePatterns() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.compiled {
		return
	}

	ms.bannedWordRegexps = make([]*regexp.Regexp, 0, len(BannedWords))
	for _, word := range BannedWords {
		pattern := `(?i)\b` + regexp.QuoteMeta(word) + `\b`
		re, err := regexp.Compile(pattern)
		if err == nil {
			ms.bannedWordRegexps = append(ms.bannedWordRegexps, re)
		}
	}

	ms.urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)
	ms.emailPattern = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	ms.phonePattern = regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`)
	ms.repeatedCharPattern = regexp.MustCompile(`(?i)(a{5,}|b{5,}|c{5,}|d{5,}|e{5,}|f{5,}|g{5,}|h{5,}|i{5,}|j{5,}|k{5,}|l{5,}|m{5,}|n{5,}|o{5,}|p{5,}|q{5,}|r{5,}|s{5,}|t{5,}|u{5,}|v{5,}|w{5,}|x{5,}|y{5,}|z{5,}|!{5,}|\?{5,}|\.{5,})`)
	ms.compiled = true
}

// FilterContent checks user supplied text shown to other users (usernames,
// shared mission titles and details). It returns false and a reason code
// when the text is rejected.
func (ms *ModerationService) FilterContent(text string) (bool, string) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	if text == "" {
		return true, ""
	}
	for _, re := range ms.bannedWordRegexps {
		if re.MatchString(text) {
			return false, "inappropriate_language"
		}
	}
	if ms.urlPattern.MatchString(text) {
		return false, "url_not_allowed"
	}
	if ms.emailPattern.MatchString(text) {
		return false, "contact_info_not_allowed"
	}
	if ms.phonePattern.MatchString(text) {
		return false, "contact_info_not_allowed"
	}
	if ms.repeatedCharPattern.MatchString(text) {
		return false, "spam_detected"
	}
	return true, ""
}

func (ms *ModerationService) GetRejectionMessage(reason string) string {
	messages := map[string]string{
		"inappropriate_language":   "Text contains inappropriate language.",
		"url_not_allowed":          "URLs and web links are not allowed.",
		"contact_info_not_allowed": "Contact information is not allowed.",
		"spam_detected":            "Text appears to be spam.",
	}
	if msg, ok := messages[reason]; ok {
		return msg
	}
	return "Text does not meet our content guidelines."
}

// CheckText wraps FilterContent into an ErrInvalidInput for field.
func (ms *ModerationService) CheckText(field, text string) error {
	if ok, reason := ms.FilterContent(text); !ok {
		return Detailed(ErrInvalidInput, field+": "+ms.GetRejectionMessage(reason))
	}
	return nil
}

// BlockUser records the block and tears down any relationship between the
// two users: both friend edges and every pending request.
func (s *ModerationService) BlockUser(blockerID, blockedID uuid.UUID) error {
	if blockerID == blockedID {
		return ErrSelfBlock
	}

	unlock := s.deps.Locker.Lock(blockerID, blockedID)
	defer unlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.Select("id").First(&target, "id = ?", blockedID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		var existing models.Block
		if err := tx.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).First(&existing).Error; err == nil {
			return ErrAlreadyBlocked
		}

		block := models.Block{
			ID:        uuid.New(),
			BlockerID: blockerID,
			BlockedID: blockedID,
		}
		if err := tx.Create(&block).Error; err != nil {
			return fmt.Errorf("failed to create block: %w", err)
		}

		if err := unlinkFriends(tx, blockerID, blockedID); err != nil {
			return err
		}
		return closePendingBetween(tx, blockerID, blockedID, models.RequestCanceled)
	})
}

func (s *ModerationService) UnblockUser(blockerID, blockedID uuid.UUID) error {
	return s.db.
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{}).Error
}

// ListBlocked returns the snapshots of users blocked by userID.
func (s *ModerationService) ListBlocked(userID uuid.UUID) ([]models.Snapshot, error) {
	ids, err := s.GetBlockedIDs(userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Snapshot{}, nil
	}

	var users []models.User
	if err := s.db.Preload("Stats").Where("id IN ?", ids).Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	out := make([]models.Snapshot, len(users))
	for i := range users {
		out[i] = users[i].Snapshot()
	}
	return out, nil
}

func (s *ModerationService) GetBlockedIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	var blocks []models.Block
	if err := s.db.Where("blocker_id = ?", userID).Find(&blocks).Error; err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(blocks))
	for i, b := range blocks {
		ids[i] = b.BlockedID
	}
	return ids, nil
}

// isBlocked reports a block in either direction.
func isBlocked(db *gorm.DB, a, b uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&models.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error
	return count > 0, err
}

// blockedEither returns every user that blocked userID or was blocked by it.
func blockedEither(db *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	var blocks []models.Block
	if err := db.Where("blocker_id = ? OR blocked_id = ?", userID, userID).Find(&blocks).Error; err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(blocks))
	for _, b := range blocks {
		if b.BlockerID == userID {
			ids = append(ids, b.BlockedID)
		} else {
			ids = append(ids, b.BlockerID)
		}
	}
	return ids, nil
}

func (s *ModerationService) IsBlocked(a, b uuid.UUID) (bool, error) {
	return isBlocked(s.db, a, b)
}

func normalizeText(s string) string {
	return strings.TrimSpace(s)
}
