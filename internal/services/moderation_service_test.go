package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterContent(t *testing.T) {
	ms := NewModerationService(Deps{})

	cases := []struct {
		text   string
		ok     bool
		reason string
	}{
		{"Morning run", true, ""},
		{"", true, ""},
		{"what the fuck", false, "inappropriate_language"},
		{"see www.example.com now", false, "url_not_allowed"},
		{"mail me at a@b.co", false, "contact_info_not_allowed"},
		{"call 555-123-4567", false, "contact_info_not_allowed"},
		{"yesssss", false, "spam_detected"},
		{"classic", true, ""},
	}
	for _, tc := range cases {
		ok, reason := ms.FilterContent(tc.text)
		assert.Equal(t, tc.ok, ok, tc.text)
		assert.Equal(t, tc.reason, reason, tc.text)
	}
	assert.ErrorIs(t, ms.CheckText("title", "porn"), ErrInvalidInput)
}

func TestBlockRemovesFriendshipAndRequests(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	env.befriend(t, alice, bob)

	m := env.createMission(t, alice, "Swim", 20)
	req, err := env.social.SendMissionRequest(alice, bob, m.ID)
	require.NoError(t, err)
	_, err = env.notifications.Sync(bob)
	require.NoError(t, err)

	require.NoError(t, env.moderation.BlockUser(bob, alice))
	assert.ErrorIs(t, env.moderation.BlockUser(bob, alice), ErrAlreadyBlocked)
	assert.ErrorIs(t, env.moderation.BlockUser(bob, bob), ErrSelfBlock)
	assert.ErrorIs(t, env.moderation.BlockUser(bob, uuid.New()), ErrUserNotFound)

	assert.Zero(t, env.count(t, &models.Friend{}, "1 = 1"))
	var reloaded models.MissionRequest
	require.NoError(t, env.db.First(&reloaded, "id = ?", req.ID).Error)
	assert.Equal(t, models.RequestCanceled, reloaded.Status)
	assert.Zero(t, env.count(t, &models.Notification{}, "payload_id = ?", req.ID))

	_, err = env.social.SendFriendRequest(alice, bob)
	assert.ErrorIs(t, err, ErrFriendInvalidTarget)

	blocked, err := env.moderation.ListBlocked(bob)
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.Equal(t, "alice", blocked[0].Username)

	require.NoError(t, env.moderation.UnblockUser(bob, alice))
	_, err = env.social.SendFriendRequest(alice, bob)
	assert.NoError(t, err)
}
