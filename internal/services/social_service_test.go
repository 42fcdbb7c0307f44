package services

import (
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/habitquest/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendCancelSendKeepsSingleRequest(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	first, err := env.social.SendFriendRequest(alice, bob)
	require.NoError(t, err)
	_, err = env.social.CancelFriendRequest(first.ID, alice)
	require.NoError(t, err)

	second, err := env.social.SendFriendRequest(alice, bob)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.RequestPending, second.Status)
	assert.Equal(t, int64(1), env.count(t, &models.FriendRequest{}, "pair_key = ?", models.PairKey(alice, bob)))
}

func TestReverseSendRevivesSameRow(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	first, err := env.social.SendFriendRequest(alice, bob)
	require.NoError(t, err)
	_, err = env.social.DeclineFriendRequest(first.ID, bob)
	require.NoError(t, err)

	revived, err := env.social.SendFriendRequest(bob, alice)
	require.NoError(t, err)
	assert.Equal(t, first.ID, revived.ID)
	assert.Equal(t, bob, revived.From.FriendID)
	assert.Equal(t, alice, revived.To.FriendID)
}

func TestSendTwiceWhilePending(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	_, err := env.social.SendFriendRequest(alice, bob)
	require.NoError(t, err)
	_, err = env.social.SendFriendRequest(alice, bob)
	assert.ErrorIs(t, err, ErrFriendAlreadySent)
	_, err = env.social.SendFriendRequest(bob, alice)
	assert.ErrorIs(t, err, ErrFriendAlreadySent)
}

func TestConcurrentSendCreatesOneRow(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from, to := alice, bob
			if i%2 == 1 {
				from, to = bob, alice
			}
			_, errs[i] = env.social.SendFriendRequest(from, to)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrFriendAlreadySent)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(1), env.count(t, &models.FriendRequest{}, "1 = 1"))
}

func TestSendRejectsSelfAndUnknown(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")

	_, err := env.social.SendFriendRequest(alice, alice)
	assert.ErrorIs(t, err, ErrFriendInvalidTarget)

	_, err = env.social.SendFriendRequest(alice, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAcceptCreatesBothEdges(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	req, err := env.social.SendFriendRequest(alice, bob)
	require.NoError(t, err)

	accepted, err := env.social.AcceptFriendRequest(req.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, accepted.Status)

	assert.Equal(t, int64(2), env.count(t, &models.Friend{}, "1 = 1"))
	ok, err := env.social.HasFriend(alice, bob)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = env.social.HasFriend(bob, alice)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = env.social.AcceptFriendRequest(req.ID, bob)
	assert.ErrorIs(t, err, ErrRequestNotPending)
	assert.Equal(t, int64(2), env.count(t, &models.Friend{}, "1 = 1"))

	_, err = env.social.SendFriendRequest(alice, bob)
	assert.ErrorIs(t, err, ErrFriendAlreadyFriends)

	assert.Equal(t, int64(1), env.count(t, &models.Notification{},
		"receiver_id = ? AND kind = ?", alice, models.NotificationSystem))
	assert.Equal(t, int64(1), env.count(t, &models.Achievement{}, "user_id = ?", alice))
	assert.Equal(t, int64(1), env.count(t, &models.ProgressEvent{},
		"user_id = ? AND type = ?", bob, models.EventFriendAdded))
}

func TestOnlyReceiverMayAccept(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")

	req, err := env.social.SendFriendRequest(alice, bob)
	require.NoError(t, err)

	_, err = env.social.AcceptFriendRequest(req.ID, alice)
	assert.ErrorIs(t, err, ErrNotAuthorized)
	_, err = env.social.AcceptFriendRequest(req.ID, carol)
	assert.ErrorIs(t, err, ErrNotAuthorized)
	_, err = env.social.CancelFriendRequest(req.ID, bob)
	assert.ErrorIs(t, err, ErrNotAuthorized)
	_, err = env.social.AcceptFriendRequest(uuid.New(), bob)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveFriendDeletesBothSides(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	env.befriend(t, alice, bob)

	require.NoError(t, env.social.RemoveFriend(bob, alice))
	assert.Equal(t, int64(0), env.count(t, &models.Friend{}, "1 = 1"))
	assert.ErrorIs(t, env.social.RemoveFriend(bob, alice), ErrNotFound)

	_, err := env.social.SendFriendRequest(bob, alice)
	assert.NoError(t, err)
}

func TestListFriendsAndFavorite(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")
	env.befriend(t, alice, bob)
	env.befriend(t, carol, alice)

	require.NoError(t, env.social.SetFavorite(alice, carol, true))

	friends, err := env.social.ListFriends(alice)
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, "carol", friends[0].Username)
	assert.True(t, friends[0].IsFavorite)
	assert.Equal(t, "bob", friends[1].Username)
	assert.Equal(t, 1, friends[1].Level)

	bobFriends, err := env.social.ListFriends(bob)
	require.NoError(t, err)
	require.Len(t, bobFriends, 1)
	assert.False(t, bobFriends[0].IsFavorite)

	assert.ErrorIs(t, env.social.SetFavorite(bob, carol, true), ErrNotFound)
}

func TestSearchExcludesSelfAndBlocked(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	env.register(t, "alfred")
	albert := env.register(t, "albert")
	env.register(t, "bob")

	_, err := env.social.SendFriendRequest(alice, albert)
	require.NoError(t, err)

	results, err := env.social.Search(alice, "AL")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "albert", results[0].Username)
	assert.True(t, results[0].Outgoing)
	assert.NotNil(t, results[0].RequestID)
	assert.Equal(t, "alfred", results[1].Username)
	assert.Nil(t, results[1].RequestID)

	require.NoError(t, env.moderation.BlockUser(albert, alice))
	results, err = env.social.Search(alice, "al")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alfred", results[0].Username)

	results, err = env.social.Search(alice, "%")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMissionRequestAcceptCopiesMission(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	mission := env.createMission(t, alice, "Read 10 pages", 15)

	_, err := env.social.SendMissionRequest(alice, bob, mission.ID)
	assert.ErrorIs(t, err, ErrFriendInvalidTarget)

	env.befriend(t, alice, bob)
	req, err := env.social.SendMissionRequest(alice, bob, mission.ID)
	require.NoError(t, err)
	assert.Equal(t, "Read 10 pages", req.Mission.Title)

	_, err = env.social.SendMissionRequest(alice, bob, mission.ID)
	assert.ErrorIs(t, err, ErrFriendAlreadySent)

	incoming, err := env.social.ListMissionRequests(bob)
	require.NoError(t, err)
	require.Len(t, incoming.Incoming, 1)

	resp, err := env.social.AcceptMissionRequest(req.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, bob, resp.Mission.UserID)
	assert.Equal(t, models.MissionCustom, resp.Mission.Type)
	require.NotNil(t, resp.Mission.SourceRequestID)
	assert.Equal(t, req.ID, *resp.Mission.SourceRequestID)
	assert.Equal(t, 15, resp.Mission.XP)

	_, err = env.social.AcceptMissionRequest(req.ID, bob)
	assert.ErrorIs(t, err, ErrRequestNotPending)

	result, err := env.missions.Complete(bob, resp.Mission.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.ChallengeWonCount)
	assert.Equal(t, int64(1), env.count(t, &models.Notification{},
		"receiver_id = ? AND kind = ?", alice, models.NotificationChallenge))

	env.clock.Advance(24 * time.Hour)
	result, err = env.missions.Complete(bob, resp.Mission.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.ChallengeWonCount)
}

func TestExpireStale(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")

	stale, err := env.social.SendFriendRequest(alice, bob)
	require.NoError(t, err)
	fresh, err := env.social.SendFriendRequest(alice, carol)
	require.NoError(t, err)

	_, err = env.notifications.Sync(bob)
	require.NoError(t, err)

	old := env.clock.Now().Add(-30 * 24 * time.Hour).UTC()
	require.NoError(t, env.db.Model(&models.FriendRequest{}).Where("id = ?", stale.ID).
		UpdateColumn("updated_at", old).Error)
	require.NoError(t, env.db.Model(&models.FriendRequest{}).Where("id = ?", fresh.ID).
		UpdateColumn("updated_at", env.clock.Now().UTC()).Error)

	n, err := env.social.ExpireStale(14 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var reloaded models.FriendRequest
	require.NoError(t, env.db.First(&reloaded, "id = ?", stale.ID).Error)
	assert.Equal(t, models.RequestExpired, reloaded.Status)

	var note models.Notification
	require.NoError(t, env.db.Where("payload_id = ?", stale.ID).First(&note).Error)
	assert.Equal(t, models.RequestExpired, note.Status)

	_, err = env.social.SendFriendRequest(alice, bob)
	assert.NoError(t, err)
}

func TestReviveKeepsAcceptanceHistory(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	req, err := env.social.SendFriendRequest(alice, bob)
	require.NoError(t, err)
	_, err = env.notifications.Sync(bob)
	require.NoError(t, err)
	_, err = env.social.AcceptFriendRequest(req.ID, bob)
	require.NoError(t, err)
	require.NoError(t, env.notifications.MarkAllRead(alice))
	require.NoError(t, env.social.RemoveFriend(alice, bob))

	revived, err := env.social.SendFriendRequest(alice, bob)
	require.NoError(t, err)
	assert.Equal(t, req.ID, revived.ID)

	history := func() []models.Notification {
		var notes []models.Notification
		require.NoError(t, env.db.Where("receiver_id = ? AND payload_id = ? AND kind = ?",
			alice, historyPayload(req.ID, eventAccepted), models.NotificationSystem).Find(&notes).Error)
		return notes
	}
	require.Len(t, history(), 1)
	assert.Zero(t, env.count(t, &models.Notification{},
		"payload_id = ? AND kind = ?", req.ID, models.NotificationFriendRequest))

	// the acceptance notice does not hide a request in the other direction
	_, err = env.social.CancelFriendRequest(req.ID, alice)
	require.NoError(t, err)
	_, err = env.social.SendFriendRequest(bob, alice)
	require.NoError(t, err)
	inserted, err := env.notifications.Sync(alice)
	require.NoError(t, err)
	require.Len(t, inserted, 1)
	assert.Equal(t, req.ID, inserted[0].PayloadID)

	// a second acceptance refreshes the notice instead of being swallowed
	_, err = env.social.CancelFriendRequest(req.ID, bob)
	require.NoError(t, err)
	_, err = env.social.SendFriendRequest(alice, bob)
	require.NoError(t, err)
	env.clock.Advance(time.Hour)
	_, err = env.social.AcceptFriendRequest(req.ID, bob)
	require.NoError(t, err)
	notes := history()
	require.Len(t, notes, 1)
	assert.False(t, notes[0].IsRead)
	assert.Equal(t, models.RequestAccepted, notes[0].Status)
}
