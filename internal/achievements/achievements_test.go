package achievements

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIsStable(t *testing.T) {
	require.Len(t, Catalog, 24)

	ids := map[uuid.UUID]bool{}
	titles := map[string]bool{}
	for _, b := range Catalog {
		assert.False(t, ids[b.ID], "duplicate id %s", b.ID)
		assert.False(t, titles[b.Title], "duplicate title %s", b.Title)
		ids[b.ID] = true
		titles[b.Title] = true
	}

	b, ok := Find(uuid.MustParse("3f1c9a52-6d0e-4b7a-9c21-0a8e5b1d7f01"))
	require.True(t, ok)
	assert.Equal(t, "First Step", b.Title)
}

func TestEvaluate_FreshUser(t *testing.T) {
	fresh := Evaluate(uuid.New(), State{Level: 1}, nil, time.Now())
	assert.Empty(t, fresh)
}

func TestEvaluate_UnlocksMatchingBadges(t *testing.T) {
	userID := uuid.New()
	s := State{MissionCompletedCount: 12, BestStreakCount: 7, FriendCount: 1, Level: 2}

	fresh := Evaluate(userID, s, nil, time.Now())

	var titles []string
	for _, a := range fresh {
		assert.Equal(t, userID, a.UserID)
		titles = append(titles, a.Title)
	}
	assert.ElementsMatch(t, []string{"First Step", "Getting Warmed Up", "On a Roll", "Week Warrior", "New Buddy"}, titles)
}

func TestEvaluate_IsIdempotent(t *testing.T) {
	userID := uuid.New()
	s := State{MissionCompletedCount: 100, BestStreakCount: 30, XPGainedTotal: 6000, FriendCount: 5, ChallengeWonCount: 1, Level: 12}

	first := Evaluate(userID, s, nil, time.Now())
	require.NotEmpty(t, first)

	second := Evaluate(userID, s, first, time.Now())
	assert.Empty(t, second)
}

func TestEvaluate_MatchesByTitle(t *testing.T) {
	userID := uuid.New()
	s := State{MissionCompletedCount: 1}
	legacy := Evaluate(userID, s, nil, time.Now())
	require.Len(t, legacy, 1)
	legacy[0].BadgeID = uuid.New()

	assert.Empty(t, Evaluate(userID, s, legacy, time.Now()))
}
