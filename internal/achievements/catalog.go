// Package achievements defines the badge catalog and decides which badges
// a user state unlocks.
package achievements

import "github.com/google/uuid"

// State is the subset of user progress badge rules read.
type State struct {
	MissionCompletedCount int
	BestStreakCount       int
	XPGainedTotal         int
	FriendCount           int
	ChallengeWonCount     int
	Level                 int
}

type Badge struct {
	ID      uuid.UUID
	Title   string
	Icon    string
	Color   string
	Details string
	rule    func(State) bool
}

func (b Badge) Unlocked(s State) bool {
	return b.rule(s)
}

func missions(n int) func(State) bool {
	return func(s State) bool { return s.MissionCompletedCount >= n }
}

func streak(n int) func(State) bool {
	return func(s State) bool { return s.BestStreakCount >= n }
}

func xpTotal(n int) func(State) bool {
	return func(s State) bool { return s.XPGainedTotal >= n }
}

func friends(n int) func(State) bool {
	return func(s State) bool { return s.FriendCount >= n }
}

func challenges(n int) func(State) bool {
	return func(s State) bool { return s.ChallengeWonCount >= n }
}

func level(n int) func(State) bool {
	return func(s State) bool { return s.Level >= n }
}

// Catalog ids are persisted with every unlock and must never change.
var Catalog = []Badge{
	{uuid.MustParse("3f1c9a52-6d0e-4b7a-9c21-0a8e5b1d7f01"), "First Step", "flag.fill", "green", "Complete your first mission.", missions(1)},
	{uuid.MustParse("7a2e4c19-83b5-4f6d-a0e8-1b9c2d3e4f02"), "Getting Warmed Up", "flame", "orange", "Complete 10 missions.", missions(10)},
	{uuid.MustParse("b54d1e87-2c9a-4e3b-8f70-6d5c4b3a2f03"), "Habit Builder", "hammer.fill", "blue", "Complete 25 missions.", missions(25)},
	{uuid.MustParse("c8e3f6a1-5b2d-4c9e-b7a4-3f2e1d0c9b04"), "Half Century", "50.circle.fill", "purple", "Complete 50 missions.", missions(50)},
	{uuid.MustParse("d1a7b3c5-9e8f-4a2b-9c6d-5e4f3a2b1c05"), "Centurion", "shield.fill", "red", "Complete 100 missions.", missions(100)},
	{uuid.MustParse("e6f2a9d4-1c3b-4e5a-8d7c-9b0a1f2e3d06"), "Unstoppable", "bolt.fill", "yellow", "Complete 250 missions.", missions(250)},
	{uuid.MustParse("f3b8c2e7-4d6a-4f1b-a9e5-2c1d0b9a8f07"), "Mission Legend", "crown.fill", "gold", "Complete 500 missions.", missions(500)},

	{uuid.MustParse("0a9d8c7b-6e5f-4a3b-9c2d-1e0f9a8b7c08"), "On a Roll", "flame.fill", "orange", "Reach a 3 day streak.", streak(3)},
	{uuid.MustParse("1b8e7d6c-5f4a-4b3c-8d2e-0f1a9b8c7d09"), "Week Warrior", "calendar", "blue", "Reach a 7 day streak.", streak(7)},
	{uuid.MustParse("2c7f6e5d-4a3b-4c2d-9e1f-0a9b8c7d6e10"), "Fortnight Focus", "calendar.badge.clock", "teal", "Reach a 14 day streak.", streak(14)},
	{uuid.MustParse("3d6a5f4e-3b2c-4d1e-8f0a-9b8c7d6e5f11"), "Monthly Master", "calendar.circle.fill", "purple", "Reach a 30 day streak.", streak(30)},
	{uuid.MustParse("4e5b4a3f-2c1d-4e0f-9a9b-8c7d6e5f4a12"), "Iron Will", "figure.strengthtraining.traditional", "gray", "Reach a 60 day streak.", streak(60)},
	{uuid.MustParse("5f4c3b2a-1d0e-4f9a-8b8c-7d6e5f4a3b13"), "Streak Immortal", "infinity", "red", "Reach a 100 day streak.", streak(100)},

	{uuid.MustParse("6a3d2c1b-0e9f-4a8b-9c7d-6e5f4a3b2c14"), "XP Collector", "star.fill", "yellow", "Earn 500 XP in total.", xpTotal(500)},
	{uuid.MustParse("7b2e1d0c-9f8a-4b7c-8d6e-5f4a3b2c1d15"), "XP Hoarder", "star.circle.fill", "orange", "Earn 1,000 XP in total.", xpTotal(1000)},
	{uuid.MustParse("8c1f0e9d-8a7b-4c6d-9e5f-4a3b2c1d0e16"), "XP Tycoon", "sparkles", "purple", "Earn 5,000 XP in total.", xpTotal(5000)},
	{uuid.MustParse("9d0a9f8e-7b6c-4d5e-8f4a-3b2c1d0e9f17"), "XP Royalty", "rosette", "gold", "Earn 10,000 XP in total.", xpTotal(10000)},

	{uuid.MustParse("ae9b8a7f-6c5d-4e4f-9a3b-2c1d0e9f8a18"), "New Buddy", "person.badge.plus", "green", "Add your first friend.", friends(1)},
	{uuid.MustParse("bf8c7b6a-5d4e-4f3a-8b2c-1d0e9f8a7b19"), "Squad Goals", "person.3.fill", "blue", "Have 5 friends.", friends(5)},
	{uuid.MustParse("c09d8c7b-4e3f-4a2b-9c1d-0e9f8a7b6c20"), "Social Butterfly", "person.3.sequence.fill", "pink", "Have 10 friends.", friends(10)},

	{uuid.MustParse("d1ae9d8c-3f2a-4b1c-8d0e-9f8a7b6c5d21"), "Challenge Accepted", "trophy", "orange", "Win your first challenge.", challenges(1)},
	{uuid.MustParse("e2bfae9d-2a1b-4c0d-9e9f-8a7b6c5d4e22"), "Challenge Champion", "trophy.fill", "gold", "Win 10 challenges.", challenges(10)},

	{uuid.MustParse("f3c0bfae-1b0c-4d9e-8f8a-7b6c5d4e3f23"), "Rising Star", "arrow.up.circle.fill", "teal", "Reach level 5.", level(5)},
	{uuid.MustParse("04d1c0bf-0c9d-4e8f-9a7b-6c5d4e3f2a24"), "Veteran", "medal.fill", "gold", "Reach level 10.", level(10)},
}

// Find returns the catalog badge with id.
func Find(id uuid.UUID) (Badge, bool) {
	for _, b := range Catalog {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}
