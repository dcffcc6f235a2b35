package gamification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Streak is one row per user. LastActivityDate is a calendar date held as
// midnight UTC; Longest never drops below Current.
type Streak struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	CurrentStreak       int       `gorm:"column:current_streak;not null" json:"current_streak"`
	LongestStreak       int       `gorm:"column:longest_streak;not null" json:"longest_streak"`
	LastActivityDate    time.Time `gorm:"column:last_activity_date;type:date;not null" json:"last_activity_date"`
	ProtectionAvailable bool      `gorm:"column:protection_available;not null" json:"protection_available"`
	CreatedAt           time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time `gorm:"not null" json:"updated_at"`
}

func (Streak) TableName() string { return "streaks" }

func (s *Streak) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type StreakTransition string

const (
	StreakCreated   StreakTransition = "created"
	StreakUnchanged StreakTransition = "unchanged"
	StreakExtended  StreakTransition = "extended"
	StreakProtected StreakTransition = "protected"
	StreakReset     StreakTransition = "reset"
)

// Changed reports whether the transition mutated a stored streak.
func (t StreakTransition) Changed() bool {
	return t == StreakExtended || t == StreakProtected || t == StreakReset
}

// DateOf returns the calendar date of t as observed in loc, as midnight UTC.
// A nil loc means UTC.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from -> to, ignoring clock time.
func DaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// NextStreak applies one check-in on date today to state. A nil state yields
// a fresh zero streak dated today. The input is never mutated.
//
//	diff == 0 or diff < 0  -> unchanged
//	diff == 1              -> current+1, longest=max(longest,current)
//	diff  > 1, protection  -> protection consumed, current kept
//	diff  > 1              -> current=1
//
// today is read as a calendar date in its own location; see DateOf.
func NextStreak(state *Streak, today time.Time) (Streak, StreakTransition) {
	y, m, d := today.Date()
	today = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if state == nil {
		return Streak{LastActivityDate: today}, StreakCreated
	}

	next := *state
	diff := DaysBetween(state.LastActivityDate, today)
	switch {
	case diff <= 0:
		return next, StreakUnchanged
	case diff == 1:
		next.CurrentStreak++
		if next.CurrentStreak > next.LongestStreak {
			next.LongestStreak = next.CurrentStreak
		}
		next.LastActivityDate = today
		return next, StreakExtended
	case next.ProtectionAvailable:
		next.ProtectionAvailable = false
		next.LastActivityDate = today
		return next, StreakProtected
	default:
		next.CurrentStreak = 1
		// Only moves when the stored streak never got past its creation day.
		if next.LongestStreak < next.CurrentStreak {
			next.LongestStreak = next.CurrentStreak
		}
		next.LastActivityDate = today
		return next, StreakReset
	}
}
