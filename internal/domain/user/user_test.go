package user

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBeforeCreateFillsDefaults(t *testing.T) {
	u := &User{Username: "ada"}
	assert.NoError(t, u.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, 1, u.Level)
	assert.Equal(t, LearningSpeedMedium, u.LearningSpeed)
	assert.Equal(t, LearningStyleVisual, u.PreferredLearningStyle)
	assert.Equal(t, 30, u.DailyGoal)
}

func TestInitials(t *testing.T) {
	cases := map[string]string{
		"ada":           "AD",
		"ada.lovelace":  "AL",
		"grace_hopper":  "GH",
		"x":             "X",
		"":              "?",
		"linus-t-bytes": "LT",
	}
	for in, want := range cases {
		assert.Equal(t, want, (&User{Username: in}).Initials(), in)
	}
}

func TestXPForNextLevel(t *testing.T) {
	assert.Equal(t, 500, (&User{Level: 1}).XPForNextLevel())
	assert.Equal(t, 1500, (&User{Level: 3}).XPForNextLevel())
	assert.Equal(t, 500, (&User{}).XPForNextLevel())
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, LearningSpeed("fast").Valid())
	assert.False(t, LearningSpeed("warp").Valid())
	assert.True(t, LearningStyle("practical").Valid())
	assert.False(t, LearningStyle("").Valid())
}
