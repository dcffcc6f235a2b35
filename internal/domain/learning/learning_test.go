package learning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(0, 0))
	assert.Equal(t, 0.0, Percentage(3, 0))
	assert.Equal(t, 50.0, Percentage(2, 4))
	assert.InDelta(t, 33.333, Percentage(1, 3), 0.001)
	assert.Equal(t, 100.0, Percentage(4, 4))
}

func TestLessonDefaults(t *testing.T) {
	l := &Lesson{Title: "Loops"}
	assert.NoError(t, l.BeforeCreate(nil))
	assert.Equal(t, DefaultLessonDifficulty, l.Difficulty)
	assert.Equal(t, LessonTypeInteractive, l.Type)
	assert.NotNil(t, l.Content)

	hard := &Lesson{Difficulty: 2.5, Type: LessonTypeQuiz}
	assert.NoError(t, hard.BeforeCreate(nil))
	assert.Equal(t, 2.5, hard.Difficulty)
	assert.Equal(t, LessonTypeQuiz, hard.Type)
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, PathLevelAdvanced.Valid())
	assert.False(t, PathLevel("expert").Valid())
	assert.True(t, LessonTypeProject.Valid())
	assert.False(t, LessonType("lecture").Valid())
}
