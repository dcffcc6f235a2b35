package gamification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestParseCriteria(t *testing.T) {
	pathID := uuid.New()
	cases := []struct {
		name string
		doc  datatypes.JSONMap
		want Criteria
	}{
		{"lessons", datatypes.JSONMap{"type": "lessons_completed", "count": float64(5)}, Criteria{Type: CriteriaLessonsCompleted, Threshold: 5}},
		{"streak", datatypes.JSONMap{"type": "streak", "days": 7}, Criteria{Type: CriteriaStreak, Threshold: 7}},
		{"xp as string", datatypes.JSONMap{"type": "XP", "amount": "1000"}, Criteria{Type: CriteriaXP, Threshold: 1000}},
		{"path", datatypes.JSONMap{"type": "path_completed", "path_id": pathID.String()}, Criteria{Type: CriteriaPathCompleted, PathID: pathID}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCriteria(tc.doc)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseCriteriaRejectsMalformed(t *testing.T) {
	docs := []datatypes.JSONMap{
		nil,
		{"type": "mystery", "count": 1},
		{"type": "lessons_completed"},
		{"type": "lessons_completed", "count": 1.5},
		{"type": "streak", "days": -2},
		{"type": "xp", "amount": []interface{}{1}},
		{"type": "path_completed", "path_id": "not-a-uuid"},
	}
	for _, doc := range docs {
		_, err := ParseCriteria(doc)
		assert.Error(t, err, "%v", doc)
	}
	_, err := ParseCriteria(datatypes.JSONMap{"type": "mystery"})
	assert.ErrorIs(t, err, ErrUnknownCriteria)
}

func TestCriteriaSatisfied(t *testing.T) {
	pathID := uuid.New()
	stats := ProgressStats{
		LessonsCompleted: 10,
		CurrentStreak:    2,
		LongestStreak:    8,
		XP:               450,
		CompletedPaths:   map[uuid.UUID]bool{pathID: true},
	}
	assert.True(t, Criteria{Type: CriteriaLessonsCompleted, Threshold: 10}.Satisfied(stats))
	assert.False(t, Criteria{Type: CriteriaLessonsCompleted, Threshold: 11}.Satisfied(stats))
	assert.True(t, Criteria{Type: CriteriaStreak, Threshold: 7}.Satisfied(stats))
	assert.False(t, Criteria{Type: CriteriaStreak, Threshold: 9}.Satisfied(stats))
	assert.True(t, Criteria{Type: CriteriaXP, Threshold: 450}.Satisfied(stats))
	assert.False(t, Criteria{Type: CriteriaXP, Threshold: 451}.Satisfied(stats))
	assert.True(t, Criteria{Type: CriteriaPathCompleted, PathID: pathID}.Satisfied(stats))
	assert.False(t, Criteria{Type: CriteriaPathCompleted, PathID: uuid.New()}.Satisfied(stats))
	assert.False(t, Criteria{Type: "other"}.Satisfied(stats))
}
