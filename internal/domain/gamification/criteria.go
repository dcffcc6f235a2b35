package gamification

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CriteriaType string

const (
	CriteriaLessonsCompleted CriteriaType = "lessons_completed"
	CriteriaStreak           CriteriaType = "streak"
	CriteriaXP               CriteriaType = "xp"
	CriteriaPathCompleted    CriteriaType = "path_completed"
)

// Criteria is the parsed form of an Achievement.Criteria document.
type Criteria struct {
	Type      CriteriaType
	Threshold int64
	PathID    uuid.UUID
}

// ProgressStats is the per-user snapshot criteria are checked against.
type ProgressStats struct {
	LessonsCompleted int64
	CurrentStreak    int
	LongestStreak    int
	XP               int64
	CompletedPaths   map[uuid.UUID]bool
}

var ErrUnknownCriteria = errors.New("unknown achievement criteria")

// ParseCriteria reads a criteria document such as
// {"type":"lessons_completed","count":5}. Unknown types and malformed
// parameters return an error so callers can skip the achievement.
func ParseCriteria(doc datatypes.JSONMap) (Criteria, error) {
	if len(doc) == 0 {
		return Criteria{}, fmt.Errorf("%w: empty document", ErrUnknownCriteria)
	}
	rawType, _ := doc["type"].(string)
	c := Criteria{Type: CriteriaType(strings.ToLower(strings.TrimSpace(rawType)))}

	var (
		n   int64
		err error
	)
	switch c.Type {
	case CriteriaLessonsCompleted:
		n, err = intParam(doc, "count")
	case CriteriaStreak:
		n, err = intParam(doc, "days")
	case CriteriaXP:
		n, err = intParam(doc, "amount")
	case CriteriaPathCompleted:
		s, _ := doc["path_id"].(string)
		id, perr := uuid.Parse(strings.TrimSpace(s))
		if perr != nil {
			return Criteria{}, fmt.Errorf("path_completed: invalid path_id: %w", perr)
		}
		c.PathID = id
		return c, nil
	default:
		return Criteria{}, fmt.Errorf("%w: %q", ErrUnknownCriteria, rawType)
	}
	if err != nil {
		return Criteria{}, fmt.Errorf("%s: %w", c.Type, err)
	}
	if n < 0 {
		return Criteria{}, fmt.Errorf("%s: negative threshold %d", c.Type, n)
	}
	c.Threshold = n
	return c, nil
}

// Satisfied reports whether stats meet the criteria.
func (c Criteria) Satisfied(stats ProgressStats) bool {
	switch c.Type {
	case CriteriaLessonsCompleted:
		return stats.LessonsCompleted >= c.Threshold
	case CriteriaStreak:
		return int64(stats.CurrentStreak) >= c.Threshold || int64(stats.LongestStreak) >= c.Threshold
	case CriteriaXP:
		return stats.XP >= c.Threshold
	case CriteriaPathCompleted:
		return stats.CompletedPaths[c.PathID]
	}
	return false
}

func intParam(doc datatypes.JSONMap, key string) (int64, error) {
	v, ok := doc[key]
	if !ok {
		return 0, fmt.Errorf("missing %q", key)
	}
	switch t := v.(type) {
	case float64:
		if t != float64(int64(t)) {
			return 0, fmt.Errorf("%q is not an integer", key)
		}
		return int64(t), nil
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case json.Number:
		return t.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(t), 10, 64)
	}
	return 0, fmt.Errorf("%q has unsupported type %T", key, v)
}
