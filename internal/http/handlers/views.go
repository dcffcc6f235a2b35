package handlers

import (
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/skillquest-backend/internal/domain"
	"github.com/yungbote/skillquest-backend/internal/services"
)

type UserView struct {
	ID                     uuid.UUID `json:"id"`
	Username               string    `json:"username"`
	Email                  string    `json:"email"`
	AvatarURL              string    `json:"avatar_url"`
	Level                  int       `json:"level"`
	XP                     int       `json:"xp"`
	XPForNextLevel         int       `json:"xp_for_next_level"`
	LearningSpeed          string    `json:"learning_speed"`
	PreferredLearningStyle string    `json:"preferred_learning_style"`
	DailyGoal              int       `json:"daily_goal"`
	CreatedAt              time.Time `json:"created_at"`
}

func NewUserView(u *types.User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		ID:                     u.ID,
		Username:               u.Username,
		Email:                  u.Email,
		AvatarURL:              u.AvatarURL,
		Level:                  u.Level,
		XP:                     u.XP,
		XPForNextLevel:         u.XPForNextLevel(),
		LearningSpeed:          string(u.LearningSpeed),
		PreferredLearningStyle: string(u.PreferredLearningStyle),
		DailyGoal:              u.DailyGoal,
		CreatedAt:              u.CreatedAt,
	}
}

type LessonView struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        string         `json:"type"`
	Content     map[string]any `json:"content"`
	Duration    int            `json:"duration"`
	XPReward    int            `json:"xp_reward"`
	Difficulty  float64        `json:"difficulty"`
	Order       int            `json:"order"`
}

func NewLessonView(l *types.Lesson) *LessonView {
	if l == nil {
		return nil
	}
	content := map[string]any(l.Content)
	if content == nil {
		content = map[string]any{}
	}
	return &LessonView{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Type:        string(l.Type),
		Content:     content,
		Duration:    l.Duration,
		XPReward:    l.XPReward,
		Difficulty:  l.Difficulty,
		Order:       l.Order,
	}
}

type ModuleView struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	Order       int           `json:"order"`
	Lessons     []*LessonView `json:"lessons"`
}

func NewModuleView(m *types.Module) *ModuleView {
	if m == nil {
		return nil
	}
	out := &ModuleView{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Icon:        m.Icon,
		Order:       m.Order,
		Lessons:     make([]*LessonView, 0, len(m.Lessons)),
	}
	for _, l := range m.Lessons {
		out.Lessons = append(out.Lessons, NewLessonView(l))
	}
	return out
}

type PathView struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	Level       string        `json:"level"`
	AgeRange    string        `json:"age_range"`
	Modules     []*ModuleView `json:"modules"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func NewPathView(p *types.LearningPath) *PathView {
	if p == nil {
		return nil
	}
	out := &PathView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Icon:        p.Icon,
		Level:       string(p.Level),
		AgeRange:    p.AgeRange,
		Modules:     make([]*ModuleView, 0, len(p.Modules)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, m := range p.Modules {
		out.Modules = append(out.Modules, NewModuleView(m))
	}
	return out
}

func NewPathViews(in []*types.LearningPath) []*PathView {
	out := make([]*PathView, 0, len(in))
	for _, p := range in {
		out = append(out, NewPathView(p))
	}
	return out
}

type PathProgressView struct {
	PathID           uuid.UUID `json:"path_id"`
	TotalLessons     int64     `json:"total_lessons"`
	CompletedLessons int64     `json:"completed_lessons"`
	Percentage       float64   `json:"percentage"`
}

func NewPathProgressView(p *services.PathProgress) *PathProgressView {
	return &PathProgressView{
		PathID:           p.PathID,
		TotalLessons:     p.TotalLessons,
		CompletedLessons: p.CompletedLessons,
		Percentage:       p.Percentage,
	}
}

type ProgressView struct {
	ID          uuid.UUID  `json:"id"`
	LessonID    uuid.UUID  `json:"lesson_id"`
	Completed   bool       `json:"completed"`
	Score       *float64   `json:"score"`
	TimeSpent   int        `json:"time_spent"`
	CompletedAt *time.Time `json:"completed_at"`
}

func NewProgressView(p *types.UserProgress) *ProgressView {
	if p == nil {
		return nil
	}
	return &ProgressView{
		ID:          p.ID,
		LessonID:    p.LessonID,
		Completed:   p.Completed,
		Score:       p.Score,
		TimeSpent:   p.TimeSpent,
		CompletedAt: p.CompletedAt,
	}
}

type LessonCompletionView struct {
	Status               string             `json:"status"`
	AlreadyCompleted     bool               `json:"already_completed"`
	XPGained             int                `json:"xp_gained"`
	UserXP               int64              `json:"user_xp"`
	Progress             *ProgressView      `json:"progress"`
	AchievementsUnlocked []*AchievementView `json:"achievements_unlocked"`
}

func NewLessonCompletionView(r *services.LessonCompletion) *LessonCompletionView {
	return &LessonCompletionView{
		Status:               r.Status,
		AlreadyCompleted:     r.AlreadyCompleted,
		XPGained:             r.XPGained,
		UserXP:               r.UserXP,
		Progress:             NewProgressView(r.Progress),
		AchievementsUnlocked: NewAchievementViews(r.AchievementsUnlocked),
	}
}

type AchievementView struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	Criteria    map[string]any `json:"criteria"`
	XPReward    int            `json:"xp_reward"`
}

func NewAchievementView(a *types.Achievement) *AchievementView {
	if a == nil {
		return nil
	}
	criteria := map[string]any(a.Criteria)
	if criteria == nil {
		criteria = map[string]any{}
	}
	return &AchievementView{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Icon:        a.Icon,
		Criteria:    criteria,
		XPReward:    a.XPReward,
	}
}

func NewAchievementViews(in []*types.Achievement) []*AchievementView {
	out := make([]*AchievementView, 0, len(in))
	for _, a := range in {
		out = append(out, NewAchievementView(a))
	}
	return out
}

type UserAchievementView struct {
	ID          uuid.UUID        `json:"id"`
	Achievement *AchievementView `json:"achievement"`
	UnlockedAt  time.Time        `json:"unlocked_at"`
}

func NewUserAchievementViews(in []*types.UserAchievement) []*UserAchievementView {
	out := make([]*UserAchievementView, 0, len(in))
	for _, ua := range in {
		out = append(out, &UserAchievementView{
			ID:          ua.ID,
			Achievement: NewAchievementView(ua.Achievement),
			UnlockedAt:  ua.UnlockedAt,
		})
	}
	return out
}

type StreakView struct {
	CurrentStreak       int    `json:"current_streak"`
	LongestStreak       int    `json:"longest_streak"`
	LastActivityDate    string `json:"last_activity_date"`
	ProtectionAvailable bool   `json:"protection_available"`
}

func NewStreakView(s *types.Streak) *StreakView {
	if s == nil {
		return nil
	}
	return &StreakView{
		CurrentStreak:       s.CurrentStreak,
		LongestStreak:       s.LongestStreak,
		LastActivityDate:    s.LastActivityDate.Format(time.DateOnly),
		ProtectionAvailable: s.ProtectionAvailable,
	}
}

type CheckInView struct {
	Streak               *StreakView        `json:"streak"`
	Transition           string             `json:"transition"`
	Delta                int                `json:"delta"`
	AchievementsUnlocked []*AchievementView `json:"achievements_unlocked"`
}

func NewCheckInView(r *services.CheckInResult) *CheckInView {
	return &CheckInView{
		Streak:               NewStreakView(r.Streak),
		Transition:           string(r.Transition),
		Delta:                r.Delta,
		AchievementsUnlocked: NewAchievementViews(r.AchievementsUnlocked),
	}
}

type ChallengeView struct {
	ID             uuid.UUID      `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Difficulty     string         `json:"difficulty"`
	Type           string         `json:"type"`
	Content        map[string]any `json:"content"`
	XPReward       int            `json:"xp_reward"`
	AvailableUntil time.Time      `json:"available_until"`
}

func NewChallengeView(c *types.DailyChallenge) *ChallengeView {
	if c == nil {
		return nil
	}
	content := map[string]any(c.Content)
	if content == nil {
		content = map[string]any{}
	}
	return &ChallengeView{
		ID:             c.ID,
		Title:          c.Title,
		Description:    c.Description,
		Difficulty:     string(c.Difficulty),
		Type:           string(c.Type),
		Content:        content,
		XPReward:       c.XPReward,
		AvailableUntil: c.AvailableUntil,
	}
}

func NewChallengeViews(in []*types.DailyChallenge) []*ChallengeView {
	out := make([]*ChallengeView, 0, len(in))
	for _, c := range in {
		out = append(out, NewChallengeView(c))
	}
	return out
}

type ChallengeCompletionView struct {
	Status               string             `json:"status"`
	XPGained             int                `json:"xp_gained"`
	UserXP               int64              `json:"user_xp"`
	Challenge            *ChallengeView     `json:"challenge"`
	AchievementsUnlocked []*AchievementView `json:"achievements_unlocked"`
}

func NewChallengeCompletionView(r *services.ChallengeCompletion) *ChallengeCompletionView {
	return &ChallengeCompletionView{
		Status:               r.Status,
		XPGained:             r.XPGained,
		UserXP:               r.UserXP,
		Challenge:            NewChallengeView(r.Challenge),
		AchievementsUnlocked: NewAchievementViews(r.AchievementsUnlocked),
	}
}
