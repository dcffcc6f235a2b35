package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillquest-backend/internal/http/response"
	"github.com/yungbote/skillquest-backend/internal/services"
)

type GamificationHandler struct {
	gamificationService services.GamificationService
	leaderboard         services.LeaderboardService
}

func NewGamificationHandler(gamificationService services.GamificationService, leaderboard services.LeaderboardService) *GamificationHandler {
	return &GamificationHandler{
		gamificationService: gamificationService,
		leaderboard:         leaderboard,
	}
}

// GET /gamification/achievements
func (gh *GamificationHandler) ListAchievements(c *gin.Context) {
	out, err := gh.gamificationService.ListAchievements(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, NewAchievementViews(out))
}

// GET /gamification/achievements/user
func (gh *GamificationHandler) ListUserAchievements(c *gin.Context) {
	out, err := gh.gamificationService.ListUserAchievements(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, NewUserAchievementViews(out))
}

// POST /gamification/streak/check-in
func (gh *GamificationHandler) CheckIn(c *gin.Context) {
	res, err := gh.gamificationService.CheckIn(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, NewCheckInView(res))
}

// GET /gamification/streak
func (gh *GamificationHandler) GetStreak(c *gin.Context) {
	s, err := gh.gamificationService.GetStreak(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, NewStreakView(s))
}

// GET /gamification/challenges
func (gh *GamificationHandler) ListChallenges(c *gin.Context) {
	out, err := gh.gamificationService.ListChallenges(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, NewChallengeViews(out))
}

// POST /gamification/challenges/:id/complete
func (gh *GamificationHandler) CompleteChallenge(c *gin.Context) {
	id, err := uuidParam(c, "id", "challenge_not_found", "Daily challenge not found")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	res, err := gh.gamificationService.CompleteChallenge(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, NewChallengeCompletionView(res))
}

// GET /gamification/leaderboard?limit=N
func (gh *GamificationHandler) Leaderboard(c *gin.Context) {
	limit, err := intQuery(c, "limit", services.DefaultLeaderboardLimit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	entries, err := gh.leaderboard.Top(c.Request.Context(), limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if entries == nil {
		entries = []services.LeaderboardEntry{}
	}
	response.RespondOK(c, entries)
}
