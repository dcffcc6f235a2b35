package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillquest-backend/internal/http/response"
	"github.com/yungbote/skillquest-backend/internal/http/validation"
	"github.com/yungbote/skillquest-backend/internal/services"
)

type LearningHandler struct {
	learningService services.LearningService
}

func NewLearningHandler(learningService services.LearningService) *LearningHandler {
	return &LearningHandler{learningService: learningService}
}

// GET /learning/paths
func (lh *LearningHandler) ListPaths(c *gin.Context) {
	paths, err := lh.learningService.ListPaths(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, NewPathViews(paths))
}

// GET /learning/paths/:id
func (lh *LearningHandler) GetPath(c *gin.Context) {
	id, err := uuidParam(c, "id", "path_not_found", "Learning path not found")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	path, err := lh.learningService.GetPath(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, NewPathView(path))
}

// GET /learning/paths/:id/progress
func (lh *LearningHandler) GetPathProgress(c *gin.Context) {
	id, err := uuidParam(c, "id", "path_not_found", "Learning path not found")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	progress, err := lh.learningService.GetPathProgress(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, NewPathProgressView(progress))
}

// POST /learning/lessons/:id/complete
// body (optional): { "score": 0..100, "time_spent": seconds }
func (lh *LearningHandler) CompleteLesson(c *gin.Context) {
	id, err := uuidParam(c, "id", "lesson_not_found", "Lesson not found")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	var req struct {
		Score     *float64 `json:"score" binding:"omitempty,gte=0,lte=100"`
		TimeSpent int      `json:"time_spent" binding:"gte=0"`
	}
	if c.Request.ContentLength != 0 {
		if err := validation.BindJSON(c, &req); err != nil {
			response.RespondErr(c, err)
			return
		}
	}
	res, err := lh.learningService.CompleteLesson(c.Request.Context(), id, services.CompleteLessonInput{
		Score:     req.Score,
		TimeSpent: req.TimeSpent,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, NewLessonCompletionView(res))
}
