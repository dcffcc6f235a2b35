package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillquest-backend/internal/http/response"
	"github.com/yungbote/skillquest-backend/internal/http/validation"
	"github.com/yungbote/skillquest-backend/internal/platform/apierr"
	"github.com/yungbote/skillquest-backend/internal/platform/dbctx"
	"github.com/yungbote/skillquest-backend/internal/platform/gcp"
	"github.com/yungbote/skillquest-backend/internal/services"
)

// MaxAvatarUploadBytes caps avatar uploads before decoding.
const MaxAvatarUploadBytes = 5 << 20

type UserHandler struct {
	userService services.UserService
	bucket      gcp.BucketService
}

func NewUserHandler(userService services.UserService, bucket gcp.BucketService) *UserHandler {
	return &UserHandler{
		userService: userService,
		bucket:      bucket,
	}
}

// GET /users/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, userView(uh.bucket, me))
}

// PATCH /users/me
// body: { "learning_speed"?, "preferred_learning_style"?, "daily_goal"? }
func (uh *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		LearningSpeed          *string `json:"learning_speed" binding:"omitempty,learning_speed"`
		PreferredLearningStyle *string `json:"preferred_learning_style" binding:"omitempty,learning_style"`
		DailyGoal              *int    `json:"daily_goal" binding:"omitempty,gte=1,lte=1440"`
	}
	if err := validation.BindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	u, err := uh.userService.UpdatePreferences(c.Request.Context(), services.UpdatePreferencesInput{
		LearningSpeed:          req.LearningSpeed,
		PreferredLearningStyle: req.PreferredLearningStyle,
		DailyGoal:              req.DailyGoal,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, userView(uh.bucket, u))
}

// POST /users/me/avatar (multipart/form-data)
// field: "avatar" (or "file")
func (uh *UserHandler) UploadAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxAvatarUploadBytes+(1<<20))
	fh, err := c.FormFile("avatar")
	if err != nil {
		fh, err = c.FormFile("file")
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondErr(c, apierr.Validation("file_too_large", "Avatar image is too large"))
			return
		}
		response.RespondErr(c, apierr.Validation("missing_file", "Upload an image in the avatar field"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondErr(c, apierr.Validation("invalid_image", "Could not read the uploaded file"))
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, MaxAvatarUploadBytes+1))
	if err != nil {
		response.RespondErr(c, apierr.Validation("invalid_image", "Could not read the uploaded file"))
		return
	}
	if len(raw) > MaxAvatarUploadBytes {
		response.RespondErr(c, apierr.Validation("file_too_large", "Avatar image is too large"))
		return
	}

	u, err := uh.userService.UploadAvatarImage(c.Request.Context(), raw)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, userView(uh.bucket, u))
}
