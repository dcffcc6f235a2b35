package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillquest-backend/internal/http/response"
	"github.com/yungbote/skillquest-backend/internal/http/validation"
	"github.com/yungbote/skillquest-backend/internal/platform/gcp"
	"github.com/yungbote/skillquest-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
	bucket      gcp.BucketService
}

func NewAuthHandler(authService services.AuthService, bucket gcp.BucketService) *AuthHandler {
	return &AuthHandler{authService: authService, bucket: bucket}
}

type registerRequest struct {
	Username               string `json:"username" binding:"required,max=150"`
	Email                  string `json:"email" binding:"required,email"`
	Password               string `json:"password" binding:"required,min=8"`
	LearningSpeed          string `json:"learning_speed" binding:"omitempty,learning_speed"`
	PreferredLearningStyle string `json:"preferred_learning_style" binding:"omitempty,learning_style"`
	DailyGoal              *int   `json:"daily_goal" binding:"omitempty,gte=1,lte=1440"`
}

type tokenResponse struct {
	Access    string    `json:"access"`
	Refresh   string    `json:"refresh"`
	ExpiresIn int       `json:"expires_in"`
	User      *UserView `json:"user,omitempty"`
}

// POST /users/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := validation.BindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	user, err := ah.authService.RegisterUser(c.Request.Context(), services.RegisterInput{
		Username:               req.Username,
		Email:                  req.Email,
		Password:               req.Password,
		LearningSpeed:          req.LearningSpeed,
		PreferredLearningStyle: req.PreferredLearningStyle,
		DailyGoal:              req.DailyGoal,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"user": userView(ah.bucket, user)})
}

// POST /users/token
// body: { "username": "<username or email>", "password": "..." }
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password" binding:"required"`
	}
	if err := validation.BindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	identifier := strings.TrimSpace(req.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}
	if identifier == "" {
		response.RespondErr(c, response.NewFieldErrors(map[string]string{"username": "This field is required."}))
		return
	}
	tokens, err := ah.authService.LoginUser(c.Request.Context(), identifier, req.Password)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, ah.tokenResponse(tokens))
}

// POST /users/token/refresh
// body: { "refresh": "..." }
func (ah *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh" binding:"required"`
	}
	if err := validation.BindJSON(c, &req); err != nil {
		response.RespondErr(c, err)
		return
	}
	tokens, err := ah.authService.RefreshUser(c.Request.Context(), req.Refresh)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out := ah.tokenResponse(tokens)
	out.User = nil
	response.RespondOK(c, out)
}

// POST /users/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ah *AuthHandler) tokenResponse(t *services.AuthTokens) *tokenResponse {
	if t == nil {
		return &tokenResponse{}
	}
	return &tokenResponse{
		Access:    t.AccessToken,
		Refresh:   t.RefreshToken,
		ExpiresIn: int(ah.authService.GetAccessTTL().Seconds()),
		User:      userView(ah.bucket, t.User),
	}
}

