package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/skillquest-backend/internal/data/db"
	"github.com/yungbote/skillquest-backend/internal/data/repos"
	types "github.com/yungbote/skillquest-backend/internal/domain"
	"github.com/yungbote/skillquest-backend/internal/observability"
	"github.com/yungbote/skillquest-backend/internal/platform/apierr"
	"github.com/yungbote/skillquest-backend/internal/platform/ctxutil"
	"github.com/yungbote/skillquest-backend/internal/platform/dbctx"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

const (
	MinPasswordLength = 8
	MaxUsernameLength = 150
	MaxDailyGoal      = 24 * 60
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Username               string
	Email                  string
	Password               string
	LearningSpeed          string
	PreferredLearningStyle string
	DailyGoal              *int
}

// AuthTokens is one access/refresh pair and the user it belongs to.
type AuthTokens struct {
	AccessToken  string
	RefreshToken string
	User         *types.User
}

type AuthService interface {
	RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error)
	LoginUser(ctx context.Context, identifier, password string) (*AuthTokens, error)
	RefreshUser(ctx context.Context, refreshToken string) (*AuthTokens, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type AuthConfig struct {
	JWTSecretKey string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	avatarService AvatarService
	metrics       *observability.Metrics
	clock         Clock
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	avatarService AvatarService,
	metrics *observability.Metrics,
	clock Clock,
	cfg AuthConfig,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		avatarService: avatarService,
		metrics:       metrics,
		clock:         clockOrSystem(clock),
		jwtSecretKey:  cfg.JWTSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error) {
	user, password, err := newUserFromInput(in)
	if err != nil {
		as.metrics.IncAuth("register", false)
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hashed)

	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		taken, err := as.userRepo.UsernameExists(dbc, user.Username)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if taken {
			return apierr.Validation("username_taken", "A user with that username already exists")
		}
		taken, err = as.userRepo.EmailExists(dbc, user.Email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return apierr.Validation("email_taken", "A user with that email already exists")
		}

		if as.avatarService != nil {
			if aErr := as.avatarService.CreateAndUploadUserAvatar(dbc, user); aErr != nil {
				as.log.Warn("Avatar generation failed, continuing without avatar", "error", aErr)
			}
		}

		if _, err := as.userRepo.Create(dbc, []*types.User{user}); err != nil {
			// Lost a race with a concurrent registration; the driver error no
			// longer says which column collided.
			if db.IsUniqueViolation(err) {
				return apierr.Validation("user_exists", "A user with that username or email already exists")
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		as.metrics.IncAuth("register", false)
		return nil, err
	}
	as.metrics.IncAuth("register", true)
	as.log.Info("User registered", "user_id", user.ID)
	return user, nil
}

func (as *authService) LoginUser(ctx context.Context, identifier, password string) (*AuthTokens, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		as.metrics.IncAuth("login", false)
		return nil, apierr.Validation("invalid_request", "Username and password are required")
	}

	var out *AuthTokens
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		user, err := as.userRepo.GetByIdentifier(dbc, identifier)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if user == nil {
			return apierr.Unauthenticated("invalid_credentials", "No active account found with the given credentials")
		}
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
			return apierr.Unauthenticated("invalid_credentials", "No active account found with the given credentials")
		}
		tokens, err := as.issueTokens(dbc, user)
		if err != nil {
			return err
		}
		out = tokens
		return nil
	})
	if err != nil {
		as.metrics.IncAuth("login", false)
		return nil, err
	}
	as.metrics.IncAuth("login", true)
	return out, nil
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		as.metrics.IncAuth("refresh", false)
		return nil, apierr.Validation("invalid_request", "Refresh token is required")
	}

	var out *AuthTokens
	var expiredID uuid.UUID
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := as.userTokenRepo.GetByRefreshToken(dbc, refreshToken)
		if err != nil {
			return fmt.Errorf("load refresh token: %w", err)
		}
		if existing == nil {
			return apierr.Unauthenticated("refresh_failed", "Token is invalid or expired")
		}
		if !existing.ExpiresAt.After(as.clock.Now()) {
			expiredID = existing.ID
			return apierr.Unauthenticated("refresh_failed", "Token is invalid or expired")
		}
		user, err := as.userRepo.GetByID(dbc, existing.UserID)
		if err != nil {
			return fmt.Errorf("load user for refresh: %w", err)
		}
		if user == nil {
			return apierr.Unauthenticated("refresh_failed", "Token is invalid or expired")
		}
		if err := as.userTokenRepo.DeleteByIDs(dbc, []uuid.UUID{existing.ID}); err != nil {
			return fmt.Errorf("remove old refresh token: %w", err)
		}
		tokens, err := as.issueTokens(dbc, user)
		if err != nil {
			return err
		}
		out = tokens
		return nil
	})
	if expiredID != uuid.Nil {
		// The rollback kept the stale row; drop it outside the failed transaction.
		if dErr := as.userTokenRepo.DeleteByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{expiredID}); dErr != nil {
			as.log.Warn("Failed to delete expired user token", "error", dErr)
		}
	}
	if err != nil {
		as.metrics.IncAuth("refresh", false)
		return nil, err
	}
	as.metrics.IncAuth("refresh", true)
	return out, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.SessionID == uuid.Nil {
		as.log.Warn("No session found in context")
		return apierr.Unauthenticated("unauthorized", "Authentication credentials were not provided")
	}
	if err := as.userTokenRepo.DeleteByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{rd.SessionID}); err != nil {
		return fmt.Errorf("delete user token: %w", err)
	}
	as.metrics.IncAuth("logout", true)
	return nil
}

// SetContextFromToken validates tokenString and attaches the caller's
// identity. The token must verify and still have its user_token row.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apierr.Unauthenticated("unauthorized", "Authentication credentials were not provided")
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.clock.Now))
	if err != nil {
		as.log.Debug("Rejected access token", "error", err)
		return ctx, apierr.Unauthenticated("unauthorized", "Invalid or expired token")
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, apierr.Unauthenticated("unauthorized", "Invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthenticated("unauthorized", "Invalid user id in token")
	}

	row, err := as.userTokenRepo.GetByAccessToken(dbctx.Context{Ctx: ctx}, tokenString)
	if err != nil {
		return ctx, fmt.Errorf("load user token: %w", err)
	}
	if row == nil || row.UserID != userID {
		return ctx, apierr.Unauthenticated("unauthorized", "Session has been revoked")
	}

	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		SessionID:   row.ID,
	}), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func (as *authService) issueTokens(dbc dbctx.Context, user *types.User) (*AuthTokens, error) {
	access, err := as.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	row := &types.UserToken{
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: uuid.NewString(),
		ExpiresAt:    as.clock.Now().Add(as.refreshTTL),
	}
	if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{row}); err != nil {
		as.log.Warn("Create User Token Error", "error", err)
		return nil, fmt.Errorf("create user token: %w", err)
	}
	return &AuthTokens{AccessToken: access, RefreshToken: row.RefreshToken, User: user}, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := as.clock.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func newUserFromInput(in RegisterInput) (*types.User, string, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	switch {
	case username == "":
		return nil, "", apierr.Validation("invalid_username", "Username is required")
	case len(username) > MaxUsernameLength:
		return nil, "", apierr.Validation("invalid_username", "Username is too long")
	case strings.ContainsAny(username, " @\t\n"):
		return nil, "", apierr.Validation("invalid_username", "Username may not contain spaces or @")
	}
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, "", apierr.Validation("invalid_email", "Enter a valid email address")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, "", apierr.Validation("invalid_password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	user := &types.User{Username: username, Email: email}
	if err := applyPreferences(user, strPtrOrNil(in.LearningSpeed), strPtrOrNil(in.PreferredLearningStyle), in.DailyGoal); err != nil {
		return nil, "", err
	}
	return user, in.Password, nil
}

// applyPreferences validates and copies the non-nil preference fields onto user.
func applyPreferences(user *types.User, speed, style *string, dailyGoal *int) error {
	if speed != nil {
		v := types.LearningSpeed(strings.ToLower(strings.TrimSpace(*speed)))
		if !v.Valid() {
			return apierr.Validation("invalid_learning_speed", "learning_speed must be one of slow, medium, fast")
		}
		user.LearningSpeed = v
	}
	if style != nil {
		v := types.LearningStyle(strings.ToLower(strings.TrimSpace(*style)))
		if !v.Valid() {
			return apierr.Validation("invalid_learning_style", "preferred_learning_style must be one of visual, practical, theoretical")
		}
		user.PreferredLearningStyle = v
	}
	if dailyGoal != nil {
		if *dailyGoal < 1 || *dailyGoal > MaxDailyGoal {
			return apierr.Validation("invalid_daily_goal", fmt.Sprintf("daily_goal must be between 1 and %d", MaxDailyGoal))
		}
		user.DailyGoal = *dailyGoal
	}
	return nil
}

func strPtrOrNil(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
