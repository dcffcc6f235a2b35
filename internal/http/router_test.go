package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/skillquest-backend/internal/data/repos"
	"github.com/yungbote/skillquest-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/skillquest-backend/internal/http/handlers"
	httpMW "github.com/yungbote/skillquest-backend/internal/http/middleware"
	"github.com/yungbote/skillquest-backend/internal/observability"
	"github.com/yungbote/skillquest-backend/internal/platform/gcp"
	"github.com/yungbote/skillquest-backend/internal/realtime"
	"github.com/yungbote/skillquest-backend/internal/services"
)

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	seed   func(title string, xp ...int) (pathID string, lessonIDs []string)
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	clock := services.FixedClock{T: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}

	userRepo := repos.NewUserRepo(db, log)
	userTokenRepo := repos.NewUserTokenRepo(db, log)
	pathRepo := repos.NewLearningPathRepo(db, log)
	lessonRepo := repos.NewLessonRepo(db, log)
	progressRepo := repos.NewUserProgressRepo(db, log)

	bucket, err := gcp.NewBucketService(context.Background(), log, gcp.ObjectStorageConfig{
		Mode:     gcp.ObjectStorageModeLocal,
		LocalDir: t.TempDir(),
	})
	require.NoError(t, err)
	avatars, err := services.NewAvatarService(log, bucket, clock)
	require.NoError(t, err)

	metrics := observability.NewMetrics()
	hub := realtime.NewSSEHub(log)
	notifier := services.NewProgressNotifier(&services.HubEmitter{Hub: hub})
	board := services.NewLeaderboardService(log, userRepo, nil)

	auth := services.NewAuthService(db, log, userRepo, userTokenRepo, avatars, metrics, clock, services.AuthConfig{JWTSecretKey: "test-secret"})
	gamification := services.NewGamificationService(db, log, services.GamificationDeps{
		UserRepo:            userRepo,
		ProgressRepo:        progressRepo,
		AchievementRepo:     repos.NewAchievementRepo(db, log),
		UserAchievementRepo: repos.NewUserAchievementRepo(db, log),
		StreakRepo:          repos.NewStreakRepo(db, log),
		ChallengeRepo:       repos.NewDailyChallengeRepo(db, log),
		XP:                  board,
		Notifier:            notifier,
		Metrics:             metrics,
		Clock:               clock,
	})
	learning := services.NewLearningService(db, log, services.LearningDeps{
		UserRepo:     userRepo,
		PathRepo:     pathRepo,
		LessonRepo:   lessonRepo,
		ProgressRepo: progressRepo,
		Achievements: gamification,
		XP:           board,
		Notifier:     notifier,
		Metrics:      metrics,
		Clock:        clock,
	})

	engine := NewRouter(RouterConfig{
		Log:                 log,
		Metrics:             metrics,
		AuthHandler:         httpH.NewAuthHandler(auth, bucket),
		AuthMiddleware:      httpMW.NewAuthMiddleware(log, auth),
		UserHandler:         httpH.NewUserHandler(services.NewUserService(db, log, userRepo, avatars), bucket),
		LearningHandler:     httpH.NewLearningHandler(learning),
		GamificationHandler: httpH.NewGamificationHandler(gamification, board),
		RealtimeHandler:     httpH.NewRealtimeHandler(log, hub),
		HealthHandler:       httpH.NewHealthHandler(db, log),
	})

	api := &testAPI{t: t, engine: engine}
	api.seed = func(title string, xp ...int) (string, []string) {
		ctx := context.Background()
		p := testutil.SeedPath(t, ctx, db, title)
		m := testutil.SeedModule(t, ctx, db, p.ID, 1)
		var ids []string
		for i, reward := range xp {
			ids = append(ids, testutil.SeedLesson(t, ctx, db, m.ID, i+1, reward).ID.String())
		}
		return p.ID.String(), ids
	}
	return api
}

func (a *testAPI) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(raw)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	} else if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '[' {
		var list []any
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &list))
		out["items"] = list
	}
	return rec.Code, out
}

func (a *testAPI) register(username string) (access, refresh string) {
	a.t.Helper()
	status, body := a.do(http.MethodPost, "/api/users/register", "", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct-horse",
	})
	require.Equal(a.t, http.StatusCreated, status, body)
	status, body = a.do(http.MethodPost, "/api/users/token", "", map[string]any{
		"username": username,
		"password": "correct-horse",
	})
	require.Equal(a.t, http.StatusOK, status, body)
	return body["access"].(string), body["refresh"].(string)
}

func errorCode(body map[string]any) string {
	env, _ := body["error"].(map[string]any)
	code, _ := env["code"].(string)
	return code
}

func TestAccountFlow(t *testing.T) {
	api := newTestAPI(t)
	access, refresh := api.register("ada")

	status, me := api.do(http.MethodGet, "/api/users/me", access, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ada", me["username"])
	assert.EqualValues(t, 500, me["xp_for_next_level"])
	assert.Equal(t, "medium", me["learning_speed"])
	assert.NotContains(t, me, "password")
	assert.NotEmpty(t, me["avatar_url"])

	status, me = api.do(http.MethodPatch, "/api/users/me", access, map[string]any{"daily_goal": 45, "learning_speed": "fast"})
	require.Equal(t, http.StatusOK, status, me)
	assert.EqualValues(t, 45, me["daily_goal"])
	assert.Equal(t, "fast", me["learning_speed"])

	status, body := api.do(http.MethodPatch, "/api/users/me", access, map[string]any{"learning_speed": "warp"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "invalid_request", errorCode(body))

	status, body = api.do(http.MethodPost, "/api/users/token/refresh", "", map[string]any{"refresh": refresh})
	require.Equal(t, http.StatusOK, status, body)
	newAccess := body["access"].(string)
	assert.NotEqual(t, access, newAccess)

	status, _ = api.do(http.MethodGet, "/api/users/me", access, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = api.do(http.MethodPost, "/api/users/logout", newAccess, nil)
	require.Equal(t, http.StatusOK, status)
	status, body = api.do(http.MethodGet, "/api/users/me", newAccess, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", errorCode(body))
}

func TestRegisterValidation(t *testing.T) {
	api := newTestAPI(t)
	api.register("grace")

	status, body := api.do(http.MethodPost, "/api/users/register", "", map[string]any{
		"username": "grace",
		"email":    "other@example.com",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "username_taken", errorCode(body))

	status, body = api.do(http.MethodPost, "/api/users/register", "", map[string]any{
		"username": "x",
		"email":    "not-an-email",
		"password": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	fields := body["error"].(map[string]any)["fields"].(map[string]any)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")

	status, body = api.do(http.MethodPost, "/api/users/token", "", map[string]any{"username": "grace", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid_credentials", errorCode(body))
}

func TestLessonCompletionAndProgress(t *testing.T) {
	api := newTestAPI(t)
	access, _ := api.register("alan")
	pathID, lessons := api.seed("Python", 50, 30)

	status, body := api.do(http.MethodGet, "/api/learning/paths/"+pathID, access, nil)
	require.Equal(t, http.StatusOK, status)
	modules := body["modules"].([]any)
	require.Len(t, modules, 1)
	assert.Len(t, modules[0].(map[string]any)["lessons"].([]any), 2)

	status, body = api.do(http.MethodPost, "/api/learning/lessons/"+lessons[0]+"/complete", access, map[string]any{"score": 90, "time_spent": 120})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "lesson completed", body["status"])
	assert.EqualValues(t, 50, body["xp_gained"])
	assert.EqualValues(t, 50, body["user_xp"])

	status, body = api.do(http.MethodPost, "/api/learning/lessons/"+lessons[0]+"/complete", access, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "lesson already completed", body["status"])
	assert.EqualValues(t, 0, body["xp_gained"])
	assert.EqualValues(t, 50, body["user_xp"])

	status, body = api.do(http.MethodPost, "/api/learning/lessons/"+lessons[1]+"/complete", access, map[string]any{"score": 101})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "invalid_request", errorCode(body))

	status, body = api.do(http.MethodGet, "/api/learning/paths/"+pathID+"/progress", access, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["total_lessons"])
	assert.EqualValues(t, 1, body["completed_lessons"])
	assert.EqualValues(t, 50, body["percentage"])

	status, body = api.do(http.MethodPost, "/api/learning/lessons/not-a-uuid/complete", access, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "lesson_not_found", errorCode(body))

	status, body = api.do(http.MethodGet, "/api/gamification/leaderboard?limit=5", access, nil)
	require.Equal(t, http.StatusOK, status)
	entries := body["items"].([]any)
	require.NotEmpty(t, entries)
	assert.Equal(t, "alan", entries[0].(map[string]any)["username"])
}

func TestStreakEndpoints(t *testing.T) {
	api := newTestAPI(t)
	access, _ := api.register("katherine")

	status, body := api.do(http.MethodGet, "/api/gamification/streak", access, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "streak_not_found", errorCode(body))

	status, body = api.do(http.MethodPost, "/api/gamification/streak/check-in", access, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "created", body["transition"])
	assert.EqualValues(t, 0, body["delta"])

	status, body = api.do(http.MethodGet, "/api/gamification/streak", access, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2024-03-01", body["last_activity_date"])

	status, body = api.do(http.MethodGet, "/api/gamification/challenges", access, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["items"])
}

func TestUnauthenticatedAndOperationalRoutes(t *testing.T) {
	api := newTestAPI(t)

	status, body := api.do(http.MethodGet, "/api/learning/paths", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", errorCode(body))

	status, _ = api.do(http.MethodGet, "/api/learning/paths", "garbage.token.value", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = api.do(http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, body = api.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", errorCode(body))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	api.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
