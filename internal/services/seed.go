package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/skillquest-backend/internal/clients/redis"
	"github.com/yungbote/skillquest-backend/internal/data/repos"
	types "github.com/yungbote/skillquest-backend/internal/domain"
	"github.com/yungbote/skillquest-backend/internal/domain/gamification"
	"github.com/yungbote/skillquest-backend/internal/domain/learning"
	"github.com/yungbote/skillquest-backend/internal/platform/dbctx"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

// seedNamespace derives stable ids for catalog entries written without one,
// so loading the same file twice updates rather than duplicates.
var seedNamespace = uuid.MustParse("6f1c2a3e-8d6b-4c0e-9a57-2b1f0d4c7e91")

type CatalogFile struct {
	Paths        []CatalogPath        `yaml:"paths"`
	Achievements []CatalogAchievement `yaml:"achievements"`
	Challenges   []CatalogChallenge   `yaml:"challenges"`
}

type CatalogPath struct {
	ID          string          `yaml:"id"`
	Title       string          `yaml:"title"`
	Description string          `yaml:"description"`
	Icon        string          `yaml:"icon"`
	Level       string          `yaml:"level"`
	AgeRange    string          `yaml:"age_range"`
	Modules     []CatalogModule `yaml:"modules"`
}

type CatalogModule struct {
	ID          string          `yaml:"id"`
	Title       string          `yaml:"title"`
	Description string          `yaml:"description"`
	Icon        string          `yaml:"icon"`
	Order       *int            `yaml:"order"`
	Lessons     []CatalogLesson `yaml:"lessons"`
}

type CatalogLesson struct {
	ID          string                 `yaml:"id"`
	Title       string                 `yaml:"title"`
	Description string                 `yaml:"description"`
	Type        string                 `yaml:"type"`
	Content     map[string]interface{} `yaml:"content"`
	Duration    int                    `yaml:"duration"`
	XPReward    int                    `yaml:"xp_reward"`
	Difficulty  float64                `yaml:"difficulty"`
	Order       *int                   `yaml:"order"`
}

type CatalogAchievement struct {
	ID          string                 `yaml:"id"`
	Title       string                 `yaml:"title"`
	Description string                 `yaml:"description"`
	Icon        string                 `yaml:"icon"`
	Criteria    map[string]interface{} `yaml:"criteria"`
	XPReward    int                    `yaml:"xp_reward"`
}

type CatalogChallenge struct {
	ID             string                 `yaml:"id"`
	Title          string                 `yaml:"title"`
	Description    string                 `yaml:"description"`
	Difficulty     string                 `yaml:"difficulty"`
	Type           string                 `yaml:"type"`
	Content        map[string]interface{} `yaml:"content"`
	XPReward       int                    `yaml:"xp_reward"`
	AvailableUntil *time.Time             `yaml:"available_until"`
	// AvailableFor is a Go duration counted from load time, used when
	// AvailableUntil is absent.
	AvailableFor string `yaml:"available_for"`
}

type SeedResult struct {
	Paths        int
	Modules      int
	Lessons      int
	Achievements int
	Challenges   int
}

type SeedService interface {
	LoadFile(ctx context.Context, path string) (*SeedResult, error)
	Load(ctx context.Context, r io.Reader) (*SeedResult, error)
	Apply(ctx context.Context, cat *CatalogFile) (*SeedResult, error)
}

type SeedDeps struct {
	PathRepo        repos.LearningPathRepo
	ModuleRepo      repos.ModuleRepo
	LessonRepo      repos.LessonRepo
	AchievementRepo repos.AchievementRepo
	ChallengeRepo   repos.DailyChallengeRepo
	Catalog         *redis.JSONCache
	Clock           Clock
}

type seedService struct {
	db              *gorm.DB
	log             *logger.Logger
	pathRepo        repos.LearningPathRepo
	moduleRepo      repos.ModuleRepo
	lessonRepo      repos.LessonRepo
	achievementRepo repos.AchievementRepo
	challengeRepo   repos.DailyChallengeRepo
	catalog         *redis.JSONCache
	clock           Clock
}

func NewSeedService(db *gorm.DB, log *logger.Logger, deps SeedDeps) SeedService {
	return &seedService{
		db:              db,
		log:             log.With("service", "SeedService"),
		pathRepo:        deps.PathRepo,
		moduleRepo:      deps.ModuleRepo,
		lessonRepo:      deps.LessonRepo,
		achievementRepo: deps.AchievementRepo,
		challengeRepo:   deps.ChallengeRepo,
		catalog:         deps.Catalog,
		clock:           clockOrSystem(deps.Clock),
	}
}

func (ss *seedService) LoadFile(ctx context.Context, path string) (*SeedResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return ss.Load(ctx, f)
}

func (ss *seedService) Load(ctx context.Context, r io.Reader) (*SeedResult, error) {
	var cat CatalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return ss.Apply(ctx, &cat)
}

func (ss *seedService) Apply(ctx context.Context, cat *CatalogFile) (*SeedResult, error) {
	if cat == nil {
		return &SeedResult{}, nil
	}
	paths, modules, lessons, err := buildPathRows(cat.Paths)
	if err != nil {
		return nil, err
	}
	achievements, err := buildAchievementRows(cat.Achievements)
	if err != nil {
		return nil, err
	}
	challenges, err := buildChallengeRows(cat.Challenges, ss.clock.Now())
	if err != nil {
		return nil, err
	}

	err = ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := ss.pathRepo.Upsert(dbc, paths); err != nil {
			return fmt.Errorf("upsert paths: %w", err)
		}
		if err := ss.moduleRepo.Upsert(dbc, modules); err != nil {
			return fmt.Errorf("upsert modules: %w", err)
		}
		if err := ss.lessonRepo.Upsert(dbc, lessons); err != nil {
			return fmt.Errorf("upsert lessons: %w", err)
		}
		if err := ss.achievementRepo.Upsert(dbc, achievements); err != nil {
			return fmt.Errorf("upsert achievements: %w", err)
		}
		if err := ss.challengeRepo.Upsert(dbc, challenges); err != nil {
			return fmt.Errorf("upsert challenges: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := ss.catalog.Invalidate(ctx); err != nil {
		ss.log.Warn("Catalog cache invalidation failed", "error", err)
	}
	res := &SeedResult{
		Paths:        len(paths),
		Modules:      len(modules),
		Lessons:      len(lessons),
		Achievements: len(achievements),
		Challenges:   len(challenges),
	}
	ss.log.Info("Catalog loaded",
		"paths", res.Paths, "modules", res.Modules, "lessons", res.Lessons,
		"achievements", res.Achievements, "challenges", res.Challenges)
	return res, nil
}

func buildPathRows(in []CatalogPath) ([]*types.LearningPath, []*types.Module, []*types.Lesson, error) {
	var paths []*types.LearningPath
	var modules []*types.Module
	var lessons []*types.Lesson
	for i, p := range in {
		if strings.TrimSpace(p.Title) == "" {
			return nil, nil, nil, fmt.Errorf("paths[%d]: title required", i)
		}
		pathID, err := seedID(p.ID, "path", p.Title)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("paths[%d]: %w", i, err)
		}
		level := learning.PathLevel(strings.ToLower(strings.TrimSpace(p.Level)))
		if level == "" {
			level = learning.PathLevelBeginner
		}
		if !level.Valid() {
			return nil, nil, nil, fmt.Errorf("paths[%d]: unknown level %q", i, p.Level)
		}
		paths = append(paths, &types.LearningPath{
			ID:          pathID,
			Title:       p.Title,
			Description: p.Description,
			Icon:        p.Icon,
			Level:       level,
			AgeRange:    p.AgeRange,
		})

		for j, m := range p.Modules {
			order := j + 1
			if m.Order != nil {
				order = *m.Order
			}
			moduleID, err := seedID(m.ID, "module", pathID.String(), fmt.Sprint(order))
			if err != nil {
				return nil, nil, nil, fmt.Errorf("paths[%d].modules[%d]: %w", i, j, err)
			}
			modules = append(modules, &types.Module{
				ID:             moduleID,
				LearningPathID: pathID,
				Title:          m.Title,
				Description:    m.Description,
				Icon:           m.Icon,
				Order:          order,
			})

			for k, l := range m.Lessons {
				lorder := k + 1
				if l.Order != nil {
					lorder = *l.Order
				}
				lessonID, err := seedID(l.ID, "lesson", moduleID.String(), fmt.Sprint(lorder))
				if err != nil {
					return nil, nil, nil, fmt.Errorf("paths[%d].modules[%d].lessons[%d]: %w", i, j, k, err)
				}
				ltype := learning.LessonType(strings.ToLower(strings.TrimSpace(l.Type)))
				if ltype == "" {
					ltype = learning.LessonTypeInteractive
				}
				if !ltype.Valid() {
					return nil, nil, nil, fmt.Errorf("paths[%d].modules[%d].lessons[%d]: unknown type %q", i, j, k, l.Type)
				}
				if l.XPReward < 0 {
					return nil, nil, nil, fmt.Errorf("paths[%d].modules[%d].lessons[%d]: xp_reward must not be negative", i, j, k)
				}
				difficulty := l.Difficulty
				if difficulty == 0 {
					difficulty = learning.DefaultLessonDifficulty
				}
				lessons = append(lessons, &types.Lesson{
					ID:          lessonID,
					ModuleID:    moduleID,
					Title:       l.Title,
					Description: l.Description,
					Type:        ltype,
					Content:     jsonMap(l.Content),
					Duration:    l.Duration,
					XPReward:    l.XPReward,
					Difficulty:  difficulty,
					Order:       lorder,
				})
			}
		}
	}
	return paths, modules, lessons, nil
}

func buildAchievementRows(in []CatalogAchievement) ([]*types.Achievement, error) {
	out := make([]*types.Achievement, 0, len(in))
	for i, a := range in {
		if strings.TrimSpace(a.Title) == "" {
			return nil, fmt.Errorf("achievements[%d]: title required", i)
		}
		id, err := seedID(a.ID, "achievement", a.Title)
		if err != nil {
			return nil, fmt.Errorf("achievements[%d]: %w", i, err)
		}
		criteria := jsonMap(a.Criteria)
		if _, err := gamification.ParseCriteria(criteria); err != nil {
			return nil, fmt.Errorf("achievements[%d]: %w", i, err)
		}
		if a.XPReward < 0 {
			return nil, fmt.Errorf("achievements[%d]: xp_reward must not be negative", i)
		}
		out = append(out, &types.Achievement{
			ID:          id,
			Title:       a.Title,
			Description: a.Description,
			Icon:        a.Icon,
			Criteria:    criteria,
			XPReward:    a.XPReward,
		})
	}
	return out, nil
}

func buildChallengeRows(in []CatalogChallenge, now time.Time) ([]*types.DailyChallenge, error) {
	out := make([]*types.DailyChallenge, 0, len(in))
	for i, c := range in {
		if strings.TrimSpace(c.Title) == "" {
			return nil, fmt.Errorf("challenges[%d]: title required", i)
		}
		id, err := seedID(c.ID, "challenge", c.Title)
		if err != nil {
			return nil, fmt.Errorf("challenges[%d]: %w", i, err)
		}
		difficulty := gamification.ChallengeDifficulty(strings.ToLower(strings.TrimSpace(c.Difficulty)))
		if difficulty == "" {
			difficulty = gamification.ChallengeMedium
		}
		if !difficulty.Valid() {
			return nil, fmt.Errorf("challenges[%d]: unknown difficulty %q", i, c.Difficulty)
		}
		ctype := gamification.ChallengeType(strings.ToLower(strings.TrimSpace(c.Type)))
		if !ctype.Valid() {
			return nil, fmt.Errorf("challenges[%d]: unknown type %q", i, c.Type)
		}
		if c.XPReward < 0 {
			return nil, fmt.Errorf("challenges[%d]: xp_reward must not be negative", i)
		}

		var until time.Time
		switch {
		case c.AvailableUntil != nil:
			until = *c.AvailableUntil
		case strings.TrimSpace(c.AvailableFor) != "":
			d, err := time.ParseDuration(strings.TrimSpace(c.AvailableFor))
			if err != nil {
				return nil, fmt.Errorf("challenges[%d]: available_for: %w", i, err)
			}
			until = now.Add(d)
		default:
			until = now.Add(24 * time.Hour)
		}

		out = append(out, &types.DailyChallenge{
			ID:             id,
			Title:          c.Title,
			Description:    c.Description,
			Difficulty:     difficulty,
			Type:           ctype,
			Content:        jsonMap(c.Content),
			XPReward:       c.XPReward,
			AvailableUntil: until.UTC(),
		})
	}
	return out, nil
}

func seedID(explicit string, kind string, parts ...string) (uuid.UUID, error) {
	if s := strings.TrimSpace(explicit); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid id %q: %w", s, err)
		}
		return id, nil
	}
	name := kind + "/" + strings.Join(parts, "/")
	return uuid.NewSHA1(seedNamespace, []byte(name)), nil
}

func jsonMap(m map[string]interface{}) datatypes.JSONMap {
	if m == nil {
		return datatypes.JSONMap{}
	}
	return datatypes.JSONMap(m)
}
