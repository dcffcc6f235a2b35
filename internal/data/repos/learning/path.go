package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/skillquest-backend/internal/domain"
	"github.com/yungbote/skillquest-backend/internal/platform/dbctx"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

type LearningPathRepo interface {
	Upsert(dbc dbctx.Context, rows []*types.LearningPath) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LearningPath, error)
	// GetTree loads one path with modules and lessons in display order.
	GetTree(dbc dbctx.Context, id uuid.UUID) (*types.LearningPath, error)
	ListTrees(dbc dbctx.Context) ([]*types.LearningPath, error)
	Exists(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type learningPathRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningPathRepo(db *gorm.DB, baseLog *logger.Logger) LearningPathRepo {
	return &learningPathRepo{db: db, log: baseLog.With("repo", "LearningPathRepo")}
}

// Upsert writes path rows only; nested Modules are ignored.
func (r *learningPathRepo) Upsert(dbc dbctx.Context, rows []*types.LearningPath) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description", "icon", "level", "age_range", "updated_at"}),
		}).
		Create(&rows).Error
}

func (r *learningPathRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LearningPath, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.LearningPath
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *learningPathRepo) GetTree(dbc dbctx.Context, id uuid.UUID) (*types.LearningPath, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.LearningPath
	if err := r.withTree(dbc.DB(r.db)).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *learningPathRepo) ListTrees(dbc dbctx.Context) ([]*types.LearningPath, error) {
	var out []*types.LearningPath
	if err := r.withTree(dbc.DB(r.db)).
		Order("created_at ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningPathRepo) Exists(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&types.LearningPath{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *learningPathRepo) withTree(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		})
}
