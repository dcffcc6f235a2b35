package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/skillquest-backend/internal/domain"
	"github.com/yungbote/skillquest-backend/internal/platform/dbctx"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

type LessonRepo interface {
	Upsert(dbc dbctx.Context, rows []*types.Lesson) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error)
	ListByModuleID(dbc dbctx.Context, moduleID uuid.UUID) ([]*types.Lesson, error)
	CountByPathID(dbc dbctx.Context, pathID uuid.UUID) (int64, error)
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{db: db, log: baseLog.With("repo", "LessonRepo")}
}

func (r *lessonRepo) Upsert(dbc dbctx.Context, rows []*types.Lesson) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"module_id", "title", "description", "type", "content",
				"duration", "xp_reward", "difficulty", "sort_order", "updated_at",
			}),
		}).
		Create(&rows).Error
}

func (r *lessonRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lesson, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Lesson
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *lessonRepo) ListByModuleID(dbc dbctx.Context, moduleID uuid.UUID) ([]*types.Lesson, error) {
	var out []*types.Lesson
	if moduleID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("module_id = ?", moduleID).
		Order("sort_order ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lessonRepo) CountByPathID(dbc dbctx.Context, pathID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).
		Model(&types.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.learning_path_id = ?", pathID).
		Count(&n).Error
	return n, err
}
