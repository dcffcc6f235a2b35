package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/skillquest-backend/internal/domain"
	"github.com/yungbote/skillquest-backend/internal/platform/dbctx"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

type ModuleRepo interface {
	Upsert(dbc dbctx.Context, rows []*types.Module) error
	ListByPathID(dbc dbctx.Context, pathID uuid.UUID) ([]*types.Module, error)
}

type moduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModuleRepo(db *gorm.DB, baseLog *logger.Logger) ModuleRepo {
	return &moduleRepo{db: db, log: baseLog.With("repo", "ModuleRepo")}
}

func (r *moduleRepo) Upsert(dbc dbctx.Context, rows []*types.Module) error {
	if len(rows) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"learning_path_id", "title", "description", "icon", "sort_order", "updated_at"}),
		}).
		Create(&rows).Error
}

func (r *moduleRepo) ListByPathID(dbc dbctx.Context, pathID uuid.UUID) ([]*types.Module, error) {
	var out []*types.Module
	if pathID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("learning_path_id = ?", pathID).
		Order("sort_order ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
