package feedback

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/taqdeer/taqdeer-api/internal/database"
)

type Repository interface {
	Create(ctx context.Context, rec *Record) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db database.Service) Repository {
	return &repository{db: db.DB()}
}

func (r *repository) Create(ctx context.Context, rec *Record) error {
	if r.db == nil {
		return database.ErrStoreUnavailable
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}
