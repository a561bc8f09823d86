package stats

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/taqdeer/taqdeer-api/internal/database"
	"github.com/taqdeer/taqdeer-api/internal/logger"
)

type Repository interface {
	// Get returns the singleton row, creating it on first use.
	Get(ctx context.Context) (*UsageStats, error)
	// Increment adds one to counter and returns the row as it is afterwards.
	Increment(ctx context.Context, counter Counter) (*UsageStats, error)
}

type repository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepository(db database.Service, log *logger.Logger) Repository {
	if log == nil {
		log = logger.Nop()
	}
	return &repository{db: db.DB(), log: log.With("repo", "StatsRepo")}
}

// ensure inserts the singleton row unless it already exists.
func ensure(tx *gorm.DB) error {
	row := UsageStats{ID: singletonID, LastUpdated: time.Now().UTC()}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

func (r *repository) Get(ctx context.Context) (*UsageStats, error) {
	if r.db == nil {
		return nil, database.ErrStoreUnavailable
	}
	var out UsageStats
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensure(tx); err != nil {
			return err
		}
		return tx.First(&out, singletonID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return &out, nil
}

func (r *repository) Increment(ctx context.Context, counter Counter) (*UsageStats, error) {
	if r.db == nil {
		return nil, database.ErrStoreUnavailable
	}
	if !counter.valid() {
		return nil, fmt.Errorf("increment stats: unknown counter %q", counter)
	}
	col := string(counter)

	var out UsageStats
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensure(tx); err != nil {
			return err
		}
		res := tx.Model(&UsageStats{}).
			Where("id = ?", singletonID).
			Updates(map[string]interface{}{
				col:            gorm.Expr(col + " + 1"),
				"last_updated": time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		return tx.First(&out, singletonID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("increment %s: %w", col, err)
	}
	return &out, nil
}
