package guidance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/taqdeer/taqdeer-api/internal/database"
	"github.com/taqdeer/taqdeer-api/internal/logger"
)

// RulingRecord is an archived ruling keyed by its normalized query.
type RulingRecord struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Query        string         `gorm:"column:query;not null;uniqueIndex" json:"query"`
	Title        string         `gorm:"column:title;not null" json:"title"`
	Summary      string         `gorm:"column:summary;not null" json:"summary"`
	Content      datatypes.JSON `gorm:"column:content" json:"content"`
	SearchCount  int            `gorm:"column:search_count;not null;default:1" json:"search_count"`
	LastSearched time.Time      `gorm:"column:last_searched;not null" json:"last_searched"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
}

func (RulingRecord) TableName() string { return "ruling" }

type RulingArchive interface {
	// FindByQuery returns nil, nil when nothing is archived for key.
	FindByQuery(ctx context.Context, key string) (*RulingContent, error)
	Save(ctx context.Context, key string, ruling *RulingContent) error
	TouchSearch(ctx context.Context, key string) error
}

type rulingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRulingArchive(db database.Service, log *logger.Logger) RulingArchive {
	if log == nil {
		log = logger.Nop()
	}
	return &rulingRepo{db: db.DB(), log: log.With("repo", "RulingArchive")}
}

// QueryKey folds case and whitespace so equivalent questions share one record.
func QueryKey(query string) string {
	q := strings.ToLower(strings.Join(strings.Fields(query), " "))
	return strings.TrimRight(q, "?!. ")
}

func (r *rulingRepo) FindByQuery(ctx context.Context, key string) (*RulingContent, error) {
	if r.db == nil {
		return nil, database.ErrStoreUnavailable
	}
	var rec RulingRecord
	err := r.db.WithContext(ctx).Where("query = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find ruling: %w", err)
	}
	var out RulingContent
	if err := json.Unmarshal(rec.Content, &out); err != nil {
		return nil, fmt.Errorf("decode archived ruling %s: %w", rec.ID, err)
	}
	return &out, nil
}

func (r *rulingRepo) Save(ctx context.Context, key string, ruling *RulingContent) error {
	if r.db == nil {
		return database.ErrStoreUnavailable
	}
	content, err := json.Marshal(ruling)
	if err != nil {
		return fmt.Errorf("encode ruling: %w", err)
	}
	now := time.Now().UTC()
	rec := RulingRecord{
		ID:           uuid.New(),
		Query:        key,
		Title:        ruling.Title,
		Summary:      ruling.Summary,
		Content:      datatypes.JSON(content),
		SearchCount:  1,
		LastSearched: now,
		CreatedAt:    now,
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "query"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "summary", "content", "last_searched"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save ruling: %w", err)
	}
	return nil
}

func (r *rulingRepo) TouchSearch(ctx context.Context, key string) error {
	if r.db == nil {
		return database.ErrStoreUnavailable
	}
	res := r.db.WithContext(ctx).Model(&RulingRecord{}).
		Where("query = ?", key).
		Updates(map[string]interface{}{
			"search_count":  gorm.Expr("search_count + 1"),
			"last_searched": time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("touch ruling: %w", res.Error)
	}
	return nil
}
