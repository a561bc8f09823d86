package feedback

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/taqdeer/taqdeer-api/internal/logger"
)

var (
	ErrMissingFields       = errors.New("missing required fields")
	ErrInvalidFeedbackType = errors.New("invalid feedback type")
)

type Service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, log: log.With("service", "feedback")}
}

// Submit validates req and stores it as a pending record.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Record, error) {
	typ := Type(strings.TrimSpace(req.FeedbackType))
	comment := strings.TrimSpace(req.Comment)
	snapshot := bytes.TrimSpace(req.DuaData)

	if typ == "" || comment == "" || len(snapshot) == 0 || bytes.Equal(snapshot, []byte("null")) {
		return nil, ErrMissingFields
	}
	if !typ.Valid() {
		return nil, ErrInvalidFeedbackType
	}

	rec := &Record{
		ID:              uuid.New(),
		FeedbackType:    typ,
		Comment:         comment,
		ContentSnapshot: datatypes.JSON(snapshot),
		Status:          StatusPending,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		s.log.Error("feedback not stored", "feedback_type", string(typ), "error", err)
		return nil, err
	}
	return rec, nil
}
