package stats

import (
	"context"

	"github.com/taqdeer/taqdeer-api/internal/logger"
)

type Service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, log: log.With("service", "stats")}
}

// Snapshot never fails: an unreachable store reads as all zeros.
func (s *Service) Snapshot(ctx context.Context) Snapshot {
	st, err := s.repo.Get(ctx)
	if err != nil {
		s.log.Warn("stats unavailable, serving zeros", "error", err)
		return Snapshot{}
	}
	return st.Snapshot()
}

func (s *Service) RecordVisitor(ctx context.Context) error {
	_, err := s.repo.Increment(ctx, Visitors)
	return err
}

func (s *Service) RecordShare(ctx context.Context) error {
	_, err := s.repo.Increment(ctx, Shared)
	return err
}

func (s *Service) RecordGeneration(ctx context.Context) error {
	_, err := s.repo.Increment(ctx, Generated)
	return err
}
