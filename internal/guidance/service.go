package guidance

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/taqdeer/taqdeer-api/internal/llm"
	"github.com/taqdeer/taqdeer-api/internal/logger"
)

// GenerationRecorder counts successful generations.
type GenerationRecorder interface {
	RecordGeneration(ctx context.Context) error
}

type Service struct {
	llm         llm.Client
	stats       GenerationRecorder
	archive     RulingArchive
	cache       *lru.Cache[string, *RulingContent]
	log         *logger.Logger
	taskTimeout time.Duration
	tasks       sync.WaitGroup
}

type Option func(*Service)

// WithArchive answers repeated ruling searches from the store.
func WithArchive(a RulingArchive) Option {
	return func(s *Service) { s.archive = a }
}

// WithCache keeps up to size rulings in memory in front of the archive.
func WithCache(size int) Option {
	return func(s *Service) {
		if size <= 0 {
			return
		}
		c, err := lru.New[string, *RulingContent](size)
		if err == nil {
			s.cache = c
		}
	}
}

func WithTaskTimeout(d time.Duration) Option {
	return func(s *Service) { s.taskTimeout = d }
}

func NewService(client llm.Client, stats GenerationRecorder, log *logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		llm:         client,
		stats:       stats,
		log:         log.With("service", "guidance"),
		taskTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve turns a query into validated content for mode. Errors are always
// *ResolutionError.
func (s *Service) Resolve(ctx context.Context, query string, mode Mode) (Result, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return Result{}, invalidInput("Query is required")
	}
	if mode != ModeDua && mode != ModeRuling {
		return Result{}, invalidInput("Unknown mode")
	}

	key := QueryKey(q)
	if mode == ModeRuling {
		if r := s.lookupRuling(ctx, key); r != nil {
			return Result{Mode: ModeRuling, Ruling: r}, nil
		}
	}

	prompt, err := BuildPrompt(q, mode)
	if err != nil {
		return Result{}, invalidInput(err.Error())
	}

	raw, err := s.llm.Complete(ctx, prompt.System, prompt.User)
	if err != nil {
		rerr := upstreamError(err)
		s.log.Error("completion failed", "mode", string(mode), "kind", rerr.Kind.String(), "error", err)
		return Result{}, rerr
	}

	res, err := Normalize(raw, q, mode)
	if err != nil {
		var perr *UnparseableError
		if errors.As(err, &perr) {
			s.log.Error("completion is not JSON", "mode", string(mode), "error", perr.Err, "raw", truncate(perr.Raw, 2000))
		} else {
			s.log.Error("completion rejected", "mode", string(mode), "error", err, "raw", truncate(raw, 2000))
		}
		return Result{}, malformed(err)
	}

	if s.stats != nil {
		s.detach(ctx, "record generation", s.stats.RecordGeneration)
	}
	if mode == ModeRuling {
		s.remember(ctx, key, res.Ruling)
	}
	return res, nil
}

// lookupRuling returns a previously answered ruling, bumping its search stats.
// Store errors are logged and treated as a miss.
func (s *Service) lookupRuling(ctx context.Context, key string) *RulingContent {
	if s.cache != nil {
		if r, ok := s.cache.Get(key); ok {
			s.touch(ctx, key)
			return r
		}
	}
	if s.archive == nil {
		return nil
	}
	r, err := s.archive.FindByQuery(ctx, key)
	if err != nil {
		s.log.Warn("ruling archive lookup failed", "query", key, "error", err)
		return nil
	}
	if r == nil {
		return nil
	}
	if s.cache != nil {
		s.cache.Add(key, r)
	}
	s.touch(ctx, key)
	return r
}

func (s *Service) remember(ctx context.Context, key string, r *RulingContent) {
	if s.cache != nil {
		s.cache.Add(key, r)
	}
	if s.archive != nil {
		s.detach(ctx, "archive ruling", func(ctx context.Context) error {
			return s.archive.Save(ctx, key, r)
		})
	}
}

func (s *Service) touch(ctx context.Context, key string) {
	if s.archive == nil {
		return
	}
	s.detach(ctx, "touch ruling", func(ctx context.Context) error {
		return s.archive.TouchSearch(ctx, key)
	})
}

// detach runs fn after the response is written. It keeps the request's values
// but not its cancellation, and only logs failures.
func (s *Service) detach(parent context.Context, name string, fn func(context.Context) error) {
	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.taskTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.log.Warn("background task failed", "task", name, "error", err)
		}
	}()
}

// Wait blocks until every detached task has finished.
func (s *Service) Wait() {
	s.tasks.Wait()
}

// Drain is Wait bounded by ctx.
func (s *Service) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.tasks.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
