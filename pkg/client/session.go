package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/taqdeer/taqdeer-api/internal/guidance"
)

type State int

const (
	Idle State = iota
	Loading
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Succeeded:
		return "success"
	case Failed:
		return "error"
	}
	return "idle"
}

var (
	ErrEmptyQuery     = errors.New("client: please enter a question")
	ErrNothingToShare = errors.New("client: no du'a to share")
	// ErrSuperseded is returned to a Submit whose result arrived after a newer
	// Submit (or a mode switch) started; its result is dropped.
	ErrSuperseded = errors.New("client: result superseded by a newer request")
)

const (
	timeoutNotice = "Request took longer than expected. Please try again."
	networkNotice = "Unable to reach the server. Please check your connection and try again."
	genericNotice = "Failed to generate response. Please try again."
)

// View is an immutable snapshot of a Session.
type View struct {
	State   State
	Mode    guidance.Mode
	Query   string
	Dua     *guidance.DuaContent
	Ruling  *guidance.RulingContent
	Err     error
	Message string
}

// Session drives one search box: idle, then loading on each submit, then
// success or error. Only the latest submit may move it out of loading.
type Session struct {
	api   *Client
	mu    sync.Mutex
	gen   uint64
	view  View
	tasks sync.WaitGroup
}

func NewSession(api *Client, mode guidance.Mode) *Session {
	return &Session{api: api, view: View{State: Idle, Mode: mode}}
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetMode switches between du'a and ruling search, discarding any result and
// any request still in flight.
func (s *Session) SetMode(mode guidance.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view.Mode == mode {
		return
	}
	s.gen++
	s.view = View{State: Idle, Mode: mode}
}

func (s *Session) Submit(ctx context.Context, query string) (View, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return s.View(), ErrEmptyQuery
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	mode := s.view.Mode
	s.view = View{State: Loading, Mode: mode, Query: q}
	s.mu.Unlock()

	s.background(ctx, s.api.TrackVisitor)

	var (
		dua    *guidance.DuaContent
		ruling *guidance.RulingContent
		err    error
	)
	if mode == guidance.ModeDua {
		dua, err = s.api.GenerateDua(ctx, q)
	} else {
		ruling, err = s.api.SearchRuling(ctx, q)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return s.view, ErrSuperseded
	}
	if err != nil {
		s.view = View{State: Failed, Mode: mode, Query: q, Err: err, Message: notice(err)}
		return s.view, err
	}
	s.view = View{State: Succeeded, Mode: mode, Query: q, Dua: dua, Ruling: ruling}
	return s.view, nil
}

// Share returns the copy text for the current du'a and records the share.
func (s *Session) Share(ctx context.Context) (string, error) {
	v := s.View()
	if v.State != Succeeded || v.Dua == nil {
		return "", ErrNothingToShare
	}
	s.background(ctx, s.api.TrackShare)
	return v.Dua.ShareText(), nil
}

// Wait blocks until tracking calls started by Submit and Share are done.
func (s *Session) Wait() {
	s.tasks.Wait()
}

func (s *Session) background(parent context.Context, fn func(context.Context) error) {
	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), 10*time.Second)
		defer cancel()
		_ = fn(ctx)
	}()
}

func notice(err error) string {
	var apiErr *APIError
	switch {
	case IsTimeout(err):
		return timeoutNotice
	case errors.Is(err, ErrNetwork):
		return networkNotice
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	}
	return genericNotice
}
