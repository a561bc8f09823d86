package guidance

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/taqdeer/taqdeer-api/internal/database"
	"github.com/taqdeer/taqdeer-api/internal/database/dbtest"
	"github.com/taqdeer/taqdeer-api/internal/llm"
)

type fakeLLM struct {
	mu     sync.Mutex
	calls  int
	system string
	user   string
	reply  string
	err    error
}

func (f *fakeLLM) Complete(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.system, f.user = system, user
	return f.reply, f.err
}

type countingRecorder struct {
	n   atomic.Int64
	err error
}

func (c *countingRecorder) RecordGeneration(context.Context) error {
	c.n.Add(1)
	return c.err
}

const rulingJSON = `{"title":"Fasting while travelling","summary":"A traveller may break the fast and make it up later.",
"evidences":[{"translation":"...then an equal number of other days.","source":"Quran 2:184"}],
"scholarOpinions":[{"scholar":"Majority","opinion":"Breaking the fast is a concession"}]}`

func TestResolveDuaCountsOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	model := &fakeLLM{reply: "```json\n" + duaJSON + "\n```"}
	rec := &countingRecorder{}
	svc := NewService(model, rec, nil)

	res, err := svc.Resolve(context.Background(), "anxiety", ModeDua)
	require.NoError(t, err)
	svc.Wait()

	require.NotNil(t, res.Dua)
	assert.Equal(t, "Du'a for Anxiety", res.Dua.Title)
	assert.EqualValues(t, 1, rec.n.Load())
	assert.Equal(t, 1, model.calls)
	assert.Contains(t, model.user, `"anxiety"`)
}

func TestResolveSurvivesRecorderFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &countingRecorder{err: database.ErrStoreUnavailable}
	svc := NewService(&fakeLLM{reply: duaJSON}, rec, nil)

	_, err := svc.Resolve(context.Background(), "anxiety", ModeDua)
	require.NoError(t, err)
	svc.Wait()
	assert.EqualValues(t, 1, rec.n.Load())
}

func TestResolveDoesNotWaitForRecorder(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	rec := &blockingRecorder{release: release}
	svc := NewService(&fakeLLM{reply: duaJSON}, rec, nil)

	_, err := svc.Resolve(context.Background(), "anxiety", ModeDua)
	require.NoError(t, err)
	close(release)
	svc.Wait()
}

type blockingRecorder struct{ release chan struct{} }

func (b *blockingRecorder) RecordGeneration(ctx context.Context) error {
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		mode       Mode
		llmReply   string
		llmErr     error
		wantKind   Kind
		wantStatus int
	}{
		{"empty query", "   ", ModeDua, "", nil, InvalidInput, http.StatusBadRequest},
		{"unknown mode", "q", Mode("x"), "", nil, InvalidInput, http.StatusBadRequest},
		{"missing key", "q", ModeDua, "", llm.ErrMissingCredential, UpstreamUnavailable, http.StatusInternalServerError},
		{"unauthorized", "q", ModeDua, "", llm.ErrUnauthorized, UpstreamUnavailable, http.StatusInternalServerError},
		{"rate limited", "q", ModeDua, "", llm.ErrRateLimited, UpstreamUnavailable, http.StatusTooManyRequests},
		{"transport", "q", ModeDua, "", errors.New("dial tcp: refused"), UpstreamUnavailable, http.StatusInternalServerError},
		{"timeout", "q", ModeRuling, "", llm.ErrTimeout, UpstreamTimeout, http.StatusGatewayTimeout},
		{"not json", "q", ModeDua, "Sorry, I cannot.", nil, MalformedUpstreamResponse, http.StatusInternalServerError},
		{"ruling without summary", "q", ModeRuling, `{"title":"t"}`, nil, MalformedUpstreamResponse, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &countingRecorder{}
			svc := NewService(&fakeLLM{reply: tt.llmReply, err: tt.llmErr}, rec, nil)

			_, err := svc.Resolve(context.Background(), tt.query, tt.mode)
			svc.Wait()

			var rerr *ResolutionError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, tt.wantKind, rerr.Kind)
			assert.Equal(t, tt.wantStatus, rerr.HTTPStatus())
			assert.NotContains(t, rerr.Message, "Sorry, I cannot.")
			assert.Zero(t, rec.n.Load(), "failures are not counted")
		})
	}
}

func TestResolveRateLimitAndAuthMessagesDiffer(t *testing.T) {
	rl := upstreamError(llm.ErrRateLimited)
	auth := upstreamError(llm.ErrUnauthorized)
	assert.NotEqual(t, rl.Message, auth.Message)
	assert.True(t, rl.RateLimited)
	assert.False(t, auth.RateLimited)
}

func TestResolveRulingServedFromCache(t *testing.T) {
	defer goleak.VerifyNone(t)

	model := &fakeLLM{reply: rulingJSON}
	rec := &countingRecorder{}
	svc := NewService(model, rec, nil, WithCache(8))

	first, err := svc.Resolve(context.Background(), "Fasting while travelling?", ModeRuling)
	require.NoError(t, err)
	second, err := svc.Resolve(context.Background(), "  fasting   WHILE travelling ", ModeRuling)
	require.NoError(t, err)
	svc.Wait()

	assert.Equal(t, 1, model.calls)
	assert.Equal(t, first.Ruling, second.Ruling)
	assert.EqualValues(t, 1, rec.n.Load())
}

func TestResolveRulingServedFromArchive(t *testing.T) {
	store := dbtest.SQLite(t, &RulingRecord{})
	archive := NewRulingArchive(store, nil)

	first := NewService(&fakeLLM{reply: rulingJSON}, nil, nil, WithArchive(archive))
	_, err := first.Resolve(context.Background(), "Fasting while travelling", ModeRuling)
	require.NoError(t, err)
	first.Wait()

	model := &fakeLLM{reply: rulingJSON}
	second := NewService(model, nil, nil, WithArchive(archive), WithCache(4))
	res, err := second.Resolve(context.Background(), "fasting while travelling?", ModeRuling)
	require.NoError(t, err)
	second.Wait()

	assert.Zero(t, model.calls)
	assert.Equal(t, "Fasting while travelling", res.Ruling.Title)

	var rec RulingRecord
	require.NoError(t, store.DB().Where("query = ?", "fasting while travelling").First(&rec).Error)
	assert.Equal(t, 2, rec.SearchCount)
}

func TestResolveArchiveDownFallsBackToModel(t *testing.T) {
	model := &fakeLLM{reply: rulingJSON}
	svc := NewService(model, nil, nil, WithArchive(NewRulingArchive(database.Unavailable(), nil)))

	res, err := svc.Resolve(context.Background(), "q", ModeRuling)
	require.NoError(t, err)
	svc.Wait()
	assert.Equal(t, 1, model.calls)
	assert.NotNil(t, res.Ruling)
}

func TestDrainHonoursDeadline(t *testing.T) {
	release := make(chan struct{})
	svc := NewService(&fakeLLM{reply: duaJSON}, &blockingRecorder{release: release}, nil)
	_, err := svc.Resolve(context.Background(), "q", ModeDua)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, svc.Drain(ctx), context.Canceled)

	close(release)
	assert.NoError(t, svc.Drain(context.Background()))
}
