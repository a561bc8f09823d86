package feedback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taqdeer/taqdeer-api/internal/database"
	"github.com/taqdeer/taqdeer-api/internal/database/dbtest"
)

const snapshot = `{"title":"Du'a for Rain","source":"Sahih al-Bukhari 1032"}`

func TestSubmitStoresPendingRecord(t *testing.T) {
	store := dbtest.SQLite(t, &Record{})
	svc := NewService(NewRepository(store), nil)

	rec, err := svc.Submit(context.Background(), SubmitRequest{
		FeedbackType: "incorrect_reference",
		Comment:      " The hadith number is wrong ",
		DuaData:      json.RawMessage(snapshot),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, rec.Status)

	var got Record
	require.NoError(t, store.DB().First(&got, "id = ?", rec.ID).Error)
	assert.Equal(t, IncorrectReference, got.FeedbackType)
	assert.Equal(t, "The hadith number is wrong", got.Comment)
	assert.Equal(t, StatusPending, got.Status)
	assert.JSONEq(t, snapshot, string(got.ContentSnapshot))
}

func TestSubmitValidation(t *testing.T) {
	svc := NewService(NewRepository(database.Unavailable()), nil)
	tests := []struct {
		name string
		req  SubmitRequest
		want error
	}{
		{"no type", SubmitRequest{Comment: "c", DuaData: json.RawMessage(snapshot)}, ErrMissingFields},
		{"no comment", SubmitRequest{FeedbackType: "other", Comment: "  ", DuaData: json.RawMessage(snapshot)}, ErrMissingFields},
		{"no snapshot", SubmitRequest{FeedbackType: "other", Comment: "c"}, ErrMissingFields},
		{"null snapshot", SubmitRequest{FeedbackType: "other", Comment: "c", DuaData: json.RawMessage("null")}, ErrMissingFields},
		{"unknown type", SubmitRequest{FeedbackType: "spam", Comment: "c", DuaData: json.RawMessage(snapshot)}, ErrInvalidFeedbackType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSubmitFeedbackHandler(t *testing.T) {
	tests := []struct {
		name   string
		store  database.Service
		body   string
		status int
		msg    string
	}{
		{"created", nil, `{"feedbackType":"other","comment":"thanks","duaData":` + snapshot + `}`, http.StatusCreated, "Feedback submitted successfully"},
		{"missing", nil, `{"feedbackType":"other"}`, http.StatusBadRequest, "Missing required fields"},
		{"invalid type", nil, `{"feedbackType":"bogus","comment":"c","duaData":{}}`, http.StatusBadRequest, "Invalid feedback type"},
		{"bad json", nil, `not json`, http.StatusBadRequest, "Invalid JSON body"},
		{"store down", database.Unavailable(), `{"feedbackType":"other","comment":"c","duaData":{}}`, http.StatusInternalServerError, "Failed to submit feedback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := tt.store
			if store == nil {
				store = dbtest.SQLite(t, &Record{})
			}
			h := NewHandler(NewService(NewRepository(store), nil))

			rr := httptest.NewRecorder()
			h.SubmitFeedbackHandler(rr, httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rr.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			if tt.status == http.StatusCreated {
				assert.Equal(t, tt.msg, body["message"])
			} else {
				assert.Equal(t, tt.msg, body["error"])
			}
		})
	}
}
