package calendar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
)

func TestToEventSummary(t *testing.T) {
	tests := []struct {
		name       string
		event      *calendar.Event
		wantRaw    string
		wantAllDay bool
		wantStart  time.Time
	}{
		{
			name:  "nil event",
			event: nil,
		},
		{
			name: "timed event",
			event: &calendar.Event{
				Id:      "1",
				Summary: "Standup",
				Start:   &calendar.EventDateTime{DateTime: "2026-03-02T09:00:00-08:00"},
				End:     &calendar.EventDateTime{DateTime: "2026-03-02T09:15:00-08:00"},
			},
			wantRaw:   "2026-03-02T09:00:00-08:00",
			wantStart: time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC),
		},
		{
			name: "all-day event",
			event: &calendar.Event{
				Id:      "2",
				Summary: "Holiday",
				Start:   &calendar.EventDateTime{Date: "2026-03-04"},
			},
			wantRaw:    "2026-03-04",
			wantAllDay: true,
			wantStart:  time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toEventSummary(tt.event)
			assert.Equal(t, tt.wantRaw, got.StartRaw)
			assert.Equal(t, tt.wantAllDay, got.AllDay)
			assert.True(t, tt.wantStart.Equal(got.Start), "start = %v", got.Start)
		})
	}
}

func TestToEventSummary_MeetLink(t *testing.T) {
	got := toEventSummary(&calendar.Event{
		ConferenceData: &calendar.ConferenceData{EntryPoints: []*calendar.EntryPoint{
			{EntryPointType: "phone", Uri: "tel:+1"},
			{EntryPointType: "video", Uri: "https://meet.google.com/abc"},
		}},
	})
	assert.Equal(t, "https://meet.google.com/abc", got.MeetLink)
	assert.Equal(t, "(no title)", got.Title())
}

func TestListUpcoming(t *testing.T) {
	from := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2026-03-01T12:00:00Z", q.Get("timeMin"))
		assert.Equal(t, "10", q.Get("maxResults"))
		assert.Equal(t, "true", q.Get("singleEvents"))
		assert.Equal(t, "startTime", q.Get("orderBy"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[
			{"id":"a","summary":"Standup","start":{"dateTime":"2026-03-02T09:00:00Z"}},
			{"id":"b","summary":"Holiday","start":{"date":"2026-03-04"}}
		]}`)
	}))
	defer srv.Close()

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token", TokenType: "Bearer"})
	client, err := NewClient(context.Background(), ts, WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	events, err := client.ListUpcoming(context.Background(), PrimaryCalendar, from, DefaultMaxResults)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Standup", events[0].Summary)
	assert.Equal(t, "2026-03-02T09:00:00Z", events[0].StartRaw)
	assert.True(t, events[1].AllDay)
}

func TestListUpcoming_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"message":"insufficient scopes"}}`)
	}))
	defer srv.Close()

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"})
	client, err := NewClient(context.Background(), ts, WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	_, err = client.ListUpcoming(context.Background(), PrimaryCalendar, time.Now(), DefaultMaxResults)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list events")
}

func TestNewClient_NilTokenSource(t *testing.T) {
	_, err := NewClient(context.Background(), nil)
	assert.Error(t, err)
}
