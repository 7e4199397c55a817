package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"

	"syllabus_calendar/internal/models"
)

func TestHandleGoogleLogin_SetsStateAndRedirects(t *testing.T) {
	ts := newTestServer(t)
	ts.sync.On("GetAuthURL", mock.AnythingOfType("string")).Return("https://accounts.example/auth?state=x")

	rec := ts.do(http.MethodGet, "/auth/google", "")

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "https://accounts.example/auth?state=x", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, oauthStateCookie, cookies[0].Name)
	state := ts.sync.Calls[0].Arguments.String(0)
	assert.Equal(t, state, cookies[0].Value)
}

func callbackRequest(state, cookieState, code string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/auth/callback?state="+state+"&code="+code, nil)
	if cookieState != "" {
		req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: cookieState})
	}
	return req
}

func TestHandleGoogleCallback(t *testing.T) {
	t.Run("exchanges the code", func(t *testing.T) {
		ts := newTestServer(t)
		ts.sync.On("ExchangeCode", mock.Anything, "code-1").Return(nil)

		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, callbackRequest("s1", "s1", "code-1"))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("state mismatch", func(t *testing.T) {
		ts := newTestServer(t)

		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, callbackRequest("s1", "other", "code-1"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing code", func(t *testing.T) {
		ts := newTestServer(t)

		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, callbackRequest("s1", "s1", ""))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("exchange failure", func(t *testing.T) {
		ts := newTestServer(t)
		ts.sync.On("ExchangeCode", mock.Anything, "code-1").Return(errors.New("invalid_grant"))

		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, callbackRequest("s1", "s1", "code-1"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHandleExport_PushesUnexportedEvents(t *testing.T) {
	ts := newTestServer(t)
	ok := models.CalendarEvent{ID: "ev-1", Title: "Essay", DueDate: "2025-02-14"}
	broken := models.CalendarEvent{ID: "ev-2", Title: "Quiz", DueDate: "2025-02-20"}

	ts.sync.On("IsAuthorized").Return(true)
	ts.events.On("ListEvents", mock.Anything, models.EventFilter{UserID: "user-1", OnlyUnexported: true}).
		Return([]models.CalendarEvent{ok, broken}, nil)
	ts.sync.On("CreateEvent", mock.Anything, ok).Return(&calendar.Event{Id: "g-1", ICalUID: "g-1@google.com"}, nil)
	ts.sync.On("CreateEvent", mock.Anything, broken).Return(nil, errors.New("rate limited"))
	ts.events.On("MarkExported", mock.Anything, "ev-1", "g-1@google.com").Return(nil)

	rec := ts.do(http.MethodPost, "/api/google-calendar/export", `{"user_id":"user-1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["exported"])
	failed := body["failed"].([]any)
	require.Len(t, failed, 1)
	assert.Equal(t, "ev-2", failed[0].(map[string]any)["event_id"])
}

func TestHandleExport_RequiresAuthorization(t *testing.T) {
	ts := newTestServer(t)
	ts.sync.On("IsAuthorized").Return(false)

	rec := ts.do(http.MethodPost, "/api/google-calendar/export", `{"user_id":"user-1"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleUpcoming(t *testing.T) {
	t.Run("default window", func(t *testing.T) {
		ts := newTestServer(t)
		ts.sync.On("ListEvents", mock.Anything, 7).Return([]*calendar.Event{
			{Id: "g-1", Summary: "Essay", Start: &calendar.EventDateTime{Date: "2025-02-14"}},
			{Id: "g-2", Summary: "Midterm", Start: &calendar.EventDateTime{DateTime: "2025-03-10T14:00:00Z"}},
		}, nil)

		rec := ts.do(http.MethodGet, "/api/google-calendar/events", "")

		require.Equal(t, http.StatusOK, rec.Code)
		events := decodeBody(t, rec)["events"].([]any)
		require.Len(t, events, 2)
		assert.Equal(t, "2025-02-14", events[0].(map[string]any)["start"])
		assert.Equal(t, "2025-03-10T14:00:00Z", events[1].(map[string]any)["start"])
	})

	t.Run("bad days", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do(http.MethodGet, "/api/google-calendar/events?days=0", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGoogleRoutesWithoutCredentials(t *testing.T) {
	handler := Router{
		Calendar: NewCalendarHandler(&mockExtractor{}, &mockEventStore{}, nil, nil),
		Syllabus: NewSyllabusHandler(&mockExtractor{}, &mockSyllabusStore{}, &mockEventStore{}, nil, nil),
		Google:   NewGoogleCalendarHandler(nil, &mockEventStore{}, nil),
	}.Handler()

	for _, target := range []string{"/auth/google", "/auth/callback", "/api/google-calendar/events"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}
}
