package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"syllabus_calendar/internal/config"
	"syllabus_calendar/internal/models"
)

var ErrCalendarNotConnected = errors.New("google calendar is not connected, visit /auth/google first")

const timedEventLength = time.Hour

// GoogleCalendarStorage is safe for concurrent use; the service is swapped in
// by ExchangeCode while other requests may be reading it.
type GoogleCalendarStorage struct {
	mu       sync.RWMutex
	service  *calendar.Service
	config   *oauth2.Config
	cfg      config.GoogleConfig
	location *time.Location
	log      *zap.Logger
}

// NewGoogleCalendarStorage reads the OAuth client from cfg.CredentialsFile.
// A missing token file is not an error: the service is built after the auth flow.
func NewGoogleCalendarStorage(ctx context.Context, cfg config.GoogleConfig, log *zap.Logger) (*GoogleCalendarStorage, error) {
	op := "internal/storage/google_calendar.go NewGoogleCalendarStorage"

	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s in %s: %w", cfg.CredentialsFile, op, err)
	}

	oauthConfig, err := google.ConfigFromJSON(data, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth config in %s: %w", op, err)
	}

	gcs, err := newGoogleCalendarStorage(cfg, oauthConfig, log)
	if err != nil {
		return nil, err
	}

	tok, err := tokenFromFile(cfg.TokenFile)
	if err != nil {
		gcs.log.Info("no cached google token, calendar export disabled until auth",
			zap.String("op", op), zap.String("token_file", cfg.TokenFile))
		return gcs, nil
	}

	service, err := calendar.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service in %s: %w", op, err)
	}
	gcs.setService(service)

	return gcs, nil
}

func newGoogleCalendarStorage(cfg config.GoogleConfig, oauthConfig *oauth2.Config, log *zap.Logger) (*GoogleCalendarStorage, error) {
	if log == nil {
		log = zap.NewNop()
	}
	location, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("unknown calendar time zone %q: %w", cfg.TimeZone, err)
	}
	return &GoogleCalendarStorage{
		config:   oauthConfig,
		cfg:      cfg,
		location: location,
		log:      log,
	}, nil
}

func (gcs *GoogleCalendarStorage) connected() *calendar.Service {
	gcs.mu.RLock()
	defer gcs.mu.RUnlock()
	return gcs.service
}

func (gcs *GoogleCalendarStorage) setService(service *calendar.Service) {
	gcs.mu.Lock()
	gcs.service = service
	gcs.mu.Unlock()
}

func (gcs *GoogleCalendarStorage) IsAuthorized() bool {
	return gcs.connected() != nil
}

func (gcs *GoogleCalendarStorage) GetAuthURL(state string) string {
	return gcs.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeCode trades the callback code for a token, caches it and connects the service.
func (gcs *GoogleCalendarStorage) ExchangeCode(ctx context.Context, code string) error {
	op := "internal/storage/google_calendar.go ExchangeCode"

	tok, err := gcs.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("unable to retrieve token in %s: %w", op, err)
	}
	if err := saveToken(gcs.cfg.TokenFile, tok); err != nil {
		gcs.log.Warn("unable to cache oauth token", zap.String("op", op), zap.Error(err))
	}

	service, err := calendar.NewService(ctx, option.WithHTTPClient(gcs.config.Client(context.Background(), tok)))
	if err != nil {
		return fmt.Errorf("failed to create calendar service in %s: %w", op, err)
	}
	gcs.setService(service)
	return nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// CreateEvent pushes a stored event. Events without a time become all-day events.
func (gcs *GoogleCalendarStorage) CreateEvent(ctx context.Context, event models.CalendarEvent) (*calendar.Event, error) {
	service := gcs.connected()
	if service == nil {
		return nil, ErrCalendarNotConnected
	}

	googleEvent, err := gcs.toGoogleEvent(event)
	if err != nil {
		return nil, err
	}

	return service.Events.Insert(gcs.cfg.CalendarID, googleEvent).Context(ctx).Do()
}

func (gcs *GoogleCalendarStorage) toGoogleEvent(event models.CalendarEvent) (*calendar.Event, error) {
	day, err := time.ParseInLocation(models.DateFormat, event.DueDate, gcs.location)
	if err != nil {
		return nil, fmt.Errorf("event %s has bad due date %q: %w", event.ID, event.DueDate, err)
	}

	description := event.Title
	if event.Description != nil && *event.Description != "" {
		description = *event.Description
	}

	googleEvent := &calendar.Event{
		Summary:     event.Title,
		Description: description,
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				"event_id":   event.ID,
				"event_type": string(event.EventType),
			},
		},
	}

	if event.DueTime == nil || *event.DueTime == "" {
		googleEvent.Start = &calendar.EventDateTime{Date: day.Format(models.DateFormat)}
		googleEvent.End = &calendar.EventDateTime{Date: day.AddDate(0, 0, 1).Format(models.DateFormat)}
		return googleEvent, nil
	}

	startTime, err := time.ParseInLocation(models.DateFormat+" 15:04", event.DueDate+" "+*event.DueTime, gcs.location)
	if err != nil {
		return nil, fmt.Errorf("event %s has bad due time %q: %w", event.ID, *event.DueTime, err)
	}
	googleEvent.Start = &calendar.EventDateTime{
		DateTime: startTime.Format(time.RFC3339),
		TimeZone: gcs.cfg.TimeZone,
	}
	googleEvent.End = &calendar.EventDateTime{
		DateTime: startTime.Add(timedEventLength).Format(time.RFC3339),
		TimeZone: gcs.cfg.TimeZone,
	}
	return googleEvent, nil
}

// ListEvents returns upcoming events on the configured calendar for the next days.
func (gcs *GoogleCalendarStorage) ListEvents(ctx context.Context, days int) ([]*calendar.Event, error) {
	service := gcs.connected()
	if service == nil {
		return nil, ErrCalendarNotConnected
	}
	now := time.Now()

	events, err := service.Events.List(gcs.cfg.CalendarID).
		TimeMin(now.Format(time.RFC3339)).
		TimeMax(now.AddDate(0, 0, days).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return events.Items, nil
}
