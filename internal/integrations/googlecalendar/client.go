package googlecalendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-MeetingService/internal/domain"
)

const (
	breakerName = "google_calendar"

	opGetBusy     = "get_busy"
	opCreateEvent = "create_event"
	opDeleteEvent = "delete_event"
)

// Client клиент Google Calendar API
// Каждый вызов проходит через локальный rate limiter и circuit breaker
type Client struct {
	baseURL    string
	calendarID string
	location   *time.Location
	timeout    time.Duration
	reminders  []reminderOverride

	base    *http.Client
	oauth   *oauth2.Config
	tokens  TokenStore
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[any]

	mu      sync.Mutex
	sources map[int64]cachedSource

	metrics Metrics
	log     Logger
}

type cachedSource struct {
	refreshToken string
	source       oauth2.TokenSource
}

// NewClient создает клиент. metrics может быть nil
func NewClient(cfg Config, tokens TokenStore, metrics Metrics, log Logger) *Client {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	c := &Client{
		baseURL:    cfg.BaseURL,
		calendarID: cfg.CalendarID,
		location:   loc,
		timeout:    cfg.Timeout,
		base:       &http.Client{Timeout: cfg.Timeout},
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
			Scopes: []string{"https://www.googleapis.com/auth/calendar"},
		},
		tokens:  tokens,
		limiter: newLimiter(cfg.RequestsPerSecond, cfg.Burst),
		sources: make(map[int64]cachedSource),
		metrics: metrics,
		log:     log,
	}

	if cfg.EmailReminderMinutes > 0 {
		c.reminders = append(c.reminders, reminderOverride{Method: "email", Minutes: cfg.EmailReminderMinutes})
	}
	if cfg.PopupReminderMinutes > 0 {
		c.reminders = append(c.reminders, reminderOverride{Method: "popup", Minutes: cfg.PopupReminderMinutes})
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	c.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// ошибки владельца (токен отозван, календарь не привязан) не размыкают цепь
		IsSuccessful: func(err error) bool {
			return err == nil || !IsRetryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("Circuit breaker %s: %s -> %s", name, from.String(), to.String())
			if c.metrics != nil {
				c.metrics.SetCircuitState(name, int(to))
			}
		},
	})

	return c
}

func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// IsConnected сообщает, привязан ли календарь владельца
func (c *Client) IsConnected(ctx context.Context, ownerID int64) (bool, error) {
	_, ok, err := c.tokens.GetRefreshToken(ctx, ownerID)
	if err != nil {
		return false, fmt.Errorf("%w: token store: %v", ErrInternal, err)
	}
	return ok, nil
}

// GetBusy возвращает занятые интервалы календаря владельца в окне [from, to)
// Порядок и непересекаемость интервалов не гарантируются
func (c *Client) GetBusy(ctx context.Context, ownerID int64, from, to time.Time) ([]domain.BusyInterval, error) {
	body := freeBusyRequest{
		TimeMin:  from.UTC().Format(time.RFC3339),
		TimeMax:  to.UTC().Format(time.RFC3339),
		TimeZone: c.location.String(),
		Items:    []freeBusyItem{{ID: c.calendarID}},
	}

	var resp freeBusyResponse
	if err := c.call(ctx, opGetBusy, ownerID, http.MethodPost, "/freeBusy", nil, body, &resp); err != nil {
		return nil, notFoundAsInvalid(err)
	}

	cal, ok := resp.Calendars[c.calendarID]
	if !ok {
		return nil, fmt.Errorf("%w: calendar %q missing in freeBusy response", ErrInvalidResponse, c.calendarID)
	}
	if len(cal.Errors) > 0 {
		reason := cal.Errors[0].Reason
		if reason == "backendError" || reason == "internalError" {
			return nil, fmt.Errorf("%w: freeBusy calendar error: %s", ErrUnreachable, reason)
		}
		return nil, fmt.Errorf("%w: freeBusy calendar error: %s", ErrUnauthorized, reason)
	}

	busy := make([]domain.BusyInterval, 0, len(cal.Busy))
	for _, b := range cal.Busy {
		start, err := time.Parse(time.RFC3339, b.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: busy start %q: %v", ErrInvalidResponse, b.Start, err)
		}
		end, err := time.Parse(time.RFC3339, b.End)
		if err != nil {
			return nil, fmt.Errorf("%w: busy end %q: %v", ErrInvalidResponse, b.End, err)
		}
		if !start.Before(end) {
			continue
		}
		busy = append(busy, domain.BusyInterval{Start: start, End: end})
	}

	return busy, nil
}

// CreateEvent создает событие с Google Meet в календаре владельца
func (c *Client) CreateEvent(ctx context.Context, ownerID int64, in EventInput) (*domain.ExternalEvent, error) {
	event := c.toGoogleEvent(in)

	query := url.Values{}
	query.Set("conferenceDataVersion", "1")
	query.Set("sendUpdates", "all")

	var created createdEvent
	path := "/calendars/" + url.PathEscape(c.calendarID) + "/events"
	if err := c.call(ctx, opCreateEvent, ownerID, http.MethodPost, path, query, event, &created); err != nil {
		return nil, notFoundAsInvalid(err)
	}
	if created.ID == "" {
		return nil, fmt.Errorf("%w: created event has no id", ErrInvalidResponse)
	}

	link := created.HangoutLink
	if link == "" {
		link = created.HTMLLink
	}
	return &domain.ExternalEvent{Ref: created.ID, Link: link}, nil
}

// DeleteEvent удаляет событие из календаря владельца; отсутствующее событие не считается ошибкой
func (c *Client) DeleteEvent(ctx context.Context, ownerID int64, eventRef string) error {
	query := url.Values{}
	query.Set("sendUpdates", "all")

	path := "/calendars/" + url.PathEscape(c.calendarID) + "/events/" + url.PathEscape(eventRef)
	err := c.call(ctx, opDeleteEvent, ownerID, http.MethodDelete, path, query, nil, nil)
	if errors.Is(err, errGone) {
		return nil
	}
	return err
}

func (c *Client) toGoogleEvent(in EventInput) googleEvent {
	zone := c.location.String()
	event := googleEvent{
		Summary:     in.Title,
		Description: in.Description,
		Start:       eventTime{DateTime: in.Start.In(c.location).Format(time.RFC3339), TimeZone: zone},
		End:         eventTime{DateTime: in.End.In(c.location).Format(time.RFC3339), TimeZone: zone},
		ConferenceData: &conferenceData{
			CreateRequest: conferenceRequest{RequestID: uuid.NewString()},
		},
		Reminders: eventReminders{UseDefault: len(c.reminders) == 0, Overrides: c.reminders},
	}
	event.ConferenceData.CreateRequest.ConferenceSolutionKey.Type = "hangoutsMeet"

	if in.AttendeeEmail != "" {
		event.Attendees = []eventAttendee{{Email: in.AttendeeEmail, DisplayName: in.AttendeeName}}
	}
	return event
}

// errGone событие уже удалено (404/410)
var errGone = errors.New("googlecalendar: resource gone")

// call выполняет запрос через rate limiter и circuit breaker и снимает метрики
func (c *Client) call(ctx context.Context, op string, ownerID int64, method, path string, query url.Values, in, out interface{}) error {
	start := time.Now()

	err := c.limit(ctx)
	if err == nil {
		_, err = c.breaker.Execute(func() (any, error) {
			return nil, c.do(ctx, ownerID, method, path, query, in, out)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %v", ErrUnreachable, err)
		}
	}

	if c.metrics != nil {
		c.metrics.ObserveProviderCall(op, outcome(err), time.Since(start))
	}
	if err != nil && !errors.Is(err, errGone) {
		c.log.Warn("Google Calendar %s failed for owner_id=%d: %v", op, ownerID, err)
	}
	return err
}

func (c *Client) limit(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(waitCtx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrUnreachable, ctx.Err())
		}
		return fmt.Errorf("%w: local request budget exhausted: %v", ErrRateLimited, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, ownerID int64, method, path string, query url.Values, in, out interface{}) error {
	httpClient, err := c.clientFor(ctx, ownerID)
	if err != nil {
		return err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: marshal request: %v", ErrInternal, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return mapStatus(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	return nil
}

// clientFor возвращает http-клиент, подписывающий запросы токеном владельца
func (c *Client) clientFor(ctx context.Context, ownerID int64) (*http.Client, error) {
	refreshToken, ok, err := c.tokens.GetRefreshToken(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: token store: %v", ErrInternal, err)
	}
	if !ok {
		return nil, ErrNotConnected
	}

	c.mu.Lock()
	cached, found := c.sources[ownerID]
	if !found || cached.refreshToken != refreshToken {
		// источник живёт дольше запроса, поэтому не привязан к его контексту
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, c.base)
		cached = cachedSource{
			refreshToken: refreshToken,
			source:       c.oauth.TokenSource(tokenCtx, &oauth2.Token{RefreshToken: refreshToken}),
		}
		c.sources[ownerID] = cached
	}
	c.mu.Unlock()

	return &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Source: cached.source,
			Base:   c.base.Transport,
		},
	}, nil
}

func mapTransportError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.Response != nil && retrieveErr.Response.StatusCode >= 500 {
			return fmt.Errorf("%w: token refresh: %v", ErrUnreachable, err)
		}
		return fmt.Errorf("%w: token refresh: %v", ErrUnauthorized, err)
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

func mapStatus(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiErr apiError
	_ = json.Unmarshal(raw, &apiErr)
	reason := ""
	if len(apiErr.Error.Errors) > 0 {
		reason = apiErr.Error.Errors[0].Reason
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden && (reason == "rateLimitExceeded" || reason == "userRateLimitExceeded"):
		return fmt.Errorf("%w: status %d: %s", ErrRateLimited, resp.StatusCode, reason)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d: %s", ErrUnauthorized, resp.StatusCode, apiErr.Error.Message)
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusGone:
		return errGone
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	default:
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(raw))
	}
}

func notFoundAsInvalid(err error) error {
	if errors.Is(err, errGone) {
		return fmt.Errorf("%w: calendar not found", ErrInvalidResponse)
	}
	return err
}

func outcome(err error) string {
	switch {
	case err == nil, errors.Is(err, errGone):
		return "ok"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotConnected):
		return "not_connected"
	case errors.Is(err, ErrUnreachable):
		return "unreachable"
	default:
		return "error"
	}
}
