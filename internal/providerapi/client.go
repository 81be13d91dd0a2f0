// Package providerapi is the HTTP client for the provider booking backend.
package providerapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"medibook/internal/availability"
	"medibook/internal/models"
)

// MaxAvailabilityDaysRange caps one availability fetch window.
const MaxAvailabilityDaysRange = 366

// Client calls the provider backend's booking API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	redis    *redis.Client
	cacheTTL time.Duration

	limiter *rate.Limiter
}

// New constructs a client. The transport timeout is the only timeout this
// layer imposes.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// UseRedisCache configures optional Redis caching for GET endpoints.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// UseRateLimit throttles outgoing requests to rps with the given burst.
func (c *Client) UseRateLimit(rps float64, burst int) {
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// FetchAvailability fetches per-day availability for a bounded date range.
func (c *Client) FetchAvailability(ctx context.Context, doctorID string, start, end models.Date) ([]availability.RawDay, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("availability range end %s before start %s", end, start)
	}
	days := int(end.Midnight(time.UTC).Sub(start.Midnight(time.UTC)).Hours() / 24)
	if days > MaxAvailabilityDaysRange {
		return nil, fmt.Errorf("availability range exceeds maximum of %d days", MaxAvailabilityDaysRange)
	}

	endpoint := fmt.Sprintf("%s/api/v1/doctors/%s/availability?start=%s&end=%s",
		c.baseURL, url.PathEscape(doctorID), start, end)
	cacheKey := fmt.Sprintf("availability:%s:%s:%s", doctorID, start, end)

	var wrap struct {
		Days []availability.RawDay `json:"days"`
	}
	if c.readCache(ctx, cacheKey, &wrap) {
		return wrap.Days, nil
	}
	if err := c.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, wrap)
	return wrap.Days, nil
}

// FetchDoctor fetches a doctor profile.
func (c *Client) FetchDoctor(ctx context.Context, doctorID string) (*models.DoctorProfile, error) {
	endpoint := fmt.Sprintf("%s/api/v1/doctors/%s", c.baseURL, url.PathEscape(doctorID))
	cacheKey := "doctor:" + doctorID

	var profile models.DoctorProfile
	if c.readCache(ctx, cacheKey, &profile) {
		return &profile, nil
	}
	if err := c.doGet(ctx, endpoint, &profile); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, profile)
	return &profile, nil
}

// SearchDoctors runs a doctor search with explicit filters.
func (c *Client) SearchDoctors(ctx context.Context, params SearchParams) ([]models.DoctorProfile, error) {
	endpoint := fmt.Sprintf("%s/api/v1/doctors", c.baseURL)
	if qs := params.Encode(); qs != "" {
		endpoint += "?" + qs
	}

	var wrap struct {
		Doctors []models.DoctorProfile `json:"doctors"`
	}
	if err := c.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, err
	}
	return wrap.Doctors, nil
}

// SubmitBooking creates an appointment. A concurrent-booking conflict maps
// to ErrSlotTaken; backend validation failures map to ErrValidationRejected.
func (c *Client) SubmitBooking(ctx context.Context, req models.BookingRequest) (*models.BookingConfirmation, error) {
	endpoint := fmt.Sprintf("%s/api/v1/appointments", c.baseURL)
	var confirmation models.BookingConfirmation
	if err := c.doPost(ctx, endpoint, req, &confirmation); err != nil {
		return nil, err
	}
	return &confirmation, nil
}

// CancelBooking cancels an appointment, optionally with a reason.
func (c *Client) CancelBooking(ctx context.Context, appointmentID, reason string) error {
	endpoint := fmt.Sprintf("%s/api/v1/appointments/%s", c.baseURL, url.PathEscape(appointmentID))
	if reason != "" {
		endpoint += "?reason=" + url.QueryEscape(reason)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	c.addHeaders(req)
	return c.do(req, nil)
}

// ListAppointments returns all appointments of a patient.
func (c *Client) ListAppointments(ctx context.Context, patientID string) ([]models.Appointment, error) {
	endpoint := fmt.Sprintf("%s/api/v1/patients/%s/appointments", c.baseURL, url.PathEscape(patientID))

	var wrap struct {
		Appointments []models.Appointment `json:"appointments"`
	}
	if err := c.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, err
	}
	return wrap.Appointments, nil
}

// HealthCheck checks if the provider API is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/healthz", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health check status %d", ErrFetchFailed, resp.StatusCode)
	}
	return nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}

// InvalidateAvailability drops cached availability windows for a doctor.
// Called after a submission conflict so the retry sees fresh slots.
func (c *Client) InvalidateAvailability(ctx context.Context, doctorID string) {
	if c.redis == nil {
		return
	}
	iter := c.redis.Scan(ctx, 0, "availability:"+doctorID+":*", 100).Iterator()
	for iter.Next(ctx) {
		_ = c.redis.Del(ctx, iter.Val()).Err()
	}
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	c.addHeaders(req)
	return c.do(req, out)
}

func (c *Client) doPost(ctx context.Context, endpoint string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(data)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.addHeaders(req)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return err
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return c.statusError(resp)
	}
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}

func (c *Client) statusError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(body, &payload)

	switch resp.StatusCode {
	case http.StatusConflict:
		return ErrSlotTaken
	case http.StatusUnprocessableEntity:
		if payload.Error != "" {
			return fmt.Errorf("%w: %s", ErrValidationRejected, payload.Error)
		}
		return ErrValidationRejected
	}
	return fmt.Errorf("%w: http %d", ErrFetchFailed, resp.StatusCode)
}

func (c *Client) addHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
}
