package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pawcare/internal/config"
	"pawcare/internal/metrics"
	"pawcare/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultTimeout   = 10 * time.Second
	cacheKeyPrefix   = "pawcare:"
	idempotencyKey   = "X-Idempotency-Key"
	maxErrorBodySize = 64 << 10
)

// Client calls the marketplace catalog API.
type Client struct {
	baseURL string
	token   string
	ua      string
	http    *http.Client
	retry   RetryPolicy
	logger  zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient builds a client from the catalog config section.
func NewClient(cfg config.CatalogConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		ua:      cfg.UserAgent,
		http:    &http.Client{Timeout: timeout, Transport: transport},
		retry: RetryPolicy{
			MaxRetries:   cfg.Retries,
			InitialDelay: cfg.RetryDelayDuration(),
			MaxDelay:     2 * time.Second,
		},
		logger: logger,
	}
}

// UseRedisCache configures Redis caching for GET endpoints. A zero ttl disables it.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

func (c *Client) GetService(ctx context.Context, serviceID string) (*models.Service, error) {
	endpoint := fmt.Sprintf("%s/api/v1/services/%s", c.baseURL, url.PathEscape(serviceID))
	var svc models.Service
	if err := c.cachedGet(ctx, "get_service", serviceCacheKey(serviceID), endpoint, &svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (c *Client) GetUserPets(ctx context.Context, customerID string) ([]models.Pet, error) {
	endpoint := fmt.Sprintf("%s/api/v1/customers/%s/pets", c.baseURL, url.PathEscape(customerID))
	var pets []models.Pet
	if err := c.cachedGet(ctx, "get_user_pets", petsCacheKey(customerID), endpoint, &pets); err != nil {
		return nil, err
	}
	return pets, nil
}

func (c *Client) GetBookableEmployees(ctx context.Context, serviceID, petID string) ([]models.Employee, error) {
	endpoint := fmt.Sprintf("%s/api/v1/services/%s/employees?pet_id=%s",
		c.baseURL, url.PathEscape(serviceID), url.QueryEscape(petID))
	var employees []models.Employee
	if err := c.cachedGet(ctx, "get_bookable_employees", employeesCacheKey(serviceID, petID), endpoint, &employees); err != nil {
		return nil, err
	}
	return employees, nil
}

func (c *Client) GetAvailableSlots(ctx context.Context, serviceID, employeeID, date string) ([]models.Slot, error) {
	endpoint := fmt.Sprintf("%s/api/v1/services/%s/employees/%s/slots?date=%s",
		c.baseURL, url.PathEscape(serviceID), url.PathEscape(employeeID), url.QueryEscape(date))
	var slots []models.Slot
	if err := c.cachedGet(ctx, "get_available_slots", slotsCacheKey(serviceID, employeeID, date), endpoint, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// CreateBooking posts the booking once. Each call carries a fresh idempotency key.
func (c *Client) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.BookingConfirmation, error) {
	endpoint := c.baseURL + "/api/v1/bookings"
	key := uuid.NewString()

	var confirmation models.BookingConfirmation
	start := time.Now()
	err := c.doPost(ctx, endpoint, key, req, &confirmation)
	metrics.ObserveCatalog("create_booking", outcome(err), time.Since(start).Seconds())
	if err != nil {
		c.logger.Warn().Err(err).
			Str("service_id", req.ServiceID).
			Str("idempotency_key", key).
			Msg("create booking failed")
		return nil, err
	}
	return &confirmation, nil
}

func (c *Client) cachedGet(ctx context.Context, operation, cacheKey, endpoint string, out any) error {
	if c.readCache(ctx, cacheKey, out) {
		metrics.ObserveCatalog(operation, "cache_hit", 0)
		return nil
	}

	start := time.Now()
	err := c.retry.do(ctx, func() error { return c.doGet(ctx, endpoint, out) })
	metrics.ObserveCatalog(operation, outcome(err), time.Since(start).Seconds())
	if err != nil {
		return err
	}
	c.writeCache(ctx, cacheKey, out)
	return nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func serviceCacheKey(serviceID string) string {
	return cacheKeyPrefix + "service:" + serviceID
}

func petsCacheKey(customerID string) string {
	return cacheKeyPrefix + "pets:" + customerID
}

func employeesCacheKey(serviceID, petID string) string {
	return cacheKeyPrefix + "employees:" + serviceID + ":" + petID
}

func slotsCacheKey(serviceID, employeeID, date string) string {
	return cacheKeyPrefix + "slots:" + serviceID + ":" + employeeID + ":" + date
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(val, out) == nil
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	c.addHeaders(req)
	return c.do(ctx, req, out)
}

func (c *Client) doPost(ctx context.Context, endpoint, idempotency string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(idempotencyKey, idempotency)
	c.addHeaders(req)
	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return classifyRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyRequestError(ctx, err)
	}
	return decodeBody(raw, out)
}

func (c *Client) addHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}
}

// decodeBody accepts both a bare payload and a {"data": ...} envelope.
func decodeBody(raw []byte, out any) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &envelope); err == nil && len(envelope.Data) > 0 {
			trimmed = envelope.Data
		}
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	apiErr := &APIError{Status: resp.StatusCode}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Message = errorText(payload.Error)
		if apiErr.Message == "" {
			apiErr.Message = payload.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

// errorText reads "error" as a plain string or as {"message": "..."}.
func errorText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var nested struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &nested) == nil {
		return nested.Message
	}
	return ""
}
