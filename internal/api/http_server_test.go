package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pawcare/internal/config"
	"pawcare/internal/models"
	"pawcare/internal/repository"
	"pawcare/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	createErr error
	created   []models.CreateBookingRequest
}

func (f *fakeCatalog) GetService(_ context.Context, id string) (*models.Service, error) {
	return &models.Service{ID: id, Name: "Bath", Price: 45, Duration: 30}, nil
}

func (f *fakeCatalog) GetUserPets(context.Context, string) ([]models.Pet, error) {
	return []models.Pet{{ID: "p1", Name: "Rex", Type: "dog"}}, nil
}

func (f *fakeCatalog) GetBookableEmployees(context.Context, string, string) ([]models.Employee, error) {
	return []models.Employee{{ID: "e1", FullName: "Ann Lee"}}, nil
}

func (f *fakeCatalog) GetAvailableSlots(context.Context, string, string, string) ([]models.Slot, error) {
	return []models.Slot{{StartTime: "09:00", EndTime: "09:30", Available: true}}, nil
}

func (f *fakeCatalog) CreateBooking(_ context.Context, req models.CreateBookingRequest) (*models.BookingConfirmation, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	return &models.BookingConfirmation{ID: "b1", Status: "pending", ServiceID: req.ServiceID}, nil
}

type remoteErr struct{ msg string }

func (e *remoteErr) Error() string       { return "catalog http 409: " + e.msg }
func (e *remoteErr) UserMessage() string { return e.msg }

func newTestServer(t *testing.T, cfg config.APIConfig, catalog *fakeCatalog) *httptest.Server {
	t.Helper()
	logger := zerolog.Nop()
	repo := repository.NewMemoryDraftRepository(time.Hour)
	drafts := service.NewDraftService(repo, catalog, nil, service.Options{MaxBookingDays: 3650}, &logger)

	srv := NewHTTPServer(&cfg, drafts, &logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func futureDate() string {
	return time.Now().AddDate(0, 0, 7).Format(models.DateLayout)
}

func TestHTTPServer_Healthz(t *testing.T) {
	ts := newTestServer(t, config.APIConfig{}, &fakeCatalog{})

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
}

func TestHTTPServer_FullFlow(t *testing.T) {
	catalog := &fakeCatalog{}
	ts := newTestServer(t, config.APIConfig{}, catalog)
	base := ts.URL + "/api/v1/drafts"

	resp, view := doJSON(t, http.MethodPost, base, map[string]string{"service_id": "s1", "customer_id": "c1"}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sid := view["session_id"].(string)
	assert.Equal(t, "select_pet", view["step"])
	assert.Equal(t, "ready", view["pets"].(map[string]any)["status"])

	resp, nav := doJSON(t, http.MethodPost, base+"/"+sid+"/next", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, nav["advanced"])

	steps := []struct {
		path string
		body map[string]string
	}{
		{"/pet", map[string]string{"pet_id": "p1"}},
		{"/next", nil},
		{"/employee", map[string]string{"employee_id": "e1"}},
		{"/next", nil},
		{"/date", map[string]string{"scheduled_date": futureDate()}},
		{"/time", map[string]string{"start_time": "09:00"}},
		{"/notes", map[string]string{"customer_notes": "first visit"}},
		{"/next", nil},
	}
	for _, st := range steps {
		method := http.MethodPut
		if st.body == nil {
			method = http.MethodPost
		}
		resp, _ := doJSON(t, method, base+"/"+sid+st.path, st.body, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, st.path)
	}

	resp, view = doJSON(t, http.MethodGet, base+"/"+sid, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "confirm", view["step"])
	assert.Equal(t, true, view["is_last_step"])
	summary := view["summary"].(map[string]any)
	assert.Equal(t, "$45.00", summary["price_text"])
	assert.Equal(t, "09:00-09:30", summary["time_text"])

	resp, result := doJSON(t, http.MethodPost, base+"/"+sid+"/submit", nil, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, result["navigate"])
	require.Len(t, catalog.created, 1)
	assert.Equal(t, "first visit", catalog.created[0].CustomerNotes)

	resp, view = doJSON(t, http.MethodGet, base+"/"+sid, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "select_pet", view["step"])

	resp, _ = doJSON(t, http.MethodDelete, base+"/"+sid, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodGet, base+"/"+sid, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPServer_SubmitErrors(t *testing.T) {
	catalog := &fakeCatalog{createErr: &remoteErr{msg: "slot already taken"}}
	ts := newTestServer(t, config.APIConfig{}, catalog)
	base := ts.URL + "/api/v1/drafts"

	_, view := doJSON(t, http.MethodPost, base, map[string]string{"service_id": "s1", "customer_id": "c1"}, nil)
	sid := view["session_id"].(string)

	resp, body := doJSON(t, http.MethodPost, base+"/"+sid+"/submit", nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.NotEmpty(t, body["error"])

	for _, st := range []struct{ path, key, val string }{
		{"/pet", "pet_id", "p1"},
		{"/employee", "employee_id", "e1"},
		{"/date", "scheduled_date", futureDate()},
		{"/time", "start_time", "09:00"},
	} {
		resp, _ := doJSON(t, http.MethodPut, base+"/"+sid+st.path, map[string]string{st.key: st.val}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body = doJSON(t, http.MethodPost, base+"/"+sid+"/submit", nil, nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "slot already taken", body["error"])

	_, view = doJSON(t, http.MethodGet, base+"/"+sid, nil, nil)
	draft := view["draft"].(map[string]any)
	assert.Equal(t, "09:00", draft["start_time"])
}

func TestHTTPServer_RequestValidation(t *testing.T) {
	ts := newTestServer(t, config.APIConfig{}, &fakeCatalog{})
	base := ts.URL + "/api/v1/drafts"

	resp, body := doJSON(t, http.MethodPost, base, map[string]string{"service_id": "s1"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["fields"], "customer_id")

	_, view := doJSON(t, http.MethodPost, base, map[string]string{"service_id": "s1", "customer_id": "c1"}, nil)
	sid := view["session_id"].(string)

	resp, body = doJSON(t, http.MethodPut, base+"/"+sid+"/date", map[string]string{"scheduled_date": "01.06.2025"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["fields"], "scheduled_date")

	resp, body = doJSON(t, http.MethodPut, base+"/"+sid+"/date", map[string]string{"scheduled_date": "2001-01-01"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["fields"], "scheduled_date")

	resp, _ = doJSON(t, http.MethodPut, base+"/"+sid+"/pet", map[string]string{"pet": "p1"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPut, base+"/missing/pet", map[string]string{"pet_id": "p1"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPServer_Auth(t *testing.T) {
	cfg := config.APIConfig{
		Auth: config.APIAuthConfig{
			Enabled: true,
			APIKeys: []config.APIClientKey{
				{Key: "key-rw", Extra: "extra-rw", Name: "web"},
				{Key: "key-ro", Extra: "extra-ro", Name: "dashboard", Permissions: []string{permReadDrafts}},
			},
		},
	}
	ts := newTestServer(t, cfg, &fakeCatalog{})
	base := ts.URL + "/api/v1/drafts"
	start := map[string]string{"service_id": "s1", "customer_id": "c1"}

	resp, _ := doJSON(t, http.MethodPost, base, start, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, base, start, map[string]string{"x-api-key": "key-rw", "x-api-extra": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, base, start, map[string]string{"x-api-key": "key-ro", "x-api-extra": "extra-ro"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, view := doJSON(t, http.MethodPost, base, start, map[string]string{"x-api-key": "key-rw", "x-api-extra": "extra-rw"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, base+"/"+view["session_id"].(string), nil, map[string]string{"x-api-key": "key-ro", "x-api-extra": "extra-ro"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_RateLimit(t *testing.T) {
	cfg := config.APIConfig{RateLimit: config.APIRateLimitConfig{RPS: 0.001, Burst: 1}}
	ts := newTestServer(t, cfg, &fakeCatalog{})
	url := ts.URL + "/api/v1/drafts/missing"

	resp, _ := doJSON(t, http.MethodGet, url, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, url, nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "rate limit exceeded", body["error"])
}
