package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-cost/core/availability"
)

func newTestServer() *Server {
	return NewServer(Options{
		Version: "test",
		Now: func() time.Time {
			return time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
		},
	})
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, rec)
	e, ok := body["error"].(map[string]interface{})
	require.True(t, ok, rec.Body.String())
	return e["code"].(string)
}

const pickupRequest = `{
  "unitType": "units",
  "lineItems": [
    {"code": "line-item/units", "includeFor": ["customer", "provider"], "quantity": "2",
     "unitPrice": {"amount": 4500, "currency": "USD"}, "lineTotal": {"amount": 9000, "currency": "USD"}, "reversal": false},
    {"code": "line-item/pickup-fee", "includeFor": ["customer", "provider"], "quantity": "1",
     "unitPrice": {"amount": 0, "currency": "USD"}, "lineTotal": {"amount": 0, "currency": "USD"}, "reversal": false}
  ]
}`

func TestBreakdownEndpoint(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodPost, "/v1/breakdown", pickupRequest)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Breakdown struct {
			Lines      []json.RawMessage `json:"lines"`
			GrandTotal struct {
				Amount   int64  `json:"amount"`
				Currency string `json:"currency"`
			} `json:"grandTotal"`
		} `json:"breakdown"`
		Metadata ResponseMetadata `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, int64(9000), resp.Breakdown.GrandTotal.Amount)
	assert.Equal(t, "USD", resp.Breakdown.GrandTotal.Currency)
	assert.Len(t, resp.Breakdown.Lines, 2)
	assert.Len(t, resp.Metadata.InputHash, 64)
	assert.Equal(t, "test", resp.Metadata.EngineVersion)
}

func TestBreakdownEndpointEmpty(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodPost, "/v1/breakdown", `{"unitType": "day", "currency": "EUR"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"grandTotal":{"amount":0,"currency":"EUR"}`)
}

func TestBreakdownEndpointErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"bad json", `{`, http.StatusBadRequest, "PARSING_ERROR"},
		{"unknown unit", `{"unitType": "hour"}`, http.StatusBadRequest, "INPUT_ERROR"},
		{"mixed currency", `{"unitType": "units", "lineItems": [
			{"code": "line-item/units", "includeFor": ["customer"], "quantity": 1,
			 "unitPrice": {"amount": 1, "currency": "USD"}, "lineTotal": {"amount": 1, "currency": "USD"}},
			{"code": "line-item/shipping-fee", "includeFor": ["customer"], "quantity": 1,
			 "unitPrice": {"amount": 1, "currency": "EUR"}, "lineTotal": {"amount": 1, "currency": "EUR"}}]}`,
			http.StatusUnprocessableEntity, "CURRENCY_MISMATCH"},
		{"inverted booking", `{"unitType": "night", "booking":
			{"startDate": "2017-04-16", "endDate": "2017-04-14", "timeZone": "Etc/UTC"}}`,
			http.StatusUnprocessableEntity, "DATE_RANGE_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(), http.MethodPost, "/v1/breakdown", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestValidateEndpoint(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodPost, "/v1/ranges/validate", RangeRequest{
		TimeZone: "Europe/Helsinki", StartDate: "2026-10-15", EndDate: "2026-10-16",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, "2026-10-15", body["windowStart"])
	assert.Equal(t, "2027-10-16", body["windowEnd"])

	rec = do(t, s, http.MethodPost, "/v1/ranges/validate", RangeRequest{
		TimeZone: "Etc/UTC", StartDate: "2017-04-15", EndDate: "2017-04-14",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVERTED_RANGE", errorCode(t, rec))

	rec = do(t, s, http.MethodPost, "/v1/ranges/validate", RangeRequest{
		TimeZone: "Etc/UTC", StartDate: "2026-10-14", EndDate: "2026-10-15",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "OUT_OF_RANGE", errorCode(t, rec))

	rec = do(t, s, http.MethodPost, "/v1/ranges/validate", RangeRequest{
		TimeZone: "Not/AZone", StartDate: "2026-10-15", EndDate: "2026-10-16",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNormalizeEndpoint(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodPost, "/v1/ranges/normalize", NormalizeRequest{
		TimeZone:      "Pacific/Auckland",
		LocalTimeZone: "America/Los_Angeles",
		Start:         "2026-11-01T12:00:00",
		End:           "2026-11-03T12:00:00",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp RangeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "2026-11-01", resp.StartDate)
	assert.Equal(t, "2026-11-03", resp.EndDate)
	require.NotNil(t, resp.Display)
	assert.Equal(t, "2026-11-01T00:00:00-07:00", resp.Display.Start)
}

func TestExceptionEndpoints(t *testing.T) {
	s := newTestServer()
	path := "/v1/listings/listing-1/exceptions"

	rec := do(t, s, http.MethodGet, path+"?timeZone=Etc/UTC", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"exceptions":[]`)

	for _, rg := range [][2]string{{"2026-11-01", "2026-11-05"}, {"2026-12-01", "2026-12-02"}} {
		rec = do(t, s, http.MethodPut, path, RangeRequest{TimeZone: "Etc/UTC", StartDate: rg[0], EndDate: rg[1]})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, path+"?timeZone=Etc/UTC", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list ExceptionListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Exceptions, 1)
	assert.Equal(t, "2026-12-01", list.Exceptions[0].StartDate)
	assert.Equal(t, 1, list.Exceptions[0].Seats)
	require.NotNil(t, list.Initial)
	assert.Equal(t, "2026-12-02", list.Initial.EndDate)

	rec = do(t, s, http.MethodPut, path, RangeRequest{TimeZone: "Etc/UTC", StartDate: "2028-01-01", EndDate: "2028-01-02"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, s, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "missing timeZone")
}

func TestReplaceExceptionPlanZone(t *testing.T) {
	svc := availability.NewMemoryService()
	s := NewServer(Options{
		Version: "test",
		Service: svc,
		Now: func() time.Time {
			return time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
		},
	})
	path := "/v1/listings/listing-1/exceptions"

	rec := do(t, s, http.MethodPut, path, RangeRequest{
		TimeZone: "Europe/Helsinki", StartDate: "2026-11-01", EndDate: "2026-11-05",
		PlanTimeZone: "America/Los_Angeles",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	plan, ok := svc.Plan("listing-1")
	require.True(t, ok)
	assert.Equal(t, "America/Los_Angeles", plan.TimeZone)

	rec = do(t, s, http.MethodPut, path, RangeRequest{
		TimeZone: "Europe/Helsinki", StartDate: "2026-11-01", EndDate: "2026-11-05",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	plan, _ = svc.Plan("listing-1")
	assert.Equal(t, "Europe/Helsinki", plan.TimeZone)
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}
