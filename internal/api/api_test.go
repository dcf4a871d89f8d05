package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sliink/intelpipe/internal/core"
	"github.com/sliink/intelpipe/internal/harmonization"
	"github.com/stretchr/testify/assert"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()
	gin.SetMode(gin.TestMode)

	schema, err := harmonization.DefaultSchema()
	if err != nil {
		t.Fatalf("failed to compile schema: %v", err)
	}

	c := core.NewCore()
	if !c.Initialize() {
		t.Fatal("failed to initialize core")
	}
	t.Cleanup(func() { c.Stop() })

	return NewAPI(c, schema, 8080, "localhost")
}

func doRequest(a *API, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	a.Router().ServeHTTP(recorder, request)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestHealthAndStatus(t *testing.T) {
	a := newTestAPI(t)

	t.Run("Health check responds ok", func(t *testing.T) {
		recorder := doRequest(a, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "ok", decodeBody(t, recorder)["status"])
	})

	t.Run("Status reports component health", func(t *testing.T) {
		recorder := doRequest(a, http.MethodGet, "/status", "")
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, decodeBody(t, recorder), "status")
	})
}

func TestPluginEndpoints(t *testing.T) {
	a := newTestAPI(t)

	t.Run("Plugin listing is empty without registrations", func(t *testing.T) {
		recorder := doRequest(a, http.MethodGet, "/plugins", "")
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Empty(t, decodeBody(t, recorder))
	})

	t.Run("Unknown plugin is a 404", func(t *testing.T) {
		recorder := doRequest(a, http.MethodGet, "/plugins/ghost", "")
		assert.Equal(t, http.StatusNotFound, recorder.Code)

		recorder = doRequest(a, http.MethodPost, "/plugins/ghost/start", "")
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestValidateRecord(t *testing.T) {
	a := newTestAPI(t)

	t.Run("Valid event reconstructs canonically", func(t *testing.T) {
		body := `{"__type": "Event", "source.ip": "192.0.2.1", "source.port": 443}`
		recorder := doRequest(a, http.MethodPost, "/records/validate", body)
		assert.Equal(t, http.StatusOK, recorder.Code)

		response := decodeBody(t, recorder)
		assert.Equal(t, true, response["valid"])

		record := response["record"].(map[string]interface{})
		assert.Equal(t, "Event", record["__type"])
		assert.Equal(t, "192.0.2.1", record["source.ip"])
	})

	t.Run("Invalid field reports the failure", func(t *testing.T) {
		body := `{"__type": "Event", "source.ip": "not-an-ip"}`
		recorder := doRequest(a, http.MethodPost, "/records/validate", body)
		assert.Equal(t, http.StatusOK, recorder.Code)

		response := decodeBody(t, recorder)
		assert.Equal(t, false, response["valid"])
		assert.Contains(t, response["error"], "source.ip")
	})

	t.Run("Malformed body is a 400", func(t *testing.T) {
		recorder := doRequest(a, http.MethodPost, "/records/validate", "not json")
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestHashRecord(t *testing.T) {
	a := newTestAPI(t)

	t.Run("Hash is deterministic", func(t *testing.T) {
		body := `{"record": {"__type": "Event", "source.ip": "192.0.2.1"}}`

		first := doRequest(a, http.MethodPost, "/records/hash", body)
		assert.Equal(t, http.StatusOK, first.Code)
		second := doRequest(a, http.MethodPost, "/records/hash", body)
		assert.Equal(t, http.StatusOK, second.Code)

		assert.Equal(t, decodeBody(t, first)["hash"], decodeBody(t, second)["hash"])
		assert.Len(t, decodeBody(t, first)["hash"], 64)
	})

	t.Run("Filtered keys do not affect the hash", func(t *testing.T) {
		withRaw := `{"record": {"__type": "Event", "source.ip": "192.0.2.1", "raw": "cGF5bG9hZA=="}, "filter_keys": ["raw"]}`
		withoutRaw := `{"record": {"__type": "Event", "source.ip": "192.0.2.1"}, "filter_keys": ["raw"]}`

		first := doRequest(a, http.MethodPost, "/records/hash", withRaw)
		second := doRequest(a, http.MethodPost, "/records/hash", withoutRaw)
		assert.Equal(t, decodeBody(t, first)["hash"], decodeBody(t, second)["hash"])
	})

	t.Run("Unrecognized filter mode is a 400", func(t *testing.T) {
		body := `{"record": {"__type": "Event", "source.ip": "192.0.2.1"}, "filter_mode": "greylist"}`
		recorder := doRequest(a, http.MethodPost, "/records/hash", body)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestConfigEndpoints(t *testing.T) {
	a := newTestAPI(t)

	t.Run("Configuration round trip", func(t *testing.T) {
		recorder := doRequest(a, http.MethodPut, "/config", `{"system": {"id": "test"}}`)
		assert.Equal(t, http.StatusOK, recorder.Code)

		recorder = doRequest(a, http.MethodGet, "/config", "")
		assert.Equal(t, http.StatusOK, recorder.Code)

		system := decodeBody(t, recorder)["system"].(map[string]interface{})
		assert.Equal(t, "test", system["id"])
	})

	t.Run("Malformed configuration is a 400", func(t *testing.T) {
		recorder := doRequest(a, http.MethodPut, "/config", `[1, 2, 3]`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
