package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/BOREAL/internal/config"
	"github.com/copyleftdev/BOREAL/internal/logging"
	"github.com/copyleftdev/BOREAL/internal/optimization/space"
)

// testConfig creates a test configuration with default values
func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{
		Environment: "test",
	}

	// Set up HTTP config
	cfg.HTTP.Port = 8080
	cfg.HTTP.ReadTimeout = 30 * time.Second
	cfg.HTTP.WriteTimeout = 30 * time.Second
	cfg.HTTP.IdleTimeout = 120 * time.Second
	cfg.HTTP.ShutdownTimeout = 30 * time.Second

	// Set up logging
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "console"
	cfg.Logging.Output = "stdout"

	// Set up search defaults
	cfg.Search.Seed = 1
	cfg.Search.PlateauWalkSteps = 10
	cfg.Search.MaxIterations = 50
	cfg.Search.DefaultNumPoints = 10
	cfg.Search.IDWPower = 2
	cfg.Search.EIXi = 0.01

	return cfg
}

// testLogger creates a test logger
func testLogger(t *testing.T) *logging.Logger {
	logger, err := logging.NewLogger(&logging.Config{
		Level:  "debug",
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return logger
}

func seedOf(v int64) *int64 {
	return &v
}

func testParameters() []space.Parameter {
	return []space.Parameter{
		{Name: "lr", Type: space.Continuous, Lower: 0.001, Upper: 1},
		{Name: "depth", Type: space.Integer, Lower: 1, Upper: 16},
	}
}

func TestNewServer(t *testing.T) {
	logger := testLogger(t)
	cfg := testConfig(t)

	srv := NewServer(cfg, logger)
	assert.NotNil(t, srv, "Server should be created")
}

func TestRegisterRoutes(t *testing.T) {
	logger := testLogger(t)
	cfg := testConfig(t)

	srv := NewServer(cfg, logger)
	r := chi.NewRouter()
	srv.RegisterRoutes(r)

	tests := []struct {
		method      string
		path        string
		shouldExist bool
	}{
		{"POST", "/api/v1/suggest", true},
		{"POST", "/rpc", true},
		{"GET", "/healthz", false}, // Not registered by server package
		{"GET", "/nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			// A 404 would mean the route doesn't exist
			if tt.shouldExist && rr.Code == http.StatusNotFound {
				t.Errorf("Route %s %s should exist but returned 404", tt.method, tt.path)
			}
		})
	}
}

func TestSuggestEndpoint(t *testing.T) {
	srv := NewServer(testConfig(t), testLogger(t))
	r := chi.NewRouter()
	srv.RegisterRoutes(r)

	reqBody := suggestRequest{
		Parameters: testParameters(),
		History: []historyEntry{
			{Values: []float64{0.1, 4}, Cost: 2.5},
			{Values: []float64{0.5, 8}, Cost: 1.2},
			{Values: []float64{0.9, 2}, Cost: 4.0},
		},
		NumPoints: 6,
		Seed:      seedOf(42),
	}
	body, err := json.Marshal(reqBody)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/suggest", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp suggestResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Challengers, 6)

	for _, c := range resp.Challengers {
		assert.Len(t, c.Values, 2)
		assert.NotEmpty(t, c.Origin)
		assert.GreaterOrEqual(t, c.Values[0], 0.001)
		assert.LessOrEqual(t, c.Values[0], 1.0)
		assert.GreaterOrEqual(t, c.Values[1], 1.0)
		assert.LessOrEqual(t, c.Values[1], 16.0)
	}
}

func TestSuggestEndpointEmptyHistory(t *testing.T) {
	srv := NewServer(testConfig(t), testLogger(t))
	r := chi.NewRouter()
	srv.RegisterRoutes(r)

	body, err := json.Marshal(suggestRequest{
		Parameters: testParameters(),
		NumPoints:  4,
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/suggest", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp suggestResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Len(t, resp.Challengers, 4)
}

func TestSuggestEndpointIsSeedReproducible(t *testing.T) {
	srv := NewServer(testConfig(t), testLogger(t))
	r := chi.NewRouter()
	srv.RegisterRoutes(r)

	call := func() suggestResponse {
		body, err := json.Marshal(suggestRequest{
			Parameters: testParameters(),
			History: []historyEntry{
				{Values: []float64{0.1, 4}, Cost: 2.5},
				{Values: []float64{0.5, 8}, Cost: 1.2},
			},
			NumPoints: 5,
			Seed:      seedOf(1234),
		})
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/api/v1/suggest", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var resp suggestResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		return resp
	}

	assert.Equal(t, call(), call(), "equal seeds must produce identical suggestions")
}

func TestSuggestEndpointHonorsSeedZero(t *testing.T) {
	srv := NewServer(testConfig(t), testLogger(t))
	r := chi.NewRouter()
	srv.RegisterRoutes(r)

	call := func(s *int64) suggestResponse {
		body, err := json.Marshal(suggestRequest{
			Parameters: testParameters(),
			NumPoints:  5,
			Seed:       s,
		})
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/api/v1/suggest", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var resp suggestResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		return resp
	}

	// Seed 0 is a real seed, not an absent one: it must reproduce itself and
	// must not collapse into the configured default.
	assert.Equal(t, call(seedOf(0)), call(seedOf(0)))
	assert.NotEqual(t, call(seedOf(0)), call(nil))
}

func TestSuggestEndpointRejectsBadRequests(t *testing.T) {
	srv := NewServer(testConfig(t), testLogger(t))
	r := chi.NewRouter()
	srv.RegisterRoutes(r)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", "{not json"},
		{"empty space", `{"parameters": []}`},
		{"inverted bounds", `{"parameters": [{"name":"x","type":"continuous","lower":2,"upper":1}]}`},
		{"history dimension mismatch", `{"parameters": [{"name":"x","type":"continuous","lower":0,"upper":1}], "history": [{"values":[0.5,0.5],"cost":1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/suggest", bytes.NewReader([]byte(tt.body)))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestSuggestRPC(t *testing.T) {
	srv := NewServer(testConfig(t), testLogger(t))
	r := chi.NewRouter()
	srv.RegisterRoutes(r)

	rpcBody := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      "1",
		"method":  "suggest.challengers",
		"params": []interface{}{map[string]interface{}{
			"parameters": testParameters(),
			"num_points": 3,
		}},
	}
	body, err := json.Marshal(rpcBody)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/rpc", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "2.0", response["jsonrpc"])
	assert.Equal(t, "1", response["id"])

	result, ok := response["result"].(map[string]interface{})
	require.True(t, ok, "response should contain a result object")
	challengers, ok := result["challengers"].([]interface{})
	require.True(t, ok, "result should contain challengers")
	assert.Len(t, challengers, 3)
}

func TestSuggestRPCMissingParams(t *testing.T) {
	srv := NewServer(testConfig(t), testLogger(t))
	r := chi.NewRouter()
	srv.RegisterRoutes(r)

	body := []byte(`{"jsonrpc":"2.0","id":"1","method":"suggest.challengers","params":[]}`)
	req := httptest.NewRequest("POST", "/rpc", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	errObj, ok := response["error"].(map[string]interface{})
	require.True(t, ok, "response should contain error object")
	assert.Equal(t, float64(-32000), errObj["code"])
}

func TestRPCMethodNotFound(t *testing.T) {
	srv := NewServer(testConfig(t), testLogger(t))
	r := chi.NewRouter()
	srv.RegisterRoutes(r)

	body := []byte(`{"jsonrpc":"2.0","id":"1","method":"unknown.method","params":[]}`)
	req := httptest.NewRequest("POST", "/rpc", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	errObj, ok := response["error"].(map[string]interface{})
	require.True(t, ok, "response should contain error object")
	assert.Equal(t, float64(-32601), errObj["code"])
}

func TestRespondWithError(t *testing.T) {
	srv := NewServer(testConfig(t), testLogger(t))

	tests := []struct {
		name       string
		code       int
		message    string
		id         interface{}
		expectedID interface{}
		expectCode int
	}{
		{
			name:       "valid error response",
			code:       http.StatusBadRequest,
			message:    "invalid input",
			id:         "123",
			expectedID: "123",
			expectCode: http.StatusOK, // Because respondWithError writes 200 with error in body
		},
		{
			name:       "nil id",
			code:       http.StatusInternalServerError,
			message:    "server error",
			id:         nil,
			expectedID: nil,
			expectCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			srv.respondWithError(rr, tt.code, tt.message, tt.id)

			assert.Equal(t, tt.expectCode, rr.Code, "status code should match")

			var response map[string]interface{}
			err := json.NewDecoder(rr.Body).Decode(&response)
			assert.NoError(t, err, "should decode response body")

			errObj, ok := response["error"].(map[string]interface{})
			assert.True(t, ok, "response should contain error object")
			assert.Equal(t, float64(tt.code), errObj["code"], "error code should match")
			assert.Equal(t, tt.message, errObj["message"], "error message should match")

			assert.Equal(t, tt.expectedID, response["id"], "response ID should match")
		})
	}
}
