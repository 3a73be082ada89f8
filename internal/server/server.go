package server

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/copyleftdev/BOREAL/internal/config"
	"github.com/copyleftdev/BOREAL/internal/errors"
	"github.com/copyleftdev/BOREAL/internal/logging"
	"github.com/copyleftdev/BOREAL/internal/optimization"
	"github.com/copyleftdev/BOREAL/internal/optimization/acquisition"
	"github.com/copyleftdev/BOREAL/internal/optimization/maximizer"
	"github.com/copyleftdev/BOREAL/internal/optimization/runhistory"
	"github.com/copyleftdev/BOREAL/internal/optimization/space"
)

// Logger defines the logging interface used by the server.
// This allows us to be flexible with our logging implementation.
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

var (
	suggestionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boreal_suggestions_total",
		Help: "Number of suggestion requests served.",
	})
	challengersReturnedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boreal_challengers_returned_total",
		Help: "Number of challenger configurations returned to callers.",
	})
)

// Server exposes the acquisition maximizer as a suggestion service: callers
// post their search space and evaluation history and receive the next
// challengers to try.
type Server struct {
	cfg    *config.Config
	logger Logger
}

// NewServer creates a new server instance with the given config and logger.
func NewServer(cfg *config.Config, logger Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/suggest", s.handleSuggest)
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

// suggestRequest is the wire form of a suggestion request.
type suggestRequest struct {
	// Parameters defines the search space.
	Parameters []space.Parameter `json:"parameters"`
	// History lists completed evaluations: coordinate vector plus cost.
	History []historyEntry `json:"history,omitempty"`
	// NumPoints is how many challengers to return; the server default
	// applies when omitted.
	NumPoints int `json:"num_points,omitempty"`
	// Seed overrides the configured random seed when present. A pointer so
	// that an explicit seed of 0 is distinguishable from an absent one.
	Seed *int64 `json:"seed,omitempty"`
}

type historyEntry struct {
	Values []float64 `json:"values"`
	Cost   float64   `json:"cost"`
}

type challengerResponse struct {
	Values []float64 `json:"values"`
	Origin string    `json:"origin"`
}

type suggestResponse struct {
	Challengers []challengerResponse `json:"challengers"`
}

// handleSuggest handles POST /api/v1/suggest.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	resp, err := s.suggest(&req)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		// Optimization errors are validation failures in the request;
		// anything else is the server's own fault.
		status := http.StatusInternalServerError
		if _, ok := optimization.IsOptimizationError(err); ok {
			status = http.StatusBadRequest
		}
		s.logger.Error("Suggestion failed", map[string]interface{}{
			"error":  err.Error(),
			"status": status,
		})
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// suggest runs one acquisition-maximization iteration for the request.
func (s *Server) suggest(req *suggestRequest) (*suggestResponse, error) {
	numPoints := req.NumPoints
	if numPoints <= 0 {
		numPoints = s.cfg.Search.DefaultNumPoints
	}
	seed := s.cfg.Search.Seed
	if req.Seed != nil {
		seed = *req.Seed
	}

	sp, err := space.New(req.Parameters, seed)
	if err != nil {
		return nil, err
	}
	for _, e := range req.History {
		if len(e.Values) != sp.Dim() {
			return nil, optimization.NewErrorf("history entry has %d values, expected %d", len(e.Values), sp.Dim()).WithComponent("server").WithOperation("suggest")
		}
	}

	hist := runhistory.New()
	for _, e := range req.History {
		hist.Add(optimization.NewConfiguration(e.Values), e.Cost)
	}

	acq, err := s.acquisitionFor(hist)
	if err != nil {
		return nil, err
	}

	localCfg := maximizer.LocalSearchConfig{
		MaxIterations:    s.cfg.Search.MaxIterations,
		PlateauWalkSteps: s.cfg.Search.PlateauWalkSteps,
	}
	rng := rand.New(rand.NewSource(seed))
	search := maximizer.NewInterleavedSearch(acq, sp, rng, s.logger.WithFields(map[string]interface{}{
		"component": "maximizer",
	}), localCfg)

	budget := optimization.NewSearchBudget()
	seq, err := search.Maximize(hist, budget, numPoints)
	if err != nil {
		return nil, err
	}

	resp := &suggestResponse{}
	for len(resp.Challengers) < numPoints {
		cand, ok := seq.Next()
		if !ok {
			break
		}
		resp.Challengers = append(resp.Challengers, challengerResponse{
			Values: cand.Config.Values(),
			Origin: cand.Origin,
		})
	}
	budget.SubmittedChallengers += len(resp.Challengers)

	suggestionsTotal.Inc()
	challengersReturnedTotal.Add(float64(len(resp.Challengers)))
	s.logger.Info("Suggestion served", map[string]interface{}{
		"num_points":  numPoints,
		"history":     hist.Len(),
		"challengers": len(resp.Challengers),
		"elapsed":     budget.Elapsed().String(),
	})
	return resp, nil
}

// acquisitionFor builds the expected-improvement acquisition over the
// request's history. Deployments with their own surrogate front the maximizer
// with their own AcquisitionFunction instead; the inverse-distance predictor
// keeps the service usable on its own without fitting any model.
func (s *Server) acquisitionFor(hist *runhistory.RunHistory) (optimization.AcquisitionFunction, error) {
	if hist.Empty() {
		return acquisition.NewExpectedImprovement(acquisition.Constant{Sigma: 1}, 0, s.cfg.Search.EIXi), nil
	}

	records := hist.Records()
	costs := make([]float64, len(records))
	for i, rec := range records {
		costs[i] = rec.Cost
	}
	predictor, err := acquisition.NewInverseDistance(hist.Configurations(), costs, s.cfg.Search.IDWPower)
	if err != nil {
		return nil, optimization.WrapError(err, "building inverse distance predictor")
	}
	predictor.SetLogger(logging.NewZapLogger(s.logger.WithFields(map[string]interface{}{
		"component": "predictor",
	})))
	return acquisition.NewExpectedImprovement(predictor, hist.BestCost(), s.cfg.Search.EIXi), nil
}

// handleJSONRPC handles JSON-RPC 2.0 requests.
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request struct {
		JSONRPC string        `json:"jsonrpc"`
		ID      interface{}   `json:"id"`
		Method  string        `json:"method"`
		Params  []interface{} `json:"params,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondWithError(w, -32700, "Parse error", nil)
		return
	}

	// Validate JSON-RPC 2.0 request
	if request.JSONRPC != "2.0" {
		s.respondWithError(w, -32600, "Invalid Request", nil)
		return
	}

	var result interface{}
	var err error

	switch request.Method {
	case "suggest.challengers":
		result, err = s.handleSuggestRPC(request.Params)
	default:
		s.respondWithError(w, -32601, "Method not found", request.ID)
		return
	}

	if err != nil {
		rpcErr := errors.Wrap(err, "rpc method failed").WithComponent("server").WithOperation(request.Method)
		s.logger.Error("RPC request failed", map[string]interface{}{
			"error": rpcErr.Error(),
			"stack": rpcErr.StackTrace(),
		})
		s.respondWithError(w, -32000, "Server error", request.ID)
		return
	}

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      request.ID,
		"result":  result,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleSuggestRPC handles the suggest.challengers JSON-RPC method. The first
// parameter is the same object POST /api/v1/suggest accepts.
func (s *Server) handleSuggestRPC(params []interface{}) (interface{}, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("missing required parameters")
	}

	paramMap, ok := params[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid parameter format, expected object")
	}

	// Round-trip through JSON to reuse the typed request decoding.
	raw, err := json.Marshal(paramMap)
	if err != nil {
		return nil, err
	}
	var req suggestRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}

	return s.suggest(&req)
}

// respondWithError sends a JSON-RPC 2.0 error response.
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, id interface{}) {
	s.logger.Error("Request error", map[string]interface{}{
		"status":  code,
		"message": message,
	})

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
		"id": id,
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
