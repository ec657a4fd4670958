package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/trungthanh-tran/solana-trade-simulator/internal/config"
	"github.com/trungthanh-tran/solana-trade-simulator/internal/trader"
	"go.uber.org/zap"
)

// APIServer exposes the trade service over HTTP.
type APIServer struct {
	server  *http.Server
	service *trader.Service
	logger  *zap.Logger
}

// tradeRequest is the JSON body shared by buy, sell and sellall.
// Amount is ignored by sellall; a zero SlippageBps falls back to the
// configured default.
type tradeRequest struct {
	Mint        string  `json:"mint"`
	Amount      float64 `json:"amount"`
	SlippageBps int     `json:"slippage_bps"`
}

// errorResponse carries the error kind alongside the cause so clients can
// branch without parsing the message.
type errorResponse struct {
	ErrorKind string `json:"error_kind"`
	Message   string `json:"message"`
}

// NewAPIServer creates a new APIServer.
func NewAPIServer(cfg *config.Server, service *trader.Service, logger *zap.Logger) *APIServer {
	s := &APIServer{
		service: service,
		logger:  logger.Named("api-server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /trades/buy", s.buyHandler)
	mux.HandleFunc("POST /trades/sell", s.sellHandler)
	mux.HandleFunc("POST /trades/sellall", s.sellAllHandler)
	mux.HandleFunc("GET /pnl/{mint}", s.pnlHandler)
	mux.HandleFunc("GET /health", s.healthHandler)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}
	return s
}

// Start runs the HTTP server in a new goroutine.
func (s *APIServer) Start() {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *APIServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}

func (s *APIServer) buyHandler(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, trader.KindInvalidInput, err)
		return
	}
	result, err := s.service.Buy(r.Context(), req.Mint, req.Amount, req.SlippageBps)
	if err != nil {
		s.writeError(w, trader.KindOf(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *APIServer) sellHandler(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, trader.KindInvalidInput, err)
		return
	}
	result, err := s.service.Sell(r.Context(), req.Mint, req.Amount, req.SlippageBps)
	if err != nil {
		s.writeError(w, trader.KindOf(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *APIServer) sellAllHandler(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, trader.KindInvalidInput, err)
		return
	}
	result, err := s.service.SellAll(r.Context(), req.Mint, req.SlippageBps)
	if err != nil {
		s.writeError(w, trader.KindOf(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *APIServer) pnlHandler(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.PnL(r.Context(), r.PathValue("mint"))
	if err != nil {
		s.writeError(w, trader.KindOf(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *APIServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (s *APIServer) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (s *APIServer) writeError(w http.ResponseWriter, kind trader.ErrorKind, err error) {
	status := http.StatusInternalServerError
	switch kind {
	case trader.KindInvalidInput:
		status = http.StatusBadRequest
	case trader.KindNoHoldings, trader.KindNoTrades:
		status = http.StatusNotFound
	case trader.KindQuoteUnavailable:
		status = http.StatusBadGateway
	case trader.KindStorageFailure:
		status = http.StatusInternalServerError
	}
	s.writeJSON(w, status, errorResponse{ErrorKind: string(kind), Message: err.Error()})
}
