package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"swapflow/internal/domain"
	"swapflow/internal/infra"
	"swapflow/internal/pipeline"
	"swapflow/internal/stream"
	"swapflow/internal/stream/ws"
)

// Server is the thin HTTP surface in front of the pipeline: order
// submission, the status-stream upgrade endpoint, CORS, and static
// assets. It owns no order state; everything lives in the runner and
// the registry it is handed.
type Server struct {
	cfg      *infra.Config
	runner   *pipeline.Runner
	registry *stream.Registry
	limiter  *infra.RateLimiter
}

// New wires the HTTP surface to its collaborators.
func New(cfg *infra.Config, runner *pipeline.Runner, registry *stream.Registry, limiter *infra.RateLimiter) *Server {
	return &Server{cfg: cfg, runner: runner, registry: registry, limiter: limiter}
}

// Handler builds the full route table wrapped in CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orders", s.handleSubmit)
	mux.HandleFunc("/ws", s.handleStream)

	if s.cfg.Server.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.cfg.Server.StaticDir)))
	} else {
		// Default mux behavior already rejects unknown paths, but an
		// explicit root handler keeps the 404 contract visible.
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
	}

	return withCORS(mux)
}

// Run serves until ctx is canceled, then shuts down gracefully.
// In-flight pipeline runs are not canceled; only the listener stops.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", slog.String("addr", s.cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type submitRequest struct {
	Type              string  `json:"type"`
	TokenIn           string  `json:"tokenIn"`
	TokenOut          string  `json:"tokenOut"`
	AmountIn          float64 `json:"amountIn"`
	SlippageTolerance float64 `json:"slippageTolerance"`
}

type submitResponse struct {
	OrderID   string `json:"orderId"`
	StatusURL string `json:"statusUrl"`
}

// handleSubmit accepts a market order, starts exactly one pipeline run
// without blocking on its completion, and returns the order id plus
// the streaming URL.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.limiter != nil && !s.limiter.TryAcquire() {
		respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if err := validateSubmit(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	order := domain.Order{
		ID:                uuid.NewString(),
		TokenIn:           req.TokenIn,
		TokenOut:          req.TokenOut,
		AmountIn:          req.AmountIn,
		SlippageTolerance: req.SlippageTolerance,
	}

	// The run outlives this request: detach it from the request
	// context so returning 202 never cancels the pipeline.
	if err := s.runner.Start(context.Background(), order); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}

	slog.Info("order accepted",
		slog.String("order_id", order.ID),
		slog.String("token_in", order.TokenIn),
		slog.String("token_out", order.TokenOut),
		slog.Float64("amount_in", order.AmountIn))

	respondJSON(w, http.StatusAccepted, submitResponse{
		OrderID:   order.ID,
		StatusURL: "/ws?orderId=" + order.ID,
	})
}

func validateSubmit(req submitRequest) error {
	if req.Type != "market" {
		return &domain.ValidationError{Field: "type", Reason: `must be "market"`}
	}
	if req.TokenIn == "" {
		return &domain.ValidationError{Field: "tokenIn", Reason: "required"}
	}
	if req.TokenOut == "" {
		return &domain.ValidationError{Field: "tokenOut", Reason: "required"}
	}
	if req.TokenIn == req.TokenOut {
		return &domain.ValidationError{Field: "tokenOut", Reason: "must differ from tokenIn"}
	}
	if req.AmountIn <= 0 {
		return &domain.ValidationError{Field: "amountIn", Reason: "must be positive"}
	}
	if req.SlippageTolerance < 0 || req.SlippageTolerance >= 1 {
		return &domain.ValidationError{Field: "slippageTolerance", Reason: "must be a fraction in [0,1)"}
	}
	return nil
}

// handleStream upgrades the connection and registers it as the single
// subscriber for the order. The handler goroutine then doubles as the
// connection's reader, draining bytes until the peer goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("orderId")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "orderId query parameter is required")
		return
	}

	conn, err := ws.Upgrade(w, r)
	if err != nil {
		var herr *ws.HandshakeError
		if errors.As(err, &herr) {
			respondError(w, http.StatusBadRequest, herr.Error())
			return
		}
		// The connection was hijacked and is already torn down; the
		// ResponseWriter is no longer usable.
		slog.Warn("websocket handshake failed",
			slog.String("order_id", orderID),
			slog.Any("error", err))
		return
	}

	token := s.registry.Register(orderID, conn.WriteMessage)
	slog.Info("subscriber attached", slog.String("order_id", orderID))

	conn.WaitClose()

	s.registry.Release(orderID, token)
	conn.Close()
	slog.Info("subscriber detached", slog.String("order_id", orderID))
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("write response", slog.Any("error", err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// withCORS applies a permissive CORS policy; the streaming UI is
// expected to be served from anywhere during development.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
