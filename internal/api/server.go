package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"suiswap/internal/model"
	"suiswap/internal/pool"
	"suiswap/internal/sui"
)

// Facade is the pool client surface served over HTTP.
type Facade interface {
	Overview(ctx context.Context) (model.PoolOverview, error)
	PoolState(ctx context.Context) (model.PoolSnapshot, error)
	Fees(ctx context.Context) (model.Fees, error)
	QuoteSwap(ctx context.Context, dir pool.Direction, payAmount string) model.Quote
	QuoteLP(ctx context.Context, suiAmount, usdcAmount string) model.LPQuote
	Balances(ctx context.Context, owner sui.Address) (model.Balances, error)
	Swap(ctx context.Context, dir pool.Direction, payAmount string) (model.TxResult, error)
	AddLiquidity(ctx context.Context, suiAmount, usdcAmount string) (model.TxResult, error)
	RemoveLiquidity(ctx context.Context, lpAmount string) (model.TxResult, error)
	CollectFees(ctx context.Context) (model.TxResult, error)
}

// Server provides the HTTP API over the pool facade. Signed operations
// require a bearer token; without one they are disabled.
type Server struct {
	facade Facade
	token  string
	logger *zap.Logger
	http   *http.Server
}

type swapRequest struct {
	Direction string `json:"direction"`
	Amount    string `json:"amount"`
}

type addLiquidityRequest struct {
	Sui  string `json:"sui"`
	Usdc string `json:"usdc"`
}

type removeLiquidityRequest struct {
	LP string `json:"lp"`
}

// NewServer creates a new HTTP server listening on addr. token guards the
// signed operations; an empty token disables them.
func NewServer(facade Facade, addr, token string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{facade: facade, token: token, logger: logger}

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	// Reads
	r.HandleFunc("/api/v1/pool", s.handleGetPool).Methods("GET")
	r.HandleFunc("/api/v1/fees", s.handleGetFees).Methods("GET")
	r.HandleFunc("/api/v1/quote", s.handleGetQuote).Methods("GET")
	r.HandleFunc("/api/v1/quote/lp", s.handleGetLPQuote).Methods("GET")
	r.HandleFunc("/api/v1/balances/{address}", s.handleGetBalances).Methods("GET")

	// Signed operations
	r.Handle("/api/v1/swap", s.authorized(s.handleSwap)).Methods("POST")
	r.Handle("/api/v1/liquidity/add", s.authorized(s.handleAddLiquidity)).Methods("POST")
	r.Handle("/api/v1/liquidity/remove", s.authorized(s.handleRemoveLiquidity)).Methods("POST")
	r.Handle("/api/v1/fees/collect", s.authorized(s.handleCollectFees)).Methods("POST")

	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	return r
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
	return s.http.ListenAndServe()
}

// Stop stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// authorized rejects requests without the configured bearer token. These
// routes spend the server wallet.
func (s *Server) authorized(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			http.Error(w, "signed operations are disabled", http.StatusForbidden)
			return
		}
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
			s.logger.Warn("unauthorized request", zap.String("path", r.URL.Path), zap.String("remote", r.RemoteAddr))
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeError answers 400 for client-side validation failures and 502 for chain failures.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, pool.ErrValidation) {
		status = http.StatusBadRequest
	} else {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	http.Error(w, err.Error(), status)
}

func (s *Server) handleGetPool(w http.ResponseWriter, r *http.Request) {
	overview, err := s.facade.Overview(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := s.facade.PoolState(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]interface{}{
		"overview": overview,
		"raw":      snap,
	})
}

func (s *Server) handleGetFees(w http.ResponseWriter, r *http.Request) {
	fees, err := s.facade.Fees(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, fees)
}

// handleGetQuote never fails on bad amounts; they quote as zero.
func (s *Server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	dir, err := pool.ParseDirection(r.URL.Query().Get("direction"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.facade.QuoteSwap(r.Context(), dir, r.URL.Query().Get("amount")))
}

func (s *Server) handleGetLPQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, s.facade.QuoteLP(r.Context(), q.Get("sui"), q.Get("usdc")))
}

func (s *Server) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	owner, err := sui.ParseAddress(mux.Vars(r)["address"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	balances, err := s.facade.Balances(r.Context(), owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, balances)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if !decodeBody(w, r, &req) {
		return
	}
	dir, err := pool.ParseDirection(req.Direction)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.facade.Swap(r.Context(), dir, req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleAddLiquidity(w http.ResponseWriter, r *http.Request) {
	var req addLiquidityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.facade.AddLiquidity(r.Context(), req.Sui, req.Usdc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleRemoveLiquidity(w http.ResponseWriter, r *http.Request) {
	var req removeLiquidityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.facade.RemoveLiquidity(r.Context(), req.LP)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleCollectFees(w http.ResponseWriter, r *http.Request) {
	res, err := s.facade.CollectFees(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// handleHealth returns the health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}
