package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"simvest/internal/engine"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	log  *slog.Logger
	game *engine.Coordinator
	mux  *chi.Mux
}

func New(logger *slog.Logger, coordinator *engine.Coordinator) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		log:  logger,
		game: coordinator,
		mux:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/companies", s.handleCompaniesList)
		r.Get("/companies/{id}", s.handleCompanyDetail)
		r.Post("/companies/{id}/disqualify", s.handleDisqualify)
		r.Post("/investments", s.handleInvest)
		r.Post("/loans", s.handleTakeLoan)
		r.Get("/transactions", s.handleTransactionsList)
	})
}

func (s *Server) handleCompaniesList(w http.ResponseWriter, r *http.Request) {
	companies, err := s.game.ListCompanies(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": companies})
}

func (s *Server) handleCompanyDetail(w http.ResponseWriter, r *http.Request) {
	company, err := s.game.GetCompany(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (s *Server) handleDisqualify(w http.ResponseWriter, r *http.Request) {
	if err := s.game.Disqualify(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleInvest(w http.ResponseWriter, r *http.Request) {
	var in struct {
		BuyerID  string  `json:"buyer_id"`
		SellerID string  `json:"seller_id"`
		Amount   float64 `json:"amount"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be > 0")
		return
	}
	investment, err := s.game.Invest(r.Context(), strings.TrimSpace(in.BuyerID), strings.TrimSpace(in.SellerID), in.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"investment": investment})
}

func (s *Server) handleTakeLoan(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CompanyID string  `json:"company_id"`
		Amount    float64 `json:"amount"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be > 0")
		return
	}
	transaction, err := s.game.TakeLoan(r.Context(), strings.TrimSpace(in.CompanyID), in.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transaction": transaction})
}

func (s *Server) handleTransactionsList(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	transactions, err := s.game.ListTransactions(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": transactions})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrCompanyNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrInsufficientFunds),
		errors.Is(err, engine.ErrInCooldown),
		errors.Is(err, engine.ErrAlreadyLoaned),
		errors.Is(err, engine.ErrSelfInvestment):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrDisqualified):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
