package handlers

import (
	"net/http"

	"bookkeeping/internal/config"
	"bookkeeping/internal/db"
	"bookkeeping/internal/middleware"
	"bookkeeping/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	txRunner     db.TxRunner
	cfg          config.Config
	users        UserStore
	accounts     AccountStore
	entities     EntityStore
	transactions TransactionStore
	ledger       LedgerStore
	importer     ImportService
	hub          *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, accounts AccountStore, entities EntityStore, transactions TransactionStore, ledger LedgerStore, importer ImportService, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:     txRunner,
		cfg:          cfg,
		users:        users,
		accounts:     accounts,
		entities:     entities,
		transactions: transactions,
		ledger:       ledger,
		importer:     importer,
		hub:          hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})
	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/imports", h.Import)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/accounts", h.ListAccounts)
	router.With(middleware.Auth(h.cfg.JWTSecret), middleware.RequireStaff(h.users)).Post("/accounts", h.CreateAccount)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/entities", h.ListEntities)
	router.With(middleware.Auth(h.cfg.JWTSecret), middleware.RequireStaff(h.users)).Post("/entities", h.CreateEntity)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/transactions", h.ListTransactions)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Get("/transactions/{id}", h.GetTransaction)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Put("/transactions/{id}/note", h.UpdateTransactionNote)
	router.Get("/ws/entries", h.WSEntries)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
