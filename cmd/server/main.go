package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bookkeeping/internal/config"
	"bookkeeping/internal/db"
	"bookkeeping/internal/handlers"
	"bookkeeping/internal/services"
	"bookkeeping/internal/store"
	"bookkeeping/internal/subledgers"
	"bookkeeping/internal/websocket"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	accountsCfg := subledgers.DefaultAccountsConfig()
	if cfg.AccountsConfigPath != "" {
		accountsCfg, err = subledgers.LoadAccountsConfig(cfg.AccountsConfigPath)
		if err != nil {
			log.Fatalf("failed to load accounts config: %v", err)
		}
	}
	registry, err := subledgers.New(accountsCfg)
	if err != nil {
		log.Fatalf("failed to build subledger registry: %v", err)
	}

	users := store.NewUserStore(database)
	accounts := store.NewAccountStore(database)
	entities := store.NewEntityStore(database)
	transactions := store.NewTransactionStore(database)
	ledger := store.NewLedgerStore(database)
	entries := store.NewEntryStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()
	importer := services.NewEntryService(txRunner, accounts, entities, transactions, ledger, entries, registry, hub)

	handler := handlers.New(txRunner, cfg, users, accounts, entities, transactions, ledger, importer, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("bookkeeping API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
