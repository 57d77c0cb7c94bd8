package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/anvarov/backoffice/internal/config"
	"github.com/anvarov/backoffice/internal/database"
	"github.com/anvarov/backoffice/internal/events"
	"github.com/anvarov/backoffice/internal/metrics"
)

type server struct {
	db      *sql.DB
	cfg     *config.Config
	events  *events.Publisher
	metrics *metrics.ServerMetrics
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}
	if cfg.Server.APIKey == "" {
		log.Fatalf("API_KEY must be set")
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database successfully")

	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		log.Fatalf("Create upload dir: %v", err)
	}

	publisher := events.NewPublisher(cfg.Kafka)
	defer publisher.Close()
	if publisher.Enabled() {
		log.Printf("Order events enabled, topic %s", cfg.Kafka.Topic)
	}

	s := &server{
		db:      db,
		cfg:     cfg,
		events:  publisher,
		metrics: metrics.NewServerMetrics(),
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      s.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
	})
	mux.Handle("/metrics", metrics.Handler())

	protected := func(name string, h http.HandlerFunc) {
		mux.Handle("/"+name, s.metrics.Instrument(name, s.requireAPIKey(h)))
	}

	protected("products", s.handleProducts)
	protected("categories", s.handleCategories)
	protected("customers", s.handleCustomers)
	protected("orders", s.handleOrders)
	protected("orders/export", s.handleOrdersExport)
	protected("cart", s.handleCart)
	protected("cart/merge", s.handleCartMerge)
	protected("upload", s.handleUpload)
	protected("dashboard/recent-customers", s.handleRecentCustomers)
	protected("dashboard/top-products", s.handleTopProducts)

	return mux
}
