package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"smarttender/db"
	"smarttender/db/migrations"
	"smarttender/internal/auth"
	"smarttender/internal/config"
	"smarttender/internal/evaluation"
	"smarttender/internal/files"
	"smarttender/internal/handlers"
	"smarttender/internal/logger"
	"smarttender/internal/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	dbConn, err := sqlx.Connect("postgres", cfg.PostgresConn)
	if err != nil {
		log.Fatal("cannot connect to database", zap.Error(err))
	}
	defer dbConn.Close()

	if err := migrations.Run(dbConn.DB); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}

	fileStore, err := files.NewMinioStore(cfg.Minio)
	if err != nil {
		log.Fatal("cannot create file store", zap.Error(err))
	}
	if err := fileStore.EnsureBucket(context.Background()); err != nil {
		log.Fatal("cannot ensure bucket", zap.Error(err))
	}

	store := db.NewStorage(dbConn)
	engine := evaluation.New(store)
	mailer := notify.NewEmailJSClient(cfg.EmailJS)
	h := handlers.NewHandler(store, engine, fileStore, mailer, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(auth.Middleware(cfg.JWTSecret))

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)

		// tenders
		r.Get("/tenders", h.GetTendersHandler)
		r.Get("/tenders/id/{tenderId}", h.GetTenderByIDHandler)
		r.Get("/tenders/email/{email}", h.GetTendersByEmailHandler)
		r.Get("/tenders/{tenderId}/export", h.ExportTenderCSVHandler)

		// bids
		r.Post("/bids", h.CreateBidHandler)
		r.Get("/bids", h.GetBidsHandler)
		r.Get("/bids/id/{bidId}", h.GetBidByIDHandler)
		r.Get("/bids/email/{email}", h.GetBidsByEmailHandler)
		r.Get("/bids/tender/{tenderId}", h.GetBidsForTenderHandler)
		r.Get("/bids/{bidId}/evaluation", h.GetBidEvaluationHandler)

		// notifications
		r.Get("/notifications", h.ListNotificationsHandler)
		r.Put("/notifications/mark-read", h.MarkNotificationsReadHandler)

		// administrator operations
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleAdmin))
			r.Post("/tenders", h.CreateTenderHandler)
			r.Put("/tenders/{tenderId}", h.UpdateTenderHandler)
			r.Delete("/tenders/{tenderId}", h.DeleteTenderHandler)
			r.Get("/tenders/{tenderId}/bids/ranked", h.RankBidsHandler)
			r.Put("/tenders/{tenderId}/approve/{bidId}", h.ApproveBidHandler)
		})
	})

	log.Info("starting server", zap.String("address", cfg.ServerAddress))
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
