package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pkg/errors"

	"github.com/fitwell/fitwell-api/internal/app"
	"github.com/fitwell/fitwell-api/internal/app/handlers"
	"github.com/fitwell/fitwell-api/internal/config"
	"github.com/fitwell/fitwell-api/internal/lib/imagestore"
	"github.com/fitwell/fitwell-api/internal/lib/logger"
	"github.com/fitwell/fitwell-api/internal/lib/logger/handlers/urllog"
	"github.com/fitwell/fitwell-api/internal/security/jwtmiddleware"
	"github.com/fitwell/fitwell-api/internal/service"
	"github.com/fitwell/fitwell-api/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	images, err := imagestore.New(cfg.Images.Dir, cfg.Images.MaxSizeMB)
	if err != nil {
		log.Error("failed to initialize image store", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize image store"))
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	routineRepo := storage.NewRoutineRepository(application.DB)

	tokenTTL := time.Duration(cfg.JWT.TokenTTL) * time.Minute
	verifier := service.NewGoogleVerifier(cfg.Google.ClientID)
	authService := service.NewAuthService(application.Logger, userRepo, verifier, tokenTTL)
	orderService := service.NewOrderService(application.Logger, application.DB, orderRepo, productRepo)
	productService := service.NewProductService(application.Logger, productRepo, images)
	routineService := service.NewRoutineService(application.Logger, routineRepo)

	imageBaseURL := cfg.HTTPServer.BaseURL + cfg.Images.URLPrefix

	router.Get("/api", handlers.HealthHandler())

	router.Post("/api/auth/registro", handlers.RegisterHandler(application.Logger, authService))
	router.Post("/api/auth/login", handlers.LoginHandler(application.Logger, authService))
	router.Post("/api/auth/google", handlers.GoogleAuthHandler(application.Logger, authService))

	router.Get("/api/productos", handlers.ListProductsHandler(application.Logger, productService, imageBaseURL))
	router.Get("/api/productos/{id}", handlers.GetProductHandler(application.Logger, productService, imageBaseURL))
	router.Get("/api/rutinas", handlers.ListRoutinesHandler(application.Logger, routineService))
	router.Get("/api/rutinas/{id}", handlers.GetRoutineHandler(application.Logger, routineService))

	// stored product images
	router.Handle(cfg.Images.URLPrefix+"/*", http.StripPrefix(cfg.Images.URLPrefix+"/",
		http.FileServer(http.Dir(cfg.Images.Dir))))

	router.Group(func(r chi.Router) {
		jwtMW := jwtmiddleware.NewJWTMiddleware()
		r.Use(jwtMW)

		r.Get("/api/auth/usuario", handlers.ProfileHandler(application.Logger, authService))

		r.Post("/api/pedidos", handlers.CreateOrderHandler(application.Logger, orderService))
		r.Get("/api/pedidos/detalle/{id}", handlers.OrderDetailHandler(application.Logger, orderService))
		r.Get("/api/pedidos/{usuario_id}", handlers.ListOrdersHandler(application.Logger, orderService))

		// catalog mutations require the admin role
		r.Group(func(ar chi.Router) {
			ar.Use(jwtmiddleware.RequireAdmin)

			ar.Post("/api/productos", handlers.CreateProductHandler(application.Logger, productService, imageBaseURL))
			ar.Put("/api/productos/{id}", handlers.UpdateProductHandler(application.Logger, productService, imageBaseURL))
			ar.Delete("/api/productos/{id}", handlers.DeleteProductHandler(application.Logger, productService))

			ar.Post("/api/rutinas", handlers.CreateRoutineHandler(application.Logger, routineService))
			ar.Put("/api/rutinas/{id}", handlers.UpdateRoutineHandler(application.Logger, routineService))
			ar.Delete("/api/rutinas/{id}", handlers.DeleteRoutineHandler(application.Logger, routineService))
		})
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
