// Stockroom API: вход по статическим учёткам двух ролей, bearer-сессии,
// учёт склада с живой лентой и выгрузкой CSV.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockroom/internal/config"
	"github.com/stockroom/internal/handler"
	"github.com/stockroom/internal/logger"
	"github.com/stockroom/internal/middleware"
	"github.com/stockroom/internal/model"
	"github.com/stockroom/internal/push"
	"github.com/stockroom/internal/repository"
	"github.com/stockroom/internal/service"
	"github.com/stockroom/internal/startup"
	"github.com/stockroom/internal/storage"
	"github.com/stockroom/internal/storage/devstore"
	"github.com/stockroom/internal/ws"
)

func main() {
	logger.SetPrefix("api")
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	dev := flag.Bool("dev", false, "keep sessions in Postgres instead of Redis (no Redis required)")
	flag.Parse()

	logger.Info("starting stockroom api")
	cfg := config.Load()
	if !cfg.Credentials.Complete() {
		logger.Errorf("config: задайте учётки ролей (INPUT_USER/INPUT_PASS, BOSS_USER/BOSS_PASS или config/credentials.yaml)")
		os.Exit(1)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		logger.Errorf("parse db config: %v", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = int32(cfg.DBMaxConnections())
	pool := startup.ConnectDBWithRetry(poolCfg, 60*time.Second)
	defer pool.Close()

	if err := startup.RunMigrations(pool); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
	if *migrate {
		return
	}
	logger.Info("database connected, migrations applied")

	itemRepo := repository.NewItemRepository(pool)
	entryRepo := repository.NewEntryRepository(pool)
	pushRepo := repository.NewPushRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)

	var store storage.SessionStore
	if *dev {
		logger.Info("-dev: сессии в Postgres (Redis не нужен, сессии переживают перезапуск)")
		store = devstore.New(sessionRepo)
	} else {
		redisClient := startup.ConnectRedisWithRetry(cfg.Redis.URL, 60*time.Second)
		defer redisClient.Close()
		store = redisClient
	}

	auth := service.NewAuthenticator(service.Credentials{
		InputUser:   cfg.Credentials.InputUser,
		InputPass:   cfg.Credentials.InputPass,
		BossUser:    cfg.Credentials.BossUser,
		BossPass:    cfg.Credentials.BossPass,
		BossAltPass: cfg.Credentials.BossAltPass,
	}, store)

	vapidKeys, err := push.EnsureVAPIDKeys(cfg.VAPIDKeysFile)
	if err != nil {
		logger.Errorf("push: VAPID-ключи недоступны: %v — пуши отключены", err)
		vapidKeys = nil
	}
	notifier := push.NewNotifier(pushRepo, vapidKeys)
	if !notifier.Enabled() {
		logger.Info("пуш-уведомления отключены (нет VAPID-ключей)")
	}

	hubCtx, hubCancel := context.WithCancel(context.Background())
	hub := ws.NewHub(cfg.MaxWSConnections)
	var hubWg sync.WaitGroup
	hubWg.Add(1)
	go func() {
		defer hubWg.Done()
		hub.Run(hubCtx)
	}()

	authH := handler.NewAuthHandler(auth)
	itemH := handler.NewItemHandler(itemRepo, hub, notifier)
	entryH := handler.NewEntryHandler(entryRepo, hub)
	var vapidPublic string
	if vapidKeys != nil {
		vapidPublic = vapidKeys.PublicKey
	}
	pushH := handler.NewPushHandler(pushRepo, vapidPublic)
	wsH := handler.NewWSHandler(hub, auth, cfg.CORSAllowedOrigins)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RecoverJSON)
	// Не сжимать WebSocket — иначе ResponseWriter не реализует http.Hijacker
	r.Use(func(next http.Handler) http.Handler {
		compressed := chimw.Compress(5)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if strings.EqualFold(req.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, req)
				return
			}
			compressed.ServeHTTP(w, req)
		})
	})
	r.Use(middleware.RequestLog)
	r.Use(middleware.RateLimitByIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSAllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Post("/api/login", authH.Login)
	// WebSocket сам резолвит токен (заголовок или query) через тот же гейт
	r.Get("/api/ws", wsH.ServeWS)

	// Чтения: любая валидная сессия, роль не важна (осознанное поведение)
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionAuth(auth))
		r.Use(middleware.RateLimitBySession)
		r.Get("/api/items", itemH.List)
		r.Get("/api/items/export.csv", itemH.ExportCSV)
		r.Get("/api/entries", entryH.List)
		r.Get("/api/config/push", pushH.PushConfig)
		r.Post("/api/push/subscribe", pushH.Subscribe)
		r.Delete("/api/push/subscribe", pushH.Unsubscribe)

		// Мутации: только роль input; гейт срабатывает до любого обращения к БД
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleInput))
			r.Post("/api/items", itemH.Create)
			r.Put("/api/items", itemH.Replace)
			r.Put("/api/items/{id}", itemH.Update)
			r.Delete("/api/items/{id}", itemH.Delete)
			r.Post("/api/entries", entryH.Create)
		})
	})

	// Статика за независимой basic-auth «входной дверью» (не /api/*)
	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		guard := middleware.SiteBasicAuth(cfg.Site.User, cfg.Site.Pass)
		r.Get("/*", guard(spaHandler(cfg.StaticDir)).ServeHTTP)
	}

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	var srvWg sync.WaitGroup
	errCh := make(chan error, 1)
	srvWg.Add(1)
	go func() {
		defer srvWg.Done()
		logger.Infof("server listening on %s", cfg.ServerAddr)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Errorf("server error: %v", err)
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	hubCancel()
	hubWg.Wait()
	srvWg.Wait()
	logger.Info("server stopped")
}

// spaHandler отдаёт файлы из dir, неизвестные пути — index.html (SPA-роутинг).
func spaHandler(dir string) http.HandlerFunc {
	fs := http.Dir(dir)
	fileServer := http.FileServer(fs)
	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(filepath.Clean(r.URL.Path), "/")
		if path == "" {
			path = "index.html"
		}
		if f, err := fs.Open(path); err != nil {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
		} else {
			f.Close()
			fileServer.ServeHTTP(w, r)
		}
	}
}
