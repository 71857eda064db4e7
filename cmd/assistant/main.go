// cmd/assistant/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"voicefin/internal/actions"
	"voicefin/internal/common/config"
	"voicefin/internal/common/database"
	"voicefin/internal/common/logger"
	"voicefin/internal/common/observability"
	"voicefin/internal/common/validation"
	"voicefin/internal/dialogue"
	"voicefin/internal/intent"
	"voicefin/internal/normalizer"
	"voicefin/internal/state"
	"voicefin/pkg/registry"
)

// retryWithBackoff attempts an operation with exponential backoff.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting assistant",
		zap.String("name", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	// Postgres
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("failed to create postgres client", zap.Error(err))
	}
	defer pg.Close()

	if err := retryWithBackoff(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return pg.Ping(ctx)
	}, 5, time.Second, zapLog, "postgres connect"); err != nil {
		zapLog.Fatal("postgres unreachable", zap.Error(err))
	}

	// Redis
	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("failed to create redis client", zap.Error(err))
	}
	defer rdb.Close()

	if err := retryWithBackoff(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return rdb.Ping(ctx)
	}, 5, time.Second, zapLog, "redis connect"); err != nil {
		zapLog.Fatal("redis unreachable", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// Core pipeline
	classifier, err := intent.NewClassifier(cfg.Dialogue.IntentRules)
	if err != nil {
		zapLog.Fatal("invalid intent rules", zap.Error(err))
	}
	extractor := intent.NewExtractor(cfg.Dialogue.Categories)

	store := state.NewRedisStore(
		rdb.GetClient(),
		time.Duration(cfg.Dialogue.StateTTLSeconds)*time.Second,
		log,
	)

	db := pg.GetDB()
	budgets := actions.NewBudgetService(db, log)
	transactions := actions.NewTransactionService(db, log)
	reminders := actions.NewReminderService(db, log)
	audit := actions.NewAuditLog(db, log)

	orch := dialogue.NewOrchestrator(classifier, extractor, store, budgets, transactions, reminders, audit, log)

	if cfg.Normalizer.Enabled {
		norm, err := normalizer.New(cfg.Normalizer, log)
		if err != nil {
			zapLog.Warn("normalizer unavailable, continuing without it", zap.Error(err))
		} else if norm != nil {
			orch.WithNormalizer(norm)
			zapLog.Info("command normalizer enabled", zap.String("model", cfg.Normalizer.Model))
		}
	}

	// Metrics endpoint
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: cfg.Server.MetricsAddress, Handler: metricsMux}
	go func() {
		zapLog.Info("metrics server listening", zap.String("address", cfg.Server.MetricsAddress))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("metrics server failed", zap.Error(err))
		}
	}()

	catalog := registry.DefaultCatalog()
	if path := os.Getenv("INTENT_CATALOG_PATH"); path != "" {
		loaded, err := registry.LoadCatalog(path)
		if err != nil {
			zapLog.Warn("failed to load intent catalog, using built-in", zap.Error(err))
		} else {
			catalog = loaded
		}
	}

	// Turn endpoint
	requestTimeout := time.Duration(cfg.Server.RequestTimeout) * time.Millisecond
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/capabilities", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(catalog)
	})
	mux.HandleFunc("/v1/turn", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		check, err := validation.ValidateTurnRequest(payload)
		if err != nil {
			http.Error(w, "validation error", http.StatusInternalServerError)
			return
		}
		if !check.Valid {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(check)
			return
		}

		userID, _ := payload["userId"].(string)
		text, _ := payload["text"].(string)

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		start := time.Now()
		result, err := orch.Turn(ctx, userID, text)
		if err != nil {
			log.WithError(err).Error("turn failed", map[string]interface{}{"userId": userID})
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		obs.RecordTurnProcessed(ctx, string(result.Stage))
		obs.RecordTurnDuration(ctx, time.Since(start), string(result.Stage))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
	}

	go func() {
		zapLog.Info("assistant listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	_ = metricsSrv.Shutdown(ctx)
}
