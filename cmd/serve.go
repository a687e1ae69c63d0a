package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/idjuv/agenda-service/internal/api/handlers"
	approveReservationHandler "github.com/idjuv/agenda-service/internal/api/handlers/approve_reservation"
	attachDocumentHandler "github.com/idjuv/agenda-service/internal/api/handlers/attach_document"
	cancelReservationHandler "github.com/idjuv/agenda-service/internal/api/handlers/cancel_reservation"
	completeReservationHandler "github.com/idjuv/agenda-service/internal/api/handlers/complete_reservation"
	createReservationHandler "github.com/idjuv/agenda-service/internal/api/handlers/create_reservation"
	getFacilityHandler "github.com/idjuv/agenda-service/internal/api/handlers/get_facility"
	getPreferencesHandler "github.com/idjuv/agenda-service/internal/api/handlers/get_preferences"
	getReservationHandler "github.com/idjuv/agenda-service/internal/api/handlers/get_reservation"
	listFacilitiesHandler "github.com/idjuv/agenda-service/internal/api/handlers/list_facilities"
	listFacilityReservationsHandler "github.com/idjuv/agenda-service/internal/api/handlers/list_facility_reservations"
	listPartnersHandler "github.com/idjuv/agenda-service/internal/api/handlers/list_partners"
	rejectReservationHandler "github.com/idjuv/agenda-service/internal/api/handlers/reject_reservation"
	savePreferencesHandler "github.com/idjuv/agenda-service/internal/api/handlers/save_preferences"
	updateFacilityChiefHandler "github.com/idjuv/agenda-service/internal/api/handlers/update_facility_chief"
	"github.com/idjuv/agenda-service/internal/api/middleware"
	"github.com/idjuv/agenda-service/internal/infra/cache"
	"github.com/idjuv/agenda-service/internal/infra/queue"
	facilityRepo "github.com/idjuv/agenda-service/internal/infra/storage/facility"
	partnerRepo "github.com/idjuv/agenda-service/internal/infra/storage/partner"
	preferencesRepo "github.com/idjuv/agenda-service/internal/infra/storage/preferences"
	reservationRepo "github.com/idjuv/agenda-service/internal/infra/storage/reservation"
	"github.com/idjuv/agenda-service/internal/integrations/storageservice"
	facilitiesService "github.com/idjuv/agenda-service/internal/service/facilities"
	partnersService "github.com/idjuv/agenda-service/internal/service/partners"
	preferencesService "github.com/idjuv/agenda-service/internal/service/preferences"
	reservationsService "github.com/idjuv/agenda-service/internal/service/reservations"
	createReservationUC "github.com/idjuv/agenda-service/internal/usecase/create_reservation"
	getFacilityAgendaUC "github.com/idjuv/agenda-service/internal/usecase/get_facility_agenda"
	"github.com/idjuv/agenda-service/pkg/dbmetrics"
	"github.com/idjuv/agenda-service/pkg/metrics"
	"github.com/idjuv/agenda-service/pkg/txmanager"
)

type agendaCache interface {
	Generation(ctx context.Context, entity, scope string) (int64, error)
	Get(ctx context.Context, key cache.Key, dst interface{}) (bool, error)
	Set(ctx context.Context, key cache.Key, value interface{}) error
	InvalidateScope(ctx context.Context, entity, scope string) error
}

type eventPublisher interface {
	PublishReservation(ctx context.Context, event queue.ReservationEvent) error
}

// deps собранный граф зависимостей, общий для serve и complete-elapsed
type deps struct {
	redisClient *redis.Client

	createReservation *createReservationUC.UseCase
	getFacilityAgenda *getFacilityAgendaUC.UseCase

	reservationSvc *reservationsService.Service
	facilitySvc    *facilitiesService.Service
	partnerSvc     *partnersService.Service
	preferencesSvc *preferencesService.Service
}

func (d *deps) closeCache() {
	if d.redisClient != nil {
		_ = d.redisClient.Close()
	}
}

// buildDeps собирает репозитории, сервисы и use cases.
// metricsCollector может быть nil, тогда метрики не пишутся.
func buildDeps(a *app, metricsCollector *metrics.Metrics, stopMetricsCh <-chan struct{}) *deps {
	cfg, log := a.cfg, a.log
	location, _ := cfg.Reservations.Location() // проверено в config.Load

	var wrappedDB *dbmetrics.DB
	if metricsCollector != nil && stopMetricsCh != nil {
		wrappedDB = dbmetrics.WrapWithDefault(a.db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(a.db, metricsCollector, cfg.Metrics.ServiceName)
	}
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Репозитории
	reservationRepository := reservationRepo.NewRepository(wrappedDB)
	facilityRepository := facilityRepo.NewRepository(wrappedDB)
	partnerRepository := partnerRepo.NewRepository(wrappedDB)
	preferencesRepository := preferencesRepo.NewRepository(wrappedDB)

	d := &deps{}

	// Кэш агенды: без Redis работаем напрямую с базой
	var agenda agendaCache = cache.NoopCache{}
	if cfg.Redis.Enabled {
		if client := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); client != nil {
			d.redisClient = client
			agenda = cache.NewRedisCache(client, cfg.Redis.Prefix, time.Duration(cfg.Redis.TTL)*time.Second)
			log.Info("Agenda cache enabled (redis=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTL)
		} else {
			log.Warn("Redis unavailable at %s, agenda cache disabled", cfg.Redis.Addr)
		}
	}

	var publisher eventPublisher = queue.NoopPublisher{}
	if cfg.AMQP.Enabled {
		publisher = queue.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
		log.Info("Reservation events published to exchange %s", cfg.AMQP.Exchange)
	}

	storageClient := storageservice.NewClient(
		cfg.Storage.URL,
		cfg.Storage.Bucket,
		cfg.Storage.ServiceKey,
		time.Duration(cfg.Storage.Timeout)*time.Second,
		log,
	)

	// Сервисы
	d.reservationSvc = reservationsService.NewService(
		reservationRepository,
		facilityRepository,
		storageClient,
		agenda,
		publisher,
		metricsCollector,
		log,
	)
	d.facilitySvc = facilitiesService.NewService(facilityRepository, log)
	d.partnerSvc = partnersService.NewService(partnerRepository, log)
	d.preferencesSvc = preferencesService.NewService(preferencesRepository, facilityRepository, log)

	// Use cases
	d.createReservation = createReservationUC.NewUseCase(
		reservationRepository,
		facilityRepository,
		partnerRepository,
		txMgr,
		agenda,
		publisher,
		createReservationUC.Settings{
			Location:       location,
			MaxOccurrences: cfg.Reservations.MaxOccurrences,
		},
		log,
	)
	d.getFacilityAgenda = getFacilityAgendaUC.NewUseCase(
		reservationRepository,
		facilityRepository,
		agenda,
		location,
		log,
	)

	return d
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	cfg, log := a.cfg, a.log
	log.Info("Starting agenda-service...")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	d := buildDeps(a, metricsCollector, stopMetricsCh)
	defer d.closeCache()

	// Инициализируем handlers
	getFacility := getFacilityHandler.NewHandler(d.facilitySvc, log)
	listFacilities := listFacilitiesHandler.NewHandler(d.facilitySvc, log)
	updateFacilityChief := updateFacilityChiefHandler.NewHandler(d.facilitySvc, log)
	listFacilityReservations := listFacilityReservationsHandler.NewHandler(d.getFacilityAgenda, log)
	listPartners := listPartnersHandler.NewHandler(d.partnerSvc, log)
	createReservation := createReservationHandler.NewHandler(d.createReservation, log)
	getReservation := getReservationHandler.NewHandler(d.reservationSvc, log)
	approveReservation := approveReservationHandler.NewHandler(d.reservationSvc, log)
	rejectReservation := rejectReservationHandler.NewHandler(d.reservationSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(d.reservationSvc, log)
	completeReservation := completeReservationHandler.NewHandler(d.reservationSvc, log)
	attachDocument := attachDocumentHandler.NewHandler(d.reservationSvc, log)
	getPreferences := getPreferencesHandler.NewHandler(d.preferencesSvc, log)
	savePreferences := savePreferencesHandler.NewHandler(d.preferencesSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (агенда публичная)
	// ============================================================

	api.HandleFunc("/facilities", listFacilities.Handle).Methods(http.MethodGet)
	api.HandleFunc("/facilities/{facilityId:[0-9]+}", getFacility.Handle).Methods(http.MethodGet)
	api.HandleFunc("/facilities/{facilityId:[0-9]+}/reservations", listFacilityReservations.Handle).Methods(http.MethodGet)
	api.HandleFunc("/partners/{kind}", listPartners.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (Bearer JWT)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(cfg.Auth.JWTSecret))

	// --- Заявки ---
	protected.HandleFunc("/facilities/{facilityId:[0-9]+}/reservations", createReservation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}/approve", approveReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}/reject", rejectReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}/complete", completeReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}/document", attachDocument.Handle).Methods(http.MethodPost)

	// --- Администрирование ---
	protected.HandleFunc("/facilities/{facilityId:[0-9]+}/chief", updateFacilityChief.Handle).Methods(http.MethodPut)

	// --- Настройки пользователя ---
	protected.HandleFunc("/me/preferences", getPreferences.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/me/preferences", savePreferences.Handle).Methods(http.MethodPut)

	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Error("Server failed: %v", err)
		close(stopMetricsCh)
		return err
	case <-quit:
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
	return nil
}
