package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bedtex/dispatch-backend/api/controllers"
	"github.com/bedtex/dispatch-backend/api/middleware"
	confirmsvc "github.com/bedtex/dispatch-backend/internal/confirmations"
	customersvc "github.com/bedtex/dispatch-backend/internal/customers"
	ordersvc "github.com/bedtex/dispatch-backend/internal/orders"
	reconsvc "github.com/bedtex/dispatch-backend/internal/reconciliation"
	reportsvc "github.com/bedtex/dispatch-backend/internal/reports"
	shortagesvc "github.com/bedtex/dispatch-backend/internal/shortages"
	vehiclesvc "github.com/bedtex/dispatch-backend/internal/vehicles"
	"github.com/bedtex/dispatch-backend/pkg/config"
	"github.com/bedtex/dispatch-backend/pkg/db"
	"github.com/bedtex/dispatch-backend/pkg/enums"
	"github.com/bedtex/dispatch-backend/pkg/logger"
	"github.com/bedtex/dispatch-backend/pkg/metrics"
	pkgredis "github.com/bedtex/dispatch-backend/pkg/redis"
)

// Services bundles the wired domain services the router exposes.
type Services struct {
	Orders         ordersvc.Service
	Vehicles       vehiclesvc.Service
	Confirmations  confirmsvc.Service
	Reconciliation reconsvc.Service
	Reports        reportsvc.Service
	Shortages      shortagesvc.Service
	Customers      customersvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *pkgredis.Client,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	httpMetrics := metrics.NewHTTPMetrics(registry)

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbClient, redisClient, logg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	// A typed nil *redis.Client must not reach the middleware as a non-nil interface.
	var idemStore pkgredis.IdempotencyStore
	if redisClient != nil {
		idemStore = redisClient
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(svcs.Orders, logg))
			r.Get("/{orderID}", controllers.GetOrder(svcs.Orders, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.StaffRoleAdmin, enums.StaffRoleDispatcher))
				r.Post("/", controllers.CreateOrder(svcs.Orders, logg))
				r.Put("/{orderID}", controllers.UpdateOrder(svcs.Orders, logg))
				r.Delete("/{orderID}", controllers.DeleteOrder(svcs.Orders, logg))
				r.Post("/{orderID}/vehicle", controllers.AssignOrderVehicle(svcs.Orders, logg))
			})

			r.Put("/{orderID}/confirm/warehouse", controllers.ConfirmWarehouse(svcs.Confirmations, logg))
			r.With(middleware.RequireRole(logg, enums.StaffRoleAdmin, enums.StaffRoleDispatcher, enums.StaffRoleLeader)).
				Put("/{orderID}/confirm/leader", controllers.ConfirmLeader(svcs.Confirmations, logg))
		})

		r.Put("/confirmations/batch", controllers.ConfirmBatch(svcs.Confirmations, logg))

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", controllers.ListVehicles(svcs.Vehicles, logg))
			r.Get("/{vehicleID}", controllers.GetVehicle(svcs.Vehicles, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.StaffRoleAdmin, enums.StaffRoleDispatcher))
				r.Post("/", controllers.CreateVehicle(svcs.Vehicles, logg))
				r.Put("/{vehicleID}", controllers.UpdateVehicle(svcs.Vehicles, logg))
				r.Delete("/{vehicleID}", controllers.DeleteVehicle(svcs.Vehicles, logg))
				r.Put("/{vehicleID}/printed", controllers.SetVehiclePrinted(svcs.Vehicles, logg))
				r.Put("/{vehicleID}/completed", controllers.SetVehicleCompleted(svcs.Vehicles, logg))
			})
		})

		r.Route("/reconciliation", func(r chi.Router) {
			r.Get("/surplus-deficit", controllers.ListSurplusDeficit(svcs.Reconciliation, logg))
			r.Get("/surplus-deficit/export", controllers.ExportSurplusDeficit(svcs.Reports, logg))
			r.Get("/queue", controllers.ListWarehouseQueue(svcs.Reconciliation, logg))
		})

		r.Route("/shortages", func(r chi.Router) {
			r.Get("/", controllers.ListShortages(svcs.Shortages, logg))
			r.With(middleware.RequireRole(logg, enums.StaffRoleAdmin, enums.StaffRoleDispatcher)).
				Post("/{orderID}/items/{itemID}/ignore", controllers.IgnoreShortage(svcs.Shortages, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.SearchCustomers(svcs.Customers, logg))
			r.Get("/{customerID}", controllers.GetCustomer(svcs.Customers, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.StaffRoleAdmin, enums.StaffRoleDispatcher))
				r.Post("/", controllers.CreateCustomer(svcs.Customers, logg))
				r.Put("/{customerID}", controllers.UpdateCustomer(svcs.Customers, logg))
				r.Delete("/{customerID}", controllers.DeleteCustomer(svcs.Customers, logg))
			})
		})
	})

	return r
}
