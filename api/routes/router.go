package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/numdinkushi/vunalet-backend/api/controllers"
	"github.com/numdinkushi/vunalet-backend/api/middleware"
	"github.com/numdinkushi/vunalet-backend/internal/assignment"
	"github.com/numdinkushi/vunalet-backend/internal/notifications"
	"github.com/numdinkushi/vunalet-backend/internal/orders"
	"github.com/numdinkushi/vunalet-backend/pkg/config"
	"github.com/numdinkushi/vunalet-backend/pkg/db"
	"github.com/numdinkushi/vunalet-backend/pkg/logger"
	"github.com/numdinkushi/vunalet-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	ordersService orders.Service,
	claimService assignment.ClaimService,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(ordersService, logg))
			r.Get("/{orderId}", controllers.GetOrder(ordersService, logg))
			r.Post("/{orderId}/claim", controllers.ClaimOrder(claimService, logg))
		})

		r.Route("/dispatchers/{dispatcherId}", func(r chi.Router) {
			r.Get("/orders", controllers.DispatcherAssignedOrders(ordersService, logg))
		})

		r.Route("/users/{userId}/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	return r
}
