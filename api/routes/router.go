package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mercaly/mercaly-backend/api/controllers"
	ordercontrollers "github.com/mercaly/mercaly-backend/api/controllers/orders"
	settlementcontrollers "github.com/mercaly/mercaly-backend/api/controllers/settlements"
	"github.com/mercaly/mercaly-backend/api/middleware"
	"github.com/mercaly/mercaly-backend/internal/orders"
	"github.com/mercaly/mercaly-backend/internal/settlement"
	"github.com/mercaly/mercaly-backend/pkg/config"
	"github.com/mercaly/mercaly-backend/pkg/db"
	"github.com/mercaly/mercaly-backend/pkg/logger"
	pkgredis "github.com/mercaly/mercaly-backend/pkg/redis"
)

// RouterParams hold everything the HTTP surface depends on.
type RouterParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         db.Pinger
	Redis      *pkgredis.Client
	Orders     orders.Service
	Settlement settlement.Service
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DB, params.Redis))
	})

	var idempotencyStore pkgredis.IdempotencyStore
	if params.Redis != nil {
		idempotencyStore = params.Redis
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordercontrollers.Create(params.Orders, logg))
			r.Get("/", ordercontrollers.List(params.Orders, logg))
			r.Get("/{orderID}", ordercontrollers.Detail(params.Orders, logg))
			r.Get("/{orderID}/track", ordercontrollers.Track(params.Orders, logg))
			r.Patch("/{orderID}/status", ordercontrollers.UpdateStatus(params.Orders, logg))
			r.Post("/{orderID}/payment-result", ordercontrollers.PaymentResult(params.Orders, logg))
			r.Post("/{orderID}/cancel", ordercontrollers.Cancel(params.Orders, logg))
		})

		r.Route("/settlements", func(r chi.Router) {
			r.Post("/", settlementcontrollers.Create(params.Settlement, logg))
			r.Get("/", settlementcontrollers.List(params.Settlement, logg))
			r.Post("/bulk", settlementcontrollers.BulkCreate(params.Settlement, logg))
			r.Post("/bulk-mark-paid", settlementcontrollers.BulkMarkPaid(params.Settlement, logg))
			r.Post("/preview", settlementcontrollers.FeePreview(params.Settlement, logg))
			r.Get("/summary", settlementcontrollers.Summary(params.Settlement, logg))
			r.Get("/statistics", settlementcontrollers.Statistics(params.Settlement, logg))
			r.Get("/order/{orderID}", settlementcontrollers.ByOrder(params.Settlement, logg))
			r.Get("/merchant/{merchantID}/pending", settlementcontrollers.PendingPayments(params.Settlement, logg))
			r.Get("/{transactionID}", settlementcontrollers.Detail(params.Settlement, logg))
			r.Post("/{transactionID}/mark-paid", settlementcontrollers.MarkPaid(params.Settlement, logg))
		})
	})

	return r
}
