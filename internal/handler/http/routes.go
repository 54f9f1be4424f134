package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/version", h.getServerVersion)
		r.Get("/ready", h.ready)
		r.Handle("/metrics", promhttp.Handler())
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/keys/master", h.masterKey)

		r.Post("/groups", h.createGroup)
		r.Route("/groups/{groupID}", func(r chi.Router) {
			r.Delete("/", h.deleteGroup)

			r.Post("/identities", h.createIdentity)
			r.Get("/identities", h.listIdentities)
			r.Post("/identities/reveal", h.revealIdentities)
			r.Put("/identities/status", h.setIdentityStatus)
			r.Post("/identities/repair", h.repairIdentities)
			r.Post("/identities/encrypt-legacy", h.encryptLegacyIdentities)

			r.Post("/assignments", h.recordAssignment)
			r.Get("/assignments", h.listAssignments)
			r.Get("/ledger", h.ledgerSummary)
		})

		r.Route("/assignments/{assignmentID}", func(r chi.Router) {
			r.Patch("/", h.amendAssignment)
			r.Get("/payments", h.listPayments)
			r.Post("/payments", h.recordPayment)
			r.Post("/refunds", h.recordRefund)
			r.Post("/consumption", h.recordConsumption)
		})
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
