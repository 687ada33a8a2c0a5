package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"imhungri/pkg/logx"
	"imhungri/pkg/middlewarex"
)

// NewRouter assembles the API router with the standard middleware chain.
func NewRouter(dealServer *DealServer, logFieldMaxLen int) http.Handler {
	masker := logx.NewSensitiveDataMasker()

	r := chi.NewRouter()

	r.Use(middlewarex.TraceID)
	r.Use(middlewarex.Logger)
	r.Use(middlewarex.Recovery)
	r.Use(middlewarex.RequestLogging(masker, logFieldMaxLen))
	r.Use(middlewarex.ResponseLogging(masker, logFieldMaxLen))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/deals", func(r chi.Router) {
			r.Get("/", dealServer.handlerFeed)
			r.Post("/", dealServer.handlerSubmit)

			r.Route("/{dealID}", func(r chi.Router) {
				r.Get("/", dealServer.handlerDeal)
				r.Post("/vote", dealServer.handlerVote)
				r.Post("/favorite", dealServer.handlerFavorite)
				r.Post("/report", dealServer.handlerReport)
			})
		})

		r.Route("/profiles/{profileID}", func(r chi.Router) {
			r.Get("/", dealServer.handlerProfile)
			r.Put("/", dealServer.handlerUpdateProfile)
			r.Post("/block", dealServer.handlerBlockUser)
		})

		r.Get("/restaurants/nearby", dealServer.handlerNearbyRestaurants)

		r.Put("/session", dealServer.handlerSignIn)
		r.Delete("/session", dealServer.handlerSignOut)
		r.Put("/location", dealServer.handlerSetLocation)
	})

	return r
}
