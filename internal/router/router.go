package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/itchan-dev/studyboard/internal/middleware"
	"github.com/itchan-dev/studyboard/internal/middleware/metrics"
	"github.com/itchan-dev/studyboard/internal/setup"
)

// New creates and configures a chi router with all the routes.
// Content creation is rate limited per user, everything under /v1 needs a token.
func New(deps *setup.Dependencies) *chi.Mux {
	cfg := deps.Config.Public
	h := deps.Handler

	r := chi.NewRouter()
	r.Use(mw.RequestLogger)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", mw.RequestIdHeader},
		ExposedHeaders:   []string{mw.RequestIdHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.SecurityHeaders(cfg.SecureCookies))

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(deps.AuthMiddleware.NeedAuth())

		v1.Get("/me", h.Me)

		v1.Get("/threads", h.ListThreads)
		v1.Post("/threads", h.CreateThread)
		v1.Put("/threads/{name}", h.RenameThread)
		v1.Delete("/threads/{name}", h.DeleteThread)

		v1.Get("/posts", h.ListPosts)
		v1.With(mw.RateLimit(deps.PostLimiter, mw.GetUsernameIdentity)).Post("/posts", h.CreatePost)
		v1.Get("/posts/unread", h.ListUnreadPosts)
		v1.Get("/posts/{id}", h.GetPost)
		v1.Put("/posts/{id}", h.UpdatePost)
		v1.Delete("/posts/{id}", h.DeletePost)
		v1.Post("/posts/{id}/read", h.MarkPostRead)
		v1.Post("/posts/{id}/flag", h.FlagPost)
		v1.Delete("/posts/{id}/flag", h.UnflagPost)
		v1.Post("/posts/{id}/hide", h.HidePost)
		v1.Get("/flagged", h.ListFlaggedPosts)

		v1.Get("/posts/{id}/replies", h.ListReplies)
		v1.With(mw.RateLimit(deps.ReplyLimiter, mw.GetUsernameIdentity)).Post("/posts/{id}/replies", h.CreateReply)
		v1.Put("/replies/{id}", h.UpdateReply)
		v1.Delete("/replies/{id}", h.DeleteReply)
		v1.Post("/replies/{id}/read", h.MarkReplyRead)

		v1.Post("/feedback", h.CreateFeedback)
		v1.Get("/feedback/mine", h.ListMyFeedback)
		v1.Get("/feedback/{type}/{id}", h.ListFeedbackForTarget)

		v1.Get("/grading/helpers", h.ListHelpers)
		v1.Get("/grading/summary.csv", h.GradingSummaryCSV)
		v1.Get("/grading/parameters", h.ListParameters)
		v1.Post("/grading/parameters", h.CreateParameter)
		v1.Put("/grading/parameters/{id}", h.UpdateParameter)
		v1.Delete("/grading/parameters/{id}", h.DeleteParameter)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})

	return r
}
