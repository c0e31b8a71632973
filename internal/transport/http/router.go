package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/audionote/api/internal/application/enhance"
	"github.com/audionote/api/internal/application/ledger"
	"github.com/audionote/api/internal/application/profile"
	"github.com/audionote/api/internal/application/session"
	"github.com/audionote/api/internal/application/transcribe"
	"github.com/audionote/api/internal/application/verification"
	"github.com/audionote/api/internal/config"
	"github.com/audionote/api/internal/transport/http/handler"
	appmiddleware "github.com/audionote/api/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	verificationSvc := verification.NewService(deps.VerificationRepo, deps.Mailer, cfg.CodeTTL)
	sessionSvc := session.NewService(deps.UserRepo, cfg.FreeTrialMinutes, cfg.SessionTTL)
	ledgerSvc := ledger.NewService(deps.UserRepo, deps.EventRepo)
	enhanceSvc := enhance.NewService(ledgerSvc, deps.Completer)
	transcribeSvc := transcribe.NewService(deps.AudioStore, deps.TranscriptRepo)
	profileSvc := profile.NewService(deps.UserRepo, ledgerSvc, deps.TranscriptRepo)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(verificationSvc, sessionSvc, cfg.DemoMode())
	enhanceH := handler.NewEnhanceHandler(enhanceSvc, sessionSvc)
	transcribeH := handler.NewTranscribeHandler(transcribeSvc, sessionSvc)
	creditsH := handler.NewCreditsHandler(ledgerSvc, sessionSvc, deps.UserRepo)
	checkoutH := handler.NewCheckoutHandler(sessionSvc, deps.Checkout)
	profileH := handler.NewProfileHandler(profileSvc)

	// 5 requests/second, burst of 10 — only the code-issuing and code-checking
	// actions are throttled; check-session polling stays unthrottled.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)
	sessionMw := appmiddleware.Session(sessionSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.With(sensitiveRL.LimitActions("send-code", "verify-code")).Post("/auth/{action}", authH.Action)

		r.Group(func(r chi.Router) {
			r.Use(sessionMw)

			r.Post("/enhance", enhanceH.Enhance)
			r.Post("/transcribe", transcribeH.Transcribe)
			r.Get("/credits", creditsH.Get)
			r.Post("/credits", creditsH.Add)
			r.Post("/checkout", checkoutH.Create)
			r.Post("/profile", profileH.Get)
		})
	})

	return r
}
