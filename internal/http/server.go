package httpapi

import (
	"context"
	"net/http"
	"time"

	"parish-backend-go/internal/config"
	"parish-backend-go/internal/services"
	"parish-backend-go/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type Server struct {
	Config      config.Config
	Tokens      services.TokenService
	Revocations services.Revocations
	Identity    services.IdentityVerifier
	Admins      services.AdminEmails
	Credentials services.AdminCredentials
	Prayers     *services.PrayerWorkflow
	Memberships *services.MembershipWorkflow
	Intake      services.MembershipIntake
	LoginLog    *services.LoginLog
	Attachments services.Attachments
	MetricsHub  *services.MetricsHub
	Metrics     *services.MetricsHistory
	Limiter     *RateLimiter
}

// Dependencies are the pluggable backends of a Server. Nil fields fall back
// to in-process implementations.
type Dependencies struct {
	Store       store.Store
	Attachments services.Attachments
	Revocations services.Revocations
	Identity    services.IdentityVerifier
	Notifier    services.Notifier
	MetricsHub  *services.MetricsHub
	Metrics     *services.MetricsHistory
	Now         func() time.Time
}

func NewServer(cfg config.Config, deps Dependencies) *Server {
	if deps.Store == nil {
		deps.Store = store.NewMemoryStore()
	}
	if deps.Attachments == nil {
		deps.Attachments = &services.LocalAttachments{Dir: cfg.UploadDir}
	}
	if deps.Revocations == nil {
		deps.Revocations = services.NewMemoryRevocations()
	}
	if deps.Identity == nil {
		deps.Identity = services.GoogleVerifier{ClientID: cfg.GoogleClientID}
	}
	if deps.MetricsHub == nil {
		deps.MetricsHub = services.NewMetricsHub()
	}
	if deps.Metrics == nil {
		deps.Metrics = services.NewMetricsHistory(0)
	}

	locks := store.NewLocks()
	workflowDeps := services.WorkflowDeps{
		Store:     deps.Store,
		Locks:     locks,
		Authorize: IsAdmin,
		Notifier:  deps.Notifier,
		Now:       deps.Now,
	}
	memberships := services.NewMembershipWorkflow(workflowDeps)

	return &Server{
		Config: cfg,
		Tokens: services.TokenService{
			Secret: []byte(cfg.SessionSecret),
			Issuer: cfg.SessionIssuer,
			TTL:    time.Duration(cfg.SessionTTLSeconds) * time.Second,
		},
		Revocations: deps.Revocations,
		Identity:    deps.Identity,
		Admins:      services.NewAdminEmails(cfg.AdminEmails),
		Credentials: services.AdminCredentials{
			User:     cfg.AdminUser,
			Pass:     cfg.AdminPass,
			PassHash: cfg.AdminPassHash,
		},
		Prayers:     services.NewPrayerWorkflow(workflowDeps),
		Memberships: memberships,
		Intake: services.MembershipIntake{
			Workflow:    memberships,
			Attachments: deps.Attachments,
			Now:         deps.Now,
		},
		LoginLog:    services.NewLoginLog(deps.Store, locks, deps.Now),
		Attachments: deps.Attachments,
		MetricsHub:  deps.MetricsHub,
		Metrics:     deps.Metrics,
		Limiter:     NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustedProxies),
	}
}

func (s *Server) Router(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Token", sessionTransportHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(LimitBody(s.Config.MaxUploadBytes()))
	r.Use(s.WithSession)

	go s.Limiter.Cleanup(ctx, 5*time.Minute)

	r.Get("/health", s.Health)
	r.Get("/config", s.PublicConfig)

	r.Route("/auth", func(auth chi.Router) {
		auth.Get("/me", s.Me)
		auth.With(s.Limiter.Middleware).Post("/google/verify", s.GoogleVerify)
		auth.With(s.Limiter.Middleware).Post("/login", s.Login)
		auth.Post("/logout", s.Logout)
		auth.Post("/dev-login", s.DevLogin)
	})

	r.With(s.Limiter.Middleware).Post("/submit/prayer", s.SubmitPrayer)

	r.Route("/api", func(api chi.Router) {
		api.With(s.Limiter.Middleware).Post("/memberships", s.SubmitMembership)
		api.Get("/memberships", listApproved(s.Memberships))
		api.Get("/prayers", listApproved(s.Prayers))

		api.Route("/pending-prayers", func(pending chi.Router) {
			pending.Get("/", listPending(s.Prayers))
			pending.Post("/{id}/approve", approvePending(s.Prayers))
			pending.Post("/{id}/reject", rejectPending(s.Prayers))
		})
		api.Route("/pending-memberships", func(pending chi.Router) {
			pending.Get("/", listPending(s.Memberships))
			pending.Post("/{id}/approve", approvePending(s.Memberships))
			pending.Post("/{id}/reject", rejectPending(s.Memberships))
		})

		api.With(RequireAdmin).Get("/login-logs", s.LoginLogs)
		api.With(RequireAdmin).Get("/admin/metrics/history", s.MetricsHistory)
	})

	r.Route("/upload", func(upload chi.Router) {
		upload.Post("/prayers", importApproved(s.Prayers, "Prayers saved"))
		upload.Post("/memberships", importApproved(s.Memberships, "Saved"))
	})

	if _, ok := s.Attachments.(*services.LocalAttachments); ok {
		r.Get("/uploads/{name}", s.ServeUpload)
	}
	r.Get("/ws/metrics", s.MetricsSocket)
	return r
}
