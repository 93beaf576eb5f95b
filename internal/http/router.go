package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"campusintern/internal/common"
	"campusintern/internal/domain/principal"
	"campusintern/internal/http/handlers"
	"campusintern/internal/http/metrics"
	httpmw "campusintern/internal/http/middleware"
	"campusintern/internal/http/response"
)

type RouterDependencies struct {
	AuthHandler         *handlers.AuthHandler
	InternshipHandler   *handlers.InternshipHandler
	ApplicationHandler  *handlers.ApplicationHandler
	AnnouncementHandler *handlers.AnnouncementHandler
	AdminHandler        *handlers.AdminHandler
	AuthMiddleware      *httpmw.AuthMiddleware
	Limiter             httpmw.Limiter
	Metrics             *metrics.Collector
	Logger              *zerolog.Logger
	RequestTimeout      time.Duration
	// MaxUploadBytes bounds every request body; JSON bodies are further
	// capped when decoded.
	MaxUploadBytes int64
}

const (
	defaultMaxBodyBytes = 1 << 20
	loginLimit          = 10
	loginWindow         = time.Minute
)

type Router struct {
	deps    RouterDependencies
	handler http.Handler
}

func NewRouter(deps RouterDependencies) http.Handler {
	if deps.Logger == nil {
		nop := zerolog.Nop()
		deps.Logger = &nop
	}
	limit := deps.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	r := &Router{deps: deps}
	r.handler = httpmw.Chain(r.routes(),
		httpmw.RequestID,
		httpmw.Logging(deps.Logger),
		httpmw.BodyLimit(limit),
		httpmw.Recover(deps.Logger),
		httpmw.Timeout(deps.RequestTimeout),
	)
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) routes() http.Handler {
	d := r.deps
	root := mux.NewRouter()
	root.Use(httpmw.Metrics(d.Metrics))
	root.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.Error(w, common.NewError(common.CodeNotFound, "route not found", nil))
	})
	root.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.JSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed", "code": "method_not_allowed"})
	})

	root.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	if d.Metrics != nil {
		root.Handle("/metrics", d.Metrics.Handler()).Methods(http.MethodGet)
	}

	loginLimited := httpmw.RateLimit(d.Limiter, httpmw.IPKey("login"), loginLimit, loginWindow)
	root.HandleFunc("/auth/register/student", d.AuthHandler.RegisterStudent).Methods(http.MethodPost)
	root.HandleFunc("/auth/register/company", d.AuthHandler.RegisterCompany).Methods(http.MethodPost)
	root.Handle("/auth/login", loginLimited(http.HandlerFunc(d.AuthHandler.Login))).Methods(http.MethodPost)

	api := root.NewRoute().Subrouter()
	api.Use(d.AuthMiddleware.Authenticate)

	api.HandleFunc("/auth/profile", d.AuthHandler.Profile).Methods(http.MethodGet)
	api.HandleFunc("/auth/profile", d.AuthHandler.UpdateProfile).Methods(http.MethodPut)
	api.HandleFunc("/student/dashboard-stats", d.AdminHandler.StudentStats).Methods(http.MethodGet)

	api.HandleFunc("/internships", d.InternshipHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/internships", d.InternshipHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/internships/{id}", d.InternshipHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/internships/{id}/status", d.InternshipHandler.UpdateStatus).Methods(http.MethodPut)
	api.HandleFunc("/internships/{id}/applications", d.InternshipHandler.Applications).Methods(http.MethodGet)
	api.HandleFunc("/internships/{id}/apply", d.ApplicationHandler.Apply).Methods(http.MethodPost)

	api.HandleFunc("/applications", d.ApplicationHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/applications/recent", d.ApplicationHandler.Recent).Methods(http.MethodGet)
	api.HandleFunc("/applications/{id}", d.ApplicationHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/applications/{id}", d.ApplicationHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/applications/{id}/update", d.ApplicationHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/applications/{id}/resume", d.ApplicationHandler.UploadResume).Methods(http.MethodPost)
	api.HandleFunc("/applications/{id}/resume", d.ApplicationHandler.DownloadResume).Methods(http.MethodGet)

	api.HandleFunc("/announcements", d.AnnouncementHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/announcements", d.AnnouncementHandler.Create).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(httpmw.RequireRole(principal.RoleAdmin))
	admin.HandleFunc("/dashboard-counts", d.AdminHandler.DashboardCounts).Methods(http.MethodGet)
	admin.HandleFunc("/users", d.AdminHandler.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/toggle-block", d.AdminHandler.ToggleBlock).Methods(http.MethodPut)
	admin.HandleFunc("/admins", d.AdminHandler.CreateAdmin).Methods(http.MethodPost)
	admin.HandleFunc("/reports/company-offers", d.AdminHandler.CompanyOffers).Methods(http.MethodGet)
	admin.HandleFunc("/reports/applications-trend", d.AdminHandler.ApplicationsTrend).Methods(http.MethodGet)

	return root
}
