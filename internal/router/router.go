package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"portfolio-api/internal/config"
	"portfolio-api/internal/handler"
	"portfolio-api/internal/middleware"
	"portfolio-api/internal/model"
)

type Handlers struct {
	Auth           *handler.AuthHandler
	User           *handler.UserHandler
	Profile        *handler.ProfileHandler
	Project        *handler.ProjectHandler
	Skill          *handler.SkillHandler
	Education      *handler.EducationHandler
	WorkExperience *handler.WorkExperienceHandler
	SocialLink     *handler.SocialLinkHandler
	Blog           *handler.BlogHandler
	Health         *handler.HealthHandler
}

// New wires the HTTP surface. metrics may be nil, in which case neither the
// middleware nor /metrics is mounted.
func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, metrics *middleware.Metrics, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.ClientIP(cfg.TrustedProxies))
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	if metrics != nil {
		r.Use(metrics.Handler)
	}
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	r.Use(rateLimitMiddleware.Handler)

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Get("/health", h.Health.Check)
	if metrics != nil {
		r.Handle("/metrics", metrics.Exposition())
	}
	if cfg.StorageDriver == "local" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", noDirectoryListing(http.FileServer(http.Dir(cfg.UploadDir)))))
	}

	requireAuth := authMiddleware.RequireAuth
	requireAdmin := authMiddleware.RequireRoles(model.RoleAdmin)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/users", func(users chi.Router) {
			users.Post("/register", h.Auth.Register)
			users.Post("/login", h.Auth.Login)
			users.Post("/refresh-token", h.Auth.Refresh)
			users.Post("/forgot-password", h.Auth.ForgotPassword)
			users.Post("/reset-password", h.Auth.ResetPassword)

			users.Group(func(authed chi.Router) {
				authed.Use(requireAuth)
				authed.Post("/logout", h.Auth.Logout)
				authed.Get("/profile", h.Auth.Profile)
				authed.Post("/upload-avatar", h.Auth.UploadAvatar)
				authed.Delete("/avatar", h.Auth.DeleteAvatar)
			})
		})

		api.Route("/admin/users", func(admin chi.Router) {
			admin.Use(requireAuth, requireAdmin)
			admin.Get("/", h.User.List)
			admin.Get("/{id}", h.User.Get)
			admin.Put("/{id}/role", h.User.UpdateRole)
			admin.Delete("/{id}", h.User.Delete)
		})

		api.Route("/profile", func(profile chi.Router) {
			profile.Get("/", h.Profile.Get)
			profile.With(requireAuth).Post("/", h.Profile.Create)
			profile.With(requireAuth).Put("/", h.Profile.Update)
			profile.With(requireAuth).Delete("/", h.Profile.Delete)
		})

		api.Route("/projects", func(projects chi.Router) {
			projects.Get("/", h.Project.List)
			projects.Get("/{id}", h.Project.Get)
			projects.With(requireAuth).Post("/", h.Project.Create)
			projects.With(requireAuth).Put("/{id}", h.Project.Update)
			projects.With(requireAuth).Delete("/{id}", h.Project.Delete)
		})

		api.Route("/skills", func(skills chi.Router) {
			skills.Get("/", h.Skill.List)
			skills.With(requireAuth).Post("/", h.Skill.Create)
		})

		api.Route("/education", func(education chi.Router) {
			education.Get("/", h.Education.List)
			education.Get("/{id}", h.Education.Get)
			education.With(requireAuth).Post("/", h.Education.Create)
			education.With(requireAuth).Put("/{id}", h.Education.Update)
			education.With(requireAuth).Delete("/{id}", h.Education.Delete)
		})

		api.Route("/work-experience", func(work chi.Router) {
			work.Get("/", h.WorkExperience.List)
			work.Get("/{id}", h.WorkExperience.Get)
			work.With(requireAuth).Post("/", h.WorkExperience.Create)
			work.With(requireAuth).Put("/{id}", h.WorkExperience.Update)
			work.With(requireAuth).Delete("/{id}", h.WorkExperience.Delete)
		})

		api.Route("/social-links", func(links chi.Router) {
			links.Get("/", h.SocialLink.List)
			links.Get("/{id}", h.SocialLink.Get)
			links.With(requireAuth).Post("/", h.SocialLink.Create)
			links.With(requireAuth).Put("/{id}", h.SocialLink.Update)
			links.With(requireAuth).Delete("/{id}", h.SocialLink.Delete)
		})

		api.Route("/blog", func(blog chi.Router) {
			blog.Get("/", h.Blog.List)
			blog.Get("/{slug}", h.Blog.GetBySlug)
			blog.With(requireAuth).Post("/", h.Blog.Create)
			blog.With(requireAuth).Put("/{id}", h.Blog.Update)
			blog.With(requireAuth).Delete("/{id}", h.Blog.Delete)
		})
	})

	return r
}

func noDirectoryListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			handler.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
