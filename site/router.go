package site

import (
	"net/http"
	"time"

	"walkintovoid/auth"
	"walkintovoid/database"
	"walkintovoid/media"
	"walkintovoid/metrics"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

type Options struct {
	CORSOrigins        []string
	RateLimitPerMinute int // 0 disables
	RegisterPerMinute  int // 0 disables
	LoginPerMinute     int // 0 disables
	SecureCookies      bool
	SessionTTL         time.Duration
	MaxUploadBytes     int64
	RequestLogging     bool
}

// Server carries every dependency the handlers need; nothing is global.
type Server struct {
	Store       *database.Store
	Otp         *auth.OtpService
	Sessions    *auth.Sessions
	Credentials *auth.Credentials
	OAuth       *auth.OAuthAdapter
	Google      *auth.GoogleProvider // nil when google sign-in is not configured
	Uploader    media.Uploader       // nil when uploads are not configured
	Metrics     *metrics.Metrics
	Views       *ViewCounter
	Logger      *zap.Logger
	Options     Options
}

func (s *Server) NewRouter() *chi.Mux {
	r := chi.NewRouter()

	origins := s.Options.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	CORSMiddleware := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	r.Use(CORSMiddleware.Handler)
	r.Use(middleware.RealIP)
	if s.Options.RequestLogging {
		r.Use(middleware.Logger)
	}
	if s.Metrics != nil {
		r.Use(s.Metrics.Middleware)
	}
	if s.Options.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(s.Options.RateLimitPerMinute, time.Minute)) // shared across all routes
	}
	r.Use(middleware.Recoverer)
	r.Use(s.TryPutUserInContextMiddleware)

	r.Get("/health", s.Health)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if s.Options.RegisterPerMinute > 0 {
				r.Use(httprate.LimitByIP(s.Options.RegisterPerMinute, time.Minute))
			}
			r.Post("/register", s.Register)
			r.Post("/verify-otp", s.VerifyOtp)
		})
		// login has its own bucket so signing up does not eat into it
		r.Group(func(r chi.Router) {
			if s.Options.LoginPerMinute > 0 {
				r.Use(httprate.LimitByIP(s.Options.LoginPerMinute, time.Minute))
			}
			r.Post("/login", s.Login)
		})
		r.Post("/logout", s.Logout)
		r.Get("/oauth/google", s.GoogleSignIn)
		r.Get("/oauth/google/callback", s.GoogleCallback)
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", s.ListPublicPosts)
		r.Get("/home", s.HomePosts)
		r.Get("/by-slug/{slug}", s.PublicViewPost)
		r.Get("/{postID}/comments", s.ListComments)
		r.Post("/{postID}/comments", s.CreateComment)

		r.Group(func(r chi.Router) {
			r.Use(s.RequireRole(auth.Staff))
			r.Post("/", s.CreatePost)
			r.Get("/{postID}", s.GetPost)
			r.Put("/{postID}", s.UpdatePost)
			r.Delete("/{postID}", s.DeletePost)
		})
		r.Group(func(r chi.Router) {
			r.Use(s.RequireRole(auth.AdminsOnly))
			r.Post("/{postID}/publish", s.PublishPost)
			r.Post("/{postID}/reject", s.RejectPost)
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", s.ListCategories)
		r.With(s.RequireRole(auth.Staff)).Post("/", s.CreateCategory)
	})
	r.Route("/tags", func(r chi.Router) {
		r.Get("/", s.ListTags)
		r.With(s.RequireRole(auth.Staff)).Post("/", s.CreateTag)
	})

	r.With(s.RequireRole(auth.Staff)).Get("/analytics", s.Analytics)
	r.With(s.RequireRole(auth.Staff)).Post("/uploads/banner", s.UploadBanner)

	r.Route("/admin", func(r chi.Router) {
		r.With(s.RequireRole(auth.Staff)).Get("/posts", s.ListAllPosts)
		r.Group(func(r chi.Router) {
			r.Use(s.RequireRole(auth.AdminsOnly))
			r.Get("/users", s.ListUsers)
			r.Put("/users/{userID}/role", s.UpdateUserRole)
		})
	})

	return r
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
