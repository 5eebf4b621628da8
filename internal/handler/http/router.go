package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/payrollhq/payrun-backend-go/internal/handler/http/middleware"
	"github.com/payrollhq/payrun-backend-go/internal/pkg/jwt"
)

func NewRouter(
	JWTService jwt.Service,
	payrunHandler PayrunHandler,
	catalogHandler CatalogHandler,
	frontendURL string,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payrun-engine"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/payroll", func(r chi.Router) {
				r.Get("/components", catalogHandler.ListComponents)

				r.Route("/runs", func(r chi.Router) {
					r.Get("/", payrunHandler.LoadPeriod)
					r.Post("/{empID}/draft", payrunHandler.RunOrResume)
					r.Post("/{payrollID}/email", payrunHandler.EmailPayslip)

					// Admin only
					r.Group(func(r chi.Router) {
						r.Use(middleware.AdminOnly)
						r.Put("/{payrollID}/void", payrunHandler.Void)
					})
				})

				r.Route("/draft", func(r chi.Router) {
					r.Get("/", payrunHandler.GetDraft)
					r.Delete("/", payrunHandler.DiscardDraft)
					r.Patch("/inputs", payrunHandler.UpdateBaseInput)
					r.Post("/components", payrunHandler.AddComponent)
					r.Delete("/components/{componentID}", payrunHandler.RemoveComponent)
					r.Post("/preview", payrunHandler.SubmitForPreview)
				})

				r.Route("/preview", func(r chi.Router) {
					r.Post("/back", payrunHandler.GoBack)
					r.Post("/finalize", payrunHandler.Finalize)
				})

				r.Get("/employees/{empID}/history", payrunHandler.History)
			})
		})
	})
	return r
}
