package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kozaktomas/facecam/internal/web/handlers"
	"github.com/kozaktomas/facecam/internal/web/middleware"
	"github.com/kozaktomas/facecam/internal/web/static"
)

func (s *Server) setupRoutes() {
	pagesHandler := handlers.NewPagesHandler(s.gallery, static.Templates())
	galleryHandler := handlers.NewGalleryHandler(s.gallery)
	streamHandler := handlers.NewStreamHandler(s.feed)

	// The stream runs until the client leaves.
	s.router.Get("/video_feed", streamHandler.VideoFeed)

	s.router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(5 * time.Minute))
		r.Use(middleware.SecurityHeaders())

		r.Get("/", pagesHandler.Index)
		r.Get("/register", pagesHandler.RegisterForm)
		r.Post("/register", pagesHandler.Register)
		r.Get("/label_unknown", pagesHandler.LabelForm)
		r.Post("/label_unknown", pagesHandler.Label)
		r.Get("/unknown_faces/{filename}", pagesHandler.UnknownImage)
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(static.GetFileSystem())))
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(5 * time.Minute))

		r.Get("/health", handlers.HealthCheck)
		r.Get("/gallery", galleryHandler.Get)
		r.Post("/gallery/reload", galleryHandler.Reload)
		r.Get("/gallery/conflicts", galleryHandler.Conflicts)
		r.Get("/unknown", galleryHandler.Unknown)
	})
}
