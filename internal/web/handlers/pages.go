package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/facecam/internal/constants"
	"github.com/kozaktomas/facecam/internal/gallery"
)

// PagesHandler serves the HTML UI and the register/label form posts.
type PagesHandler struct {
	gallery *gallery.Gallery
	tmpl    *template.Template
}

// NewPagesHandler creates a new pages handler.
func NewPagesHandler(g *gallery.Gallery, tmpl *template.Template) *PagesHandler {
	return &PagesHandler{gallery: g, tmpl: tmpl}
}

type indexPage struct {
	Title  string
	People []gallery.Person
}

type labelPage struct {
	Title string
	Files []gallery.UnknownFile
}

// Index renders the live view.
func (h *PagesHandler) Index(w http.ResponseWriter, r *http.Request) {
	render(w, h.tmpl, "index.html", indexPage{
		Title:  "Live",
		People: h.gallery.Snapshot().People(),
	})
}

// RegisterForm renders the upload form.
func (h *PagesHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	render(w, h.tmpl, "register.html", struct{ Title string }{Title: "Register"})
}

// Register stores an uploaded photo under known_faces/<name>/ and reloads the gallery.
func (h *PagesHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image is required")
		return
	}
	defer file.Close()

	path, err := h.gallery.Register(r.Context(), name, header.Filename, file)
	if errors.Is(err, gallery.ErrEmptyName) {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err != nil {
		log.Printf("Failed to register %s: %v", sanitizeForLog(name), err)
		respondError(w, http.StatusInternalServerError, "failed to register face")
		return
	}

	log.Printf("Registered %s for %s", path, sanitizeForLog(name))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LabelForm lists unknown crops with a name field each.
func (h *PagesHandler) LabelForm(w http.ResponseWriter, r *http.Request) {
	files, err := h.gallery.Store().Unknowns()
	if err != nil {
		log.Printf("Failed to list unknown faces: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list unknown faces")
		return
	}
	render(w, h.tmpl, "label_unknown.html", labelPage{Title: "Label", Files: files})
}

// Label moves an unknown crop to a person and reloads the gallery.
func (h *PagesHandler) Label(w http.ResponseWriter, r *http.Request) {
	filename := strings.TrimSpace(r.FormValue("filename"))
	name := strings.TrimSpace(r.FormValue("name"))
	if filename == "" {
		respondError(w, http.StatusBadRequest, "filename is required")
		return
	}
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	path, err := h.gallery.Label(r.Context(), filename, name)
	switch {
	case errors.Is(err, gallery.ErrUnknownNotFound):
		respondError(w, http.StatusNotFound, "unknown face not found")
		return
	case errors.Is(err, gallery.ErrEmptyName), errors.Is(err, gallery.ErrInvalidFilename):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("Failed to label %s: %v", sanitizeForLog(filename), err)
		respondError(w, http.StatusInternalServerError, "failed to label face")
		return
	}

	log.Printf("Labeled %s as %s", path, sanitizeForLog(name))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// UnknownImage serves one unknown crop.
func (h *PagesHandler) UnknownImage(w http.ResponseWriter, r *http.Request) {
	path, err := h.gallery.Store().UnknownPath(chi.URLParam(r, "filename"))
	if errors.Is(err, gallery.ErrUnknownNotFound) || errors.Is(err, gallery.ErrInvalidFilename) {
		respondError(w, http.StatusNotFound, "unknown face not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to open unknown face")
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, path)
}
