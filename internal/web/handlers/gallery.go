package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/kozaktomas/facecam/internal/facematch"
	"github.com/kozaktomas/facecam/internal/gallery"
)

// GalleryHandler exposes the known-face gallery as JSON.
type GalleryHandler struct {
	gallery *gallery.Gallery
}

// NewGalleryHandler creates a new gallery handler.
func NewGalleryHandler(g *gallery.Gallery) *GalleryHandler {
	return &GalleryHandler{gallery: g}
}

// GalleryResponse describes the current snapshot.
type GalleryResponse struct {
	People    []gallery.Person   `json:"people"`
	Faces     int                `json:"faces"`
	Images    int                `json:"images"`
	Tolerance float64            `json:"tolerance"`
	Strategy  facematch.Strategy `json:"strategy"`
	LoadedAt  time.Time          `json:"loaded_at"`
}

func galleryResponse(snap *gallery.Snapshot) GalleryResponse {
	return GalleryResponse{
		People:    snap.People(),
		Faces:     snap.Len(),
		Images:    snap.Images(),
		Tolerance: snap.Tolerance(),
		Strategy:  snap.Strategy(),
		LoadedAt:  snap.LoadedAt(),
	}
}

// Get returns the people in the gallery with their counts.
func (h *GalleryHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, galleryResponse(h.gallery.Snapshot()))
}

// Reload rescans the known-faces directory.
func (h *GalleryHandler) Reload(w http.ResponseWriter, r *http.Request) {
	snap, err := h.gallery.Reload(r.Context())
	if err != nil {
		log.Printf("Gallery reload failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to reload gallery")
		return
	}
	respondJSON(w, http.StatusOK, galleryResponse(snap))
}

// ConflictsResponse lists faces that can be recognized as more than one person.
type ConflictsResponse struct {
	Conflicts []facematch.Conflict `json:"conflicts"`
	Count     int                  `json:"count"`
}

// Conflicts reports known faces of different people within tolerance of each other.
func (h *GalleryHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	conflicts := h.gallery.Snapshot().Conflicts()
	if conflicts == nil {
		conflicts = []facematch.Conflict{}
	}
	respondJSON(w, http.StatusOK, ConflictsResponse{Conflicts: conflicts, Count: len(conflicts)})
}

// Unknown lists the saved unknown crops.
func (h *GalleryHandler) Unknown(w http.ResponseWriter, r *http.Request) {
	files, err := h.gallery.Store().Unknowns()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list unknown faces")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"files": files})
}
