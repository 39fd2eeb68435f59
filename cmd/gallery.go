package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kozaktomas/facecam/internal/config"
	"github.com/kozaktomas/facecam/internal/database/postgres"
	"github.com/kozaktomas/facecam/internal/facematch"
	"github.com/kozaktomas/facecam/internal/gallery"
	"github.com/spf13/cobra"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Inspect and reload the known faces",
}

var galleryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known people and their images",
	Long: `List the people in the known faces directory with the number of images
each one has. This does not load the face models.

With --unknown the saved unknown face crops are listed instead.`,
	RunE: runGalleryList,
}

var galleryReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Encode all known faces and refresh the embedding cache",
	Long: `Load the face models and encode every image in the known faces directory.
When DATABASE_URL is set the encodings are stored in the PostgreSQL cache so
later starts only encode new or changed images.`,
	RunE: runGalleryReload,
}

func init() {
	rootCmd.AddCommand(galleryCmd)
	galleryCmd.AddCommand(galleryListCmd)
	galleryCmd.AddCommand(galleryReloadCmd)

	galleryListCmd.Flags().Bool("unknown", false, "List saved unknown faces instead")
	galleryListCmd.Flags().Bool("json", false, "Output as JSON")
	galleryReloadCmd.Flags().Bool("json", false, "Output as JSON")
}

type personSummary struct {
	Name   string `json:"name"`
	Images int    `json:"images"`
}

// summarizePhotos groups photos by person, keeping the store order.
func summarizePhotos(photos []gallery.Photo) []personSummary {
	var out []personSummary
	for _, p := range photos {
		if n := len(out); n > 0 && out[n-1].Name == p.Person {
			out[n-1].Images++
			continue
		}
		out = append(out, personSummary{Name: p.Person, Images: 1})
	}
	return out
}

func runGalleryList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	store := gallery.NewStore(cfg.Faces.KnownDir, cfg.Faces.UnknownDir, cfg.Faces.UploadDir)
	jsonOutput := mustGetBool(cmd, "json")

	if mustGetBool(cmd, "unknown") {
		unknowns, err := store.Unknowns()
		if err != nil {
			return fmt.Errorf("failed to list unknown faces: %w", err)
		}
		if jsonOutput {
			return outputJSON(unknowns)
		}
		if len(unknowns) == 0 {
			fmt.Println("No unknown faces found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FILENAME\tSIZE\tSAVED")
		fmt.Fprintln(w, "--------\t----\t-----")
		for _, u := range unknowns {
			fmt.Fprintf(w, "%s\t%d\t%s\n", u.Name, u.Size, u.ModTime.Format("2006-01-02 15:04:05"))
		}
		w.Flush()

		fmt.Printf("\nTotal: %d unknown faces\n", len(unknowns))
		return nil
	}

	photos, err := store.Photos()
	if err != nil {
		return fmt.Errorf("failed to list known faces: %w", err)
	}
	people := summarizePhotos(photos)
	if jsonOutput {
		return outputJSON(people)
	}
	if len(people) == 0 {
		fmt.Printf("No known faces found in %s.\n", store.KnownDir())
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tIMAGES")
	fmt.Fprintln(w, "----\t------")
	for _, p := range people {
		fmt.Fprintf(w, "%s\t%d\n", p.Name, p.Images)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d people, %d images\n", len(people), len(photos))
	return nil
}

// GalleryReloadOutput is the JSON output of gallery reload.
type GalleryReloadOutput struct {
	People          []gallery.Person     `json:"people"`
	Images          int                  `json:"images"`
	Faces           int                  `json:"faces"`
	Conflicts       []facematch.Conflict `json:"conflicts,omitempty"`
	CachedEncodings int                  `json:"cached_encodings,omitempty"`
}

func runGalleryReload(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	ctx := context.Background()

	a, err := newApp(ctx, config.Load())
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.loadGallery(ctx, jsonOutput)
	if err != nil {
		return err
	}

	out := GalleryReloadOutput{
		People:    snap.People(),
		Images:    snap.Images(),
		Faces:     snap.Len(),
		Conflicts: snap.Conflicts(),
	}
	if a.pool != nil {
		n, err := postgres.NewEmbeddingCache(a.pool).Count(ctx)
		if err != nil {
			return fmt.Errorf("counting cached encodings: %w", err)
		}
		out.CachedEncodings = n
	}

	if jsonOutput {
		return outputJSON(out)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tIMAGES\tFACES")
	fmt.Fprintln(w, "----\t------\t-----")
	for _, p := range out.People {
		fmt.Fprintf(w, "%s\t%d\t%d\n", p.Name, p.Images, p.Faces)
	}
	w.Flush()

	fmt.Printf("\nEncoded %d faces from %d images\n", out.Faces, out.Images)
	if len(out.Conflicts) > 0 {
		fmt.Printf("\nWarning: %d pairs of different people look alike:\n", len(out.Conflicts))
		for _, c := range out.Conflicts {
			fmt.Printf("  %s (%s) ~ %s (%s) at %.3f\n", c.A.Name, c.A.Path, c.B.Name, c.B.Path, c.Distance)
		}
	}
	if a.pool != nil {
		fmt.Printf("Embedding cache holds %d images\n", out.CachedEncodings)
	}
	return nil
}

// outputJSON writes data as indented JSON to stdout.
func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
