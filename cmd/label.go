package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/facecam/internal/config"
	"github.com/kozaktomas/facecam/internal/gallery"
	"github.com/spf13/cobra"
)

var labelCmd = &cobra.Command{
	Use:   "label <filename> <name>",
	Short: "Move a saved unknown face to a known person",
	Long: `Move a crop from the unknown faces directory into the known faces of the
given person and reload the gallery.

Use 'facecam gallery list --unknown' to see the saved crops.`,
	Args: cobra.ExactArgs(2),
	RunE: runLabel,
}

func init() {
	rootCmd.AddCommand(labelCmd)
}

func runLabel(cmd *cobra.Command, args []string) error {
	filename, name := args[0], args[1]

	ctx := context.Background()
	a, err := newApp(ctx, config.Load())
	if err != nil {
		return err
	}
	defer a.Close()

	saved, err := a.gallery.Label(ctx, filename, name)
	if errors.Is(err, gallery.ErrUnknownNotFound) {
		return fmt.Errorf("no unknown face named %s in %s", filename, a.gallery.Store().UnknownDir())
	}
	if err != nil {
		return fmt.Errorf("failed to label %s: %w", filename, err)
	}

	fmt.Printf("Labeled %s as %s (%s)\n", filename, name, saved)
	return nil
}
