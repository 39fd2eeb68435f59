package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kozaktomas/facecam/internal/config"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <name> <image>",
	Short: "Add an image of a person to the known faces",
	Long: `Copy an image into the known faces directory under the given name and
reload the gallery.

Examples:
  facecam register alice ~/photos/alice.jpg
  facecam register "Jiří Novák" portrait.png`,
	Args: cobra.ExactArgs(2),
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	name, imagePath := args[0], args[1]

	f, err := os.Open(imagePath)
	if err != nil {
		return fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	ctx := context.Background()
	a, err := newApp(ctx, config.Load())
	if err != nil {
		return err
	}
	defer a.Close()

	saved, err := a.gallery.Register(ctx, name, filepath.Base(imagePath), f)
	if err != nil {
		return fmt.Errorf("failed to register %s: %w", name, err)
	}

	snap := a.gallery.Snapshot()
	fmt.Printf("Registered %s as %s\n", name, saved)
	fmt.Printf("Gallery now holds %d known faces of %d people\n", snap.Len(), len(snap.People()))
	return nil
}
