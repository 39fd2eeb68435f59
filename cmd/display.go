package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kozaktomas/facecam/internal/config"
	"github.com/kozaktomas/facecam/internal/display"
	"github.com/kozaktomas/facecam/internal/opencv"
	"github.com/kozaktomas/facecam/internal/pipeline"
	"github.com/spf13/cobra"
)

var displayCmd = &cobra.Command{
	Use:   "display",
	Short: "Show recognized faces in a desktop window",
	Long: `Run face recognition on the camera and show the annotated frames in a
local window. Press q in the window to quit.

Unknown faces are labeled but not saved in this mode.`,
	RunE: runDisplay,
}

func init() {
	rootCmd.AddCommand(displayCmd)

	displayCmd.Flags().String("title", "Video", "Window title")
	addCaptureFlags(displayCmd)
}

func runDisplay(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	applyCaptureFlags(cmd, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.loadGallery(ctx, false)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d known faces of %d people\n", snap.Len(), len(snap.People()))

	src, err := openSource(&cfg.Capture)
	if err != nil {
		return err
	}
	proc := pipeline.NewProcessor(a.detector, a.gallery, pipeline.Options{})
	feed := pipeline.NewFeed(src, proc)

	fmt.Println("Press q in the window to quit")
	if err := display.Run(ctx, feed, opencv.NewWindow(mustGetString(cmd, "title"))); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	return nil
}
