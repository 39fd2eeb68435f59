package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/kozaktomas/facecam/internal/config"
	"github.com/kozaktomas/facecam/internal/pipeline"
	"github.com/kozaktomas/facecam/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Facecam web server.
The server streams annotated camera frames as MJPEG on /video_feed and
provides pages for registering new people and labeling unknown faces.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (default from WEB_PORT or 5000)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from WEB_HOST or 0.0.0.0)")
	addCaptureFlags(serveCmd)
}

// applyServeFlags overrides web config with flags that were set explicitly.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		cfg.Web.Port = mustGetInt(cmd, "port")
	}
	if cmd.Flags().Changed("host") {
		cfg.Web.Host = mustGetString(cmd, "host")
	}
	applyCaptureFlags(cmd, cfg)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	applyServeFlags(cmd, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.gallery.Store().EnsureDirs(); err != nil {
		return err
	}

	snap, err := a.loadGallery(ctx, false)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d known faces of %d people\n", snap.Len(), len(snap.People()))

	src, err := openSource(&cfg.Capture)
	if err != nil {
		return err
	}
	proc := pipeline.NewProcessor(a.detector, a.gallery, pipeline.Options{
		SaveUnknown: cfg.Faces.SaveUnknown,
		JPEGQuality: cfg.Stream.JPEGQuality,
	})
	feed := pipeline.NewFeed(src, proc)
	defer func() {
		if err := feed.Close(); err != nil {
			fmt.Printf("Warning: failed to release capture: %v\n", err)
		}
	}()

	server := web.NewServer(cfg, a.gallery, feed)
	ln, err := server.Listen()
	if err != nil {
		return err
	}

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		fmt.Printf("Warning: failed to notify systemd: %v\n", err)
	} else if sent {
		fmt.Println("Notified systemd that the service is ready")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		fmt.Println("\nShutting down...")
		_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
		// Open streams end once the feed is closed.
		if err := feed.Close(); err != nil {
			fmt.Printf("Warning: failed to release capture: %v\n", err)
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Facecam on http://%s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Serve(ln); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
