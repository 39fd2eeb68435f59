package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "facecam",
	Short: "Live webcam face recognition",
	Long: `Facecam reads frames from a webcam, detects faces, matches them against
a directory of known people and draws the results onto the frame.

Frames are served as an MJPEG stream with a small web UI for registering
new people, or shown in a local desktop window.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
