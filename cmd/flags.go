package cmd

import (
	"fmt"

	"github.com/kozaktomas/facecam/internal/config"
	"github.com/spf13/cobra"
)

// mustGetBool gets a bool flag value or panics if the flag doesn't exist.
// This is appropriate for flags defined in init() - errors indicate programming bugs.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

// mustGetInt gets an int flag value or panics if the flag doesn't exist.
func mustGetInt(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

// mustGetString gets a string flag value or panics if the flag doesn't exist.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

// addCaptureFlags registers the flags shared by commands that open the camera.
func addCaptureFlags(cmd *cobra.Command) {
	cmd.Flags().String("device", "", "Capture device (camera index, /dev/videoN or a directory of images)")
	cmd.Flags().String("backend", "", "Capture backend: opencv, v4l2 or directory")
}

// applyCaptureFlags overrides capture config with flags that were set explicitly.
func applyCaptureFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("device") {
		cfg.Capture.Device = mustGetString(cmd, "device")
	}
	if cmd.Flags().Changed("backend") {
		cfg.Capture.Backend = mustGetString(cmd, "backend")
	}
}
