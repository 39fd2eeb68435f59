package opencv

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Window is a HighGUI window.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show draws img into the window.
func (w *Window) Show(img image.Image) error {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("converting frame: %w", err)
	}
	defer mat.Close()

	w.win.IMShow(mat)
	return nil
}

// WaitKey pumps window events for up to ms milliseconds and returns the pressed key, or -1.
func (w *Window) WaitKey(ms int) int {
	return w.win.WaitKey(ms)
}

func (w *Window) Close() error {
	if err := w.win.Close(); err != nil {
		return fmt.Errorf("closing window: %w", err)
	}
	return nil
}
