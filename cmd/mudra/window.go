package main

import (
	"os"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/app"
)

// runWindow shows the latest annotated frame until q or Esc is pressed.
// It must run on the main goroutine.
func runWindow(a *app.App, sig <-chan os.Signal) {
	window := gocv.NewWindow("Mudra")
	defer window.Close()

	var shown uint64
	have := false
	for {
		select {
		case <-sig:
			return
		case <-a.Done():
			return
		default:
		}

		if snap, ok := a.Latest(); ok && (!have || snap.Seq != shown) {
			if img, err := gocv.IMDecode(snap.JPEG, gocv.IMReadColor); err == nil {
				if !img.Empty() {
					window.IMShow(img)
				}
				img.Close()
			}
			shown, have = snap.Seq, true
		}

		switch window.WaitKey(10) {
		case 'q', 27:
			return
		}
	}
}
