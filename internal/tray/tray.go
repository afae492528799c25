// Package tray provides a system tray menu for pausing classification and
// showing the current gesture.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle  func(enabled bool)
	onPreview func()
	onQuit    func()
	enabled   bool
	last      string
	mu        sync.RWMutex

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuLastGesture *systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnPreview sets the callback for the "Open Preview" menu item.
func (t *Tray) OnPreview(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPreview = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand-pose classifier")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume classification")
	systray.AddSeparator()

	t.menuLastGesture = systray.AddMenuItem(lastTitle(t.last), "Current gesture")
	t.menuLastGesture.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuPreview := systray.AddMenuItem("Open Preview...", "Open the live preview in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuPreview.ClickedCh:
				t.handlePreview()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle flips the enabled state and notifies the toggle callback.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handlePreview() {
	t.mu.RLock()
	callback := t.onPreview
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetLastGesture updates the gesture shown in the menu. It reports whether
// the label changed.
func (t *Tray) SetLastGesture(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if name == t.last {
		return false
	}
	t.last = name

	if t.menuLastGesture != nil {
		t.menuLastGesture.SetTitle(lastTitle(name))
	}
	return true
}

// LastGesture returns the label most recently passed to SetLastGesture.
func (t *Tray) LastGesture() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Paused"
}

func lastTitle(name string) string {
	if name == "" {
		return "Last: none"
	}
	return fmt.Sprintf("Last: %s", name)
}
