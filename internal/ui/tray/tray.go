package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnToggleClock func()
	OnToggleBreak func()
	OnShowWindow  func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	clockItem   *fyne.MenuItem
	breakItem   *fyne.MenuItem
	callbacks   Callbacks
	clockedIn   bool
	onBreak     bool
	statusLabel string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Status: clocked out", nil)
	manager.statusItem.Disabled = true

	manager.clockItem = fyne.NewMenuItem("Clock in", func() {
		if manager.callbacks.OnToggleClock != nil {
			manager.callbacks.OnToggleClock()
		}
	})

	manager.breakItem = fyne.NewMenuItem("Start break", func() {
		if manager.callbacks.OnToggleBreak != nil {
			manager.callbacks.OnToggleBreak()
		}
	})
	manager.breakItem.Disabled = true

	app.SetSystemTrayMenu(manager.buildMenu())
	return manager
}

// SetStatus updates the status line shown at the top of the menu.
func (manager *Manager) SetStatus(status string) {
	manager.statusLabel = status
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	manager.refreshMenu()
}

// SetClockedIn switches the clock item between in and out.
func (manager *Manager) SetClockedIn(clockedIn bool) {
	manager.clockedIn = clockedIn
	if clockedIn {
		manager.clockItem.Label = "Clock out"
	} else {
		manager.clockItem.Label = "Clock in"
	}
	manager.breakItem.Disabled = !clockedIn
	manager.refreshMenu()
}

// SetOnBreak switches the break item between break and resume.
func (manager *Manager) SetOnBreak(onBreak bool) {
	manager.onBreak = onBreak
	if onBreak {
		manager.breakItem.Label = "Resume work"
	} else {
		manager.breakItem.Label = "Start break"
	}
	manager.refreshMenu()
}

func (manager *Manager) buildMenu() *fyne.Menu {
	show := fyne.NewMenuItem("Show window", func() {
		if manager.callbacks.OnShowWindow != nil {
			manager.callbacks.OnShowWindow()
		}
	})
	quit := fyne.NewMenuItem("Quit", func() {
		if manager.callbacks.OnQuit != nil {
			manager.callbacks.OnQuit()
		}
	})
	return fyne.NewMenu("Punchclock", manager.statusItem, show, manager.clockItem, manager.breakItem, quit)
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.buildMenu())
	}
}
