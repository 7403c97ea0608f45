package main

import (
	"log"
	"os"
	"time"

	"punchclock/internal/core/model"
	"punchclock/internal/core/tracker"
	"punchclock/internal/platform"
	"punchclock/internal/storage"
	"punchclock/internal/ui/board"
	"punchclock/internal/ui/tray"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const appName = "Punchclock"

func main() {
	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		log.Printf("single instance: %v", err)
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	store, err := storage.Open(appName)
	if err != nil {
		log.Printf("open store: %v", err)
		return
	}

	engine, err := tracker.New(store, tracker.Config{TickInterval: time.Second})
	if err != nil {
		log.Printf("recover session state: %v", err)
		return
	}

	fyneApp := app.NewWithID("com.punchclock.app")
	fyneApp.SetIcon(theme.HistoryIcon())
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		log.Printf("system tray unsupported on this platform")
		return
	}

	trayWindow := fyneApp.NewWindow(appName)
	trayWindow.SetContent(widget.NewLabel("Punchclock is running in the system tray."))
	trayWindow.SetCloseIntercept(func() {
		trayWindow.Hide()
	})
	trayWindow.Hide()
	desktopApp.SetSystemTrayWindow(trayWindow)
	desktopApp.SetSystemTrayIcon(theme.HistoryIcon())

	boardWindow := board.New(fyneApp, board.Callbacks{
		OnToggleClock: func() {
			if err := engine.ToggleClock(); err != nil {
				log.Printf("toggle clock: %v", err)
			}
		},
		OnToggleBreak: func() {
			if err := engine.ToggleBreak(); err != nil {
				log.Printf("toggle break: %v", err)
			}
		},
		OnSetManualTime: func(day model.Day, hours, minutes int) {
			if err := engine.SetManualTime(day, hours, minutes); err != nil {
				log.Printf("set manual time: %v", err)
			}
		},
		OnResetWeek: func() {
			if err := engine.ResetWeek(); err != nil {
				log.Printf("reset week: %v", err)
			}
		},
		OnAutostart: func(enabled bool) {
			execPath, err := os.Executable()
			if err != nil {
				log.Printf("autostart: resolve executable: %v", err)
				return
			}
			if enabled {
				err = platform.EnableAutostart(appName, execPath)
			} else {
				err = platform.DisableAutostart(appName)
			}
			if err != nil {
				log.Printf("autostart: %v", err)
			}
		},
	})

	trayManager := tray.New(desktopApp, tray.Callbacks{
		OnToggleClock: func() {
			if err := engine.ToggleClock(); err != nil {
				log.Printf("toggle clock: %v", err)
			}
		},
		OnToggleBreak: func() {
			if err := engine.ToggleBreak(); err != nil {
				log.Printf("toggle break: %v", err)
			}
		},
		OnShowWindow: func() {
			boardWindow.Show()
		},
		OnQuit: func() {
			engine.Stop()
			fyneApp.Quit()
		},
	})

	render := func(status tracker.Status) {
		boardWindow.Render(status)
		trayManager.SetClockedIn(status.State != tracker.StateClockedOut)
		trayManager.SetOnBreak(status.State == tracker.StateOnBreak)
		trayManager.SetStatus(statusLine(status))
	}
	render(engine.Status())

	events := engine.Subscribe(8)
	go func() {
		for event := range events {
			status := tracker.Status{
				State:          event.State,
				ElapsedSeconds: event.ElapsedSeconds,
				Week:           event.Week,
			}
			fyne.Do(func() {
				render(status)
			})
		}
	}()

	boardWindow.Show()
	fyneApp.Run()
}

func statusLine(status tracker.Status) string {
	switch status.State {
	case tracker.StateWorking:
		return "working " + model.FormatClock(status.ElapsedSeconds)
	case tracker.StateOnBreak:
		return "on break " + model.FormatClock(status.ElapsedSeconds)
	}
	return "clocked out"
}
