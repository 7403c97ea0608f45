package board

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"punchclock/internal/core/model"
	"punchclock/internal/core/tracker"
)

// Callbacks defines board action handlers. The window holds no state of its
// own beyond what it last rendered; every action goes through a callback.
type Callbacks struct {
	OnToggleClock   func()
	OnToggleBreak   func()
	OnSetManualTime func(day model.Day, hours, minutes int)
	OnResetWeek     func()
	OnAutostart     func(enabled bool)
}

// Window is the main board: running clock, week table, command buttons, and
// the manual-edit form.
type Window struct {
	window      fyne.Window
	callbacks   Callbacks
	elapsed     *widget.Label
	stateLabel  *widget.Label
	clockButton *widget.Button
	breakButton *widget.Button
	dayValues   [7]*widget.Label
	editDay     *widget.Select
	editHours   *widget.Entry
	editMinutes *widget.Entry
}

// New creates the board window.
func New(app fyne.App, callbacks Callbacks) *Window {
	window := app.NewWindow("Punchclock")

	board := &Window{
		window:    window,
		callbacks: callbacks,
	}

	board.elapsed = widget.NewLabelWithStyle(model.FormatClock(0), fyne.TextAlignCenter, fyne.TextStyle{Bold: true, Monospace: true})
	board.stateLabel = widget.NewLabelWithStyle("Clocked out", fyne.TextAlignCenter, fyne.TextStyle{})

	board.clockButton = widget.NewButton("Clock in", func() {
		if board.callbacks.OnToggleClock != nil {
			board.callbacks.OnToggleClock()
		}
	})
	board.breakButton = widget.NewButton("Start break", func() {
		if board.callbacks.OnToggleBreak != nil {
			board.callbacks.OnToggleBreak()
		}
	})
	board.breakButton.Disable()

	dayRows := make([]fyne.CanvasObject, 0, len(model.Days))
	for _, day := range model.Days {
		value := widget.NewLabelWithStyle(model.FormatHoursMinutes(0), fyne.TextAlignTrailing, fyne.TextStyle{Monospace: true})
		board.dayValues[day] = value
		dayRows = append(dayRows, container.NewHBox(widget.NewLabel(day.String()), layout.NewSpacer(), value))
	}

	board.editDay = widget.NewSelect(dayNames(), nil)
	board.editDay.SetSelected(model.Monday.String())
	board.editHours = widget.NewEntry()
	board.editHours.SetPlaceHolder("0")
	board.editMinutes = widget.NewEntry()
	board.editMinutes.SetPlaceHolder("0")

	setButton := widget.NewButton("Set", board.handleManualSet)

	resetButton := widget.NewButton("Reset week", func() {
		dialog.ShowConfirm(
			"Reset week",
			"Zero all seven days and discard any running session?",
			func(confirmed bool) {
				if confirmed && board.callbacks.OnResetWeek != nil {
					board.callbacks.OnResetWeek()
				}
			},
			window,
		)
	})

	autostart := widget.NewCheck("Start at login", func(enabled bool) {
		if board.callbacks.OnAutostart != nil {
			board.callbacks.OnAutostart(enabled)
		}
	})

	content := container.NewVBox(
		board.elapsed,
		board.stateLabel,
		container.NewGridWithColumns(2, board.clockButton, board.breakButton),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("This week", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewVBox(dayRows...),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Correct a day", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(board.editDay, board.editHours, widget.NewLabel("h"), board.editMinutes, widget.NewLabel("m"), setButton),
		container.NewHBox(resetButton, layout.NewSpacer(), autostart),
	)

	window.SetContent(container.NewPadded(content))
	window.Resize(fyne.NewSize(360, 520))
	window.SetCloseIntercept(func() {
		window.Hide()
	})

	return board
}

// Show displays the board window.
func (board *Window) Show() {
	board.window.Show()
	board.window.RequestFocus()
}

// Render updates every displayed value from the engine's observable status.
func (board *Window) Render(status tracker.Status) {
	board.elapsed.SetText(model.FormatClock(status.ElapsedSeconds))

	switch status.State {
	case tracker.StateWorking:
		board.stateLabel.SetText("Working")
		board.clockButton.SetText("Clock out")
		board.breakButton.SetText("Start break")
		board.breakButton.Enable()
	case tracker.StateOnBreak:
		board.stateLabel.SetText("On break")
		board.clockButton.SetText("Clock out")
		board.breakButton.SetText("Resume work")
		board.breakButton.Enable()
	default:
		board.stateLabel.SetText("Clocked out")
		board.clockButton.SetText("Clock in")
		board.breakButton.SetText("Start break")
		board.breakButton.Disable()
	}

	for _, day := range model.Days {
		board.dayValues[day].SetText(model.FormatHoursMinutes(status.Week.DailySeconds[day]))
	}
}

func (board *Window) handleManualSet() {
	day := model.Monday
	for _, candidate := range model.Days {
		if candidate.String() == board.editDay.Selected {
			day = candidate
			break
		}
	}

	hours := clampNonNegative(board.editHours.Text)
	minutes := clampNonNegative(board.editMinutes.Text)
	if board.callbacks.OnSetManualTime != nil {
		board.callbacks.OnSetManualTime(day, hours, minutes)
	}
	board.editHours.SetText("")
	board.editMinutes.SetText("")
}

// clampNonNegative maps non-numeric or negative input to zero; the engine
// assumes clean values.
func clampNonNegative(value string) int {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}

func dayNames() []string {
	names := make([]string, 0, len(model.Days))
	for _, day := range model.Days {
		names = append(names, day.String())
	}
	return names
}
