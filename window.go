package lilhelper

import (
	"fmt"
	"io"
	"strings"

	"git.sr.ht/~taiite/lilhelper/ui"
)

func (app *App) consoleWidth() int {
	if app.width == nil {
		return 0
	}
	return app.width()
}

func (app *App) addLine(line ui.Line) {
	app.writeRows(line.Render(app.consoleWidth()))
}

func (app *App) printf(head, format string, args ...interface{}) {
	app.addLine(ui.NewLineNow(head, fmt.Sprintf(format, args...)))
}

func (app *App) printTable(t *ui.Table) {
	app.writeRows(t.Render(app.consoleWidth()))
}

// writeRows writes whole rows in one call, the terminal redraws the prompt
// after each write.
func (app *App) writeRows(rows []string) {
	if len(rows) == 0 {
		return
	}
	_, _ = io.WriteString(app.console, strings.Join(rows, "\r\n")+"\r\n")
}
