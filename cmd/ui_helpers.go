package cmd

import (
	"fmt"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"

	"sqlpilot/cli/internal/terminal"
)

// spinnerFrames are braille frames similar to the docker CLI.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// startSpinner animates text in a pterm area while a blocking call runs.
// The returned stop function removes the area and restores the cursor; it
// is safe to call more than once. Nothing is drawn when stdout is not a
// terminal, so piped output only carries results.
func startSpinner(text string) func() {
	if !terminal.Interactive() {
		return func() {}
	}

	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		cursor.Show()
		return func() {}
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(100 * time.Millisecond)
		defer t.Stop()
		start := time.Now()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			case <-t.C:
				elapsed := time.Since(start).Truncate(time.Second)
				area.Update(fmt.Sprintf("%s %s %s", spinnerFrames[i%len(spinnerFrames)], text,
					pterm.NewStyle(pterm.FgGray).Sprint(elapsed)))
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
			_ = area.Stop()
			cursor.Show()
		})
	}
}
