package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/mitchellh/colorstring"
	"github.com/rotisserie/eris"
)

// ConsoleWriter renders zerolog JSON events as single coloured lines.
type ConsoleWriter struct {
	Out     io.Writer
	NoColor bool
	Verbose bool

	buffer strings.Builder
	lock   sync.Mutex
}

// NewConsoleWriter returns a ConsoleWriter printing to out.
func NewConsoleWriter(out io.Writer) *ConsoleWriter {
	return &ConsoleWriter{Out: out}
}

func (w *ConsoleWriter) Write(p []byte) (n int, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	var evt map[string]interface{}
	d := json.NewDecoder(bytes.NewReader(p))
	d.UseNumber()
	if err := d.Decode(&evt); err != nil {
		return 0, eris.Wrapf(err, "cannot decode event: %s", p)
	}

	w.buffer.Reset()
	switch evt["level"] {
	case "fatal", "error":
		w.buffer.WriteString("[red]")
	case "warn":
		w.buffer.WriteString("[yellow]")
	case "debug", "trace":
		w.buffer.WriteString("[blue]")
	default:
		w.buffer.WriteString("[green]")
	}

	if component, ok := evt["component"].(string); ok {
		w.buffer.WriteString(component + ": ")
	}
	if evt["level"] == "error" {
		w.buffer.WriteString("Error: ")
	}
	if msg, ok := evt["message"].(string); ok {
		w.buffer.WriteString(msg)
	}

	keys := make([]string, 0, len(evt))
	for k := range evt {
		switch k {
		case "level", "message", "component", "time", "error":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		w.buffer.WriteString(fmt.Sprintf(" [dark_gray]%s=[reset]%v", k, evt[k]))
	}

	if details, ok := evt["error"].(string); ok {
		w.buffer.WriteString("\n")
		w.buffer.WriteString(details)
	}

	w.buffer.WriteString("[reset]\n")
	c := colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: w.NoColor,
		Reset:   true,
	}
	if _, err := io.WriteString(w.Out, c.Color(w.buffer.String())); err != nil {
		return 0, err
	}
	return len(p), nil
}
