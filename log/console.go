// Copyright (c) 2019 Perlin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	colorBold = iota + 1
	colorFaint
)

const (
	colorRed = iota + 31
	colorGreen
	colorYellow
)

var consoleBufPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 100))
	},
}

// ConsoleWriter parses the JSON input and writes it in an
// (optionally) colorized, human-friendly format to Out.
type ConsoleWriter struct {
	// Out is the output destination.
	Out io.Writer

	// NoColor disables the colorized output.
	NoColor bool

	// TimeFormat specifies the format for timestamp in output.
	TimeFormat string

	// FilteredModules restricts output to the listed modules. Empty means
	// every module is written.
	FilteredModules map[string]struct{}
}

func FilterFor(modules ...string) func(w *ConsoleWriter) {
	return func(w *ConsoleWriter) {
		for _, module := range modules {
			w.FilteredModules[module] = struct{}{}
		}
	}
}

func NoColor() func(w *ConsoleWriter) {
	return func(w *ConsoleWriter) {
		w.NoColor = true
	}
}

// NewConsoleWriter creates and initializes a new ConsoleWriter.
func NewConsoleWriter(writer io.Writer, options ...func(w *ConsoleWriter)) ConsoleWriter {
	if writer == nil {
		writer = os.Stderr
	}

	w := ConsoleWriter{
		Out:             writer,
		TimeFormat:      time.Kitchen,
		FilteredModules: make(map[string]struct{}),
	}

	for _, opt := range options {
		opt(&w)
	}

	return w
}

// Write transforms the JSON input and appends it to w.Out.
func (w ConsoleWriter) Write(p []byte) (n int, err error) {
	var event map[string]interface{}

	decoder := json.NewDecoder(bytes.NewReader(p))
	decoder.UseNumber()

	if err := decoder.Decode(&event); err != nil {
		return n, fmt.Errorf("cannot decode event: %s", err)
	}

	if module, ok := event[KeyModule].(string); ok && len(w.FilteredModules) > 0 {
		if _, filtered := w.FilteredModules[module]; !filtered {
			return len(p), nil
		}
	}

	delete(event, KeyModule)

	var buf = consoleBufPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		consoleBufPool.Put(buf)
	}()

	buf.WriteString(w.timestamp(event[zerolog.TimestampFieldName]))
	buf.WriteByte(' ')
	buf.WriteString(w.level(event[zerolog.LevelFieldName]))

	if msg, ok := event[zerolog.MessageFieldName]; ok && msg != "" {
		buf.WriteByte(' ')
		fmt.Fprintf(buf, "%s", msg)
	}

	w.writeFields(event, buf)

	_ = buf.WriteByte('\n')
	_, err = buf.WriteTo(w.Out)

	return len(p), err
}

// writeFields appends formatted key-value pairs to buf, error first.
func (w ConsoleWriter) writeFields(evt map[string]interface{}, buf *bytes.Buffer) {
	var fields = make([]string, 0, len(evt))
	for field := range evt {
		switch field {
		case zerolog.LevelFieldName, zerolog.TimestampFieldName, zerolog.MessageFieldName, zerolog.ErrorFieldName:
			continue
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)

	if _, ok := evt[zerolog.ErrorFieldName]; ok {
		fields = append([]string{zerolog.ErrorFieldName}, fields...)
	}

	for _, field := range fields {
		color := colorFaint
		if field == zerolog.ErrorFieldName {
			color = colorRed
		}

		buf.WriteByte(' ')
		buf.WriteString(colorize(field+"=", color, w.NoColor))

		switch value := evt[field].(type) {
		case string:
			if needsQuote(value) {
				value = strconv.Quote(value)
			}
			buf.WriteString(colorize(value, color, w.NoColor || color == colorFaint))
		case json.Number:
			buf.WriteString(value.String())
		default:
			b, err := json.Marshal(value)
			if err != nil {
				fmt.Fprintf(buf, colorize("[error: %v]", colorRed, w.NoColor), err)
			} else {
				buf.Write(b)
			}
		}
	}
}

func (w ConsoleWriter) timestamp(i interface{}) string {
	t := "<nil>"
	switch tt := i.(type) {
	case string:
		ts, err := time.Parse(time.RFC3339, tt)
		if err != nil {
			t = tt
		} else {
			t = ts.Format(w.TimeFormat)
		}
	case json.Number:
		t = tt.String()
	}
	return colorize(t, colorFaint, w.NoColor)
}

func (w ConsoleWriter) level(i interface{}) string {
	ll, ok := i.(string)
	if !ok {
		return ""
	}

	switch ll {
	case "debug":
		return colorize("DBG", colorYellow, w.NoColor)
	case "info":
		return colorize("INF", colorGreen, w.NoColor)
	case "warn":
		return colorize("WRN", colorRed, w.NoColor)
	case "error":
		return colorize(colorize("ERR", colorRed, w.NoColor), colorBold, w.NoColor)
	case "fatal":
		return colorize(colorize("FTL", colorRed, w.NoColor), colorBold, w.NoColor)
	case "panic":
		return colorize(colorize("PNC", colorRed, w.NoColor), colorBold, w.NoColor)
	default:
		return colorize("???", colorBold, w.NoColor)
	}
}

// needsQuote returns true when the string s should be quoted in output.
func needsQuote(s string) bool {
	for i := range s {
		if s[i] < 0x20 || s[i] > 0x7e || s[i] == ' ' || s[i] == '\\' || s[i] == '"' {
			return true
		}
	}
	return false
}

// colorize returns the string s wrapped in ANSI code c, unless disabled is true.
func colorize(s interface{}, c int, disabled bool) string {
	if disabled {
		return fmt.Sprintf("%s", s)
	}
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}
