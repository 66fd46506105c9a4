package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Attribute keys the text handler renders specially.
const (
	// KeyOp names the manager operation (create, rollback, cleanup...).
	KeyOp = "op"
	// KeyOpID correlates every line of one operation.
	KeyOpID = "op_id"
	// KeyRisk carries a risk level and is coloured by tier.
	KeyRisk = "risk"
)

// shortIDLen is how much of an op_id the text handler prints.
const shortIDLen = 8

// palette is nil when colour is off.
type palette struct {
	time, key, op *color.Color
	levels        map[slog.Level]*color.Color
	risk          map[string]*color.Color
}

func newPalette() *palette {
	return &palette{
		time: color.New(color.FgHiBlack),
		key:  color.New(color.FgCyan),
		op:   color.New(color.FgBlue),
		levels: map[slog.Level]*color.Color{
			slog.LevelDebug: color.New(color.FgMagenta),
			slog.LevelInfo:  color.New(color.FgGreen),
			slog.LevelWarn:  color.New(color.FgYellow),
			slog.LevelError: color.New(color.FgRed, color.Bold),
		},
		risk: map[string]*color.Color{
			"LOW":      color.New(color.FgGreen),
			"MEDIUM":   color.New(color.FgYellow),
			"HIGH":     color.New(color.FgHiRed),
			"CRITICAL": color.New(color.FgRed, color.Bold),
		},
	}
}

func (p *palette) levelColor(l slog.Level) *color.Color {
	switch {
	case l >= slog.LevelError:
		return p.levels[slog.LevelError]
	case l >= slog.LevelWarn:
		return p.levels[slog.LevelWarn]
	case l >= slog.LevelInfo:
		return p.levels[slog.LevelInfo]
	default:
		return p.levels[slog.LevelDebug]
	}
}

// Handler is a slog.Handler producing one human-readable line per record:
//
//	15:04:05 INFO  [rollback 1a2b3c4d] restored file path=src/main.go
//
// The op and op_id attributes become the bracketed prefix. Values that
// look like credentials are masked.
type Handler struct {
	opts   slog.HandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	colors *palette

	op, opID string
	prefix   string // preformatted attributes from WithAttrs
	groups   []string
}

// NewHandler creates a text handler. Colour is used when out is a
// terminal that accepts it.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	h := &Handler{opts: *opts, out: out, mu: &sync.Mutex{}}
	if SupportsColor(out) {
		h.colors = newPalette()
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats r into a buffer and writes it with a single call.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		buf.WriteString(h.paint(h.timeColor(), r.Time.Format(time.TimeOnly)))
		buf.WriteByte(' ')
	}

	level := fmt.Sprintf("%-5s", levelName(r.Level))
	if h.colors != nil {
		level = h.colors.levelColor(r.Level).Sprint(level)
	}
	buf.WriteString(level)
	buf.WriteByte(' ')

	op, opID := h.op, h.opID
	var attrs bytes.Buffer
	attrs.WriteString(h.prefix)
	r.Attrs(func(a slog.Attr) bool {
		switch {
		case len(h.groups) == 0 && a.Key == KeyOp:
			op = a.Value.String()
		case len(h.groups) == 0 && a.Key == KeyOpID:
			opID = a.Value.String()
		default:
			h.writeAttr(&attrs, h.groups, a)
		}
		return true
	})

	if tag := opTag(op, opID); tag != "" {
		buf.WriteString(h.paint(h.opColor(), tag))
		buf.WriteByte(' ')
	}
	buf.WriteString(r.Message)
	buf.Write(attrs.Bytes())
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

// WithAttrs returns a handler that prints attrs on every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	nh := *h
	var b bytes.Buffer
	b.WriteString(h.prefix)
	for _, a := range attrs {
		switch {
		case len(h.groups) == 0 && a.Key == KeyOp:
			nh.op = a.Value.String()
		case len(h.groups) == 0 && a.Key == KeyOpID:
			nh.opID = a.Value.String()
		default:
			h.writeAttr(&b, h.groups, a)
		}
	}
	nh.prefix = b.String()
	return &nh
}

// WithGroup returns a handler whose later keys are prefixed with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.groups = append(append([]string(nil), h.groups...), name)
	return &nh
}

func (h *Handler) writeAttr(b *bytes.Buffer, groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		inner := groups
		if a.Key != "" {
			inner = append(append([]string(nil), groups...), a.Key)
		}
		for _, ga := range a.Value.Group() {
			h.writeAttr(b, inner, ga)
		}
		return
	}

	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}

	value := redactValue(a.Key, a.Value)
	if a.Key == KeyRisk && h.colors != nil {
		if c, ok := h.colors.risk[value]; ok {
			value = c.Sprint(value)
		}
	}
	if strings.ContainsAny(value, " \t\n\"=") {
		value = fmt.Sprintf("%q", value)
	}

	b.WriteByte(' ')
	b.WriteString(h.paint(h.keyColor(), key))
	b.WriteByte('=')
	b.WriteString(value)
}

func (h *Handler) paint(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

func (h *Handler) timeColor() *color.Color {
	if h.colors == nil {
		return nil
	}
	return h.colors.time
}

func (h *Handler) keyColor() *color.Color {
	if h.colors == nil {
		return nil
	}
	return h.colors.key
}

func (h *Handler) opColor() *color.Color {
	if h.colors == nil {
		return nil
	}
	return h.colors.op
}

// opTag renders "[op shortid]", or "" when neither is set.
func opTag(op, id string) string {
	if len(id) > shortIDLen {
		id = id[:shortIDLen]
	}
	switch {
	case op == "" && id == "":
		return ""
	case id == "":
		return "[" + op + "]"
	case op == "":
		return "[" + id + "]"
	}
	return "[" + op + " " + id + "]"
}

// levelName maps LevelTrace to TRACE; slog would print DEBUG-4.
func levelName(l slog.Level) string {
	if l <= LevelTrace {
		return "TRACE"
	}
	return l.String()
}
