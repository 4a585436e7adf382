package logging

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

const timeLayout = "2006-01-02 15:04:05"

// LineHandler пишет записи в виде
//
//	[2006-01-02 15:04:05] [INFO]: message key=value
//
// При color=true уровень раскрашивается (если writer это поддерживает).
type LineHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	styles map[slog.Level]lipgloss.Style
	attrs  string // уже отформатированные атрибуты из WithAttrs
	prefix string // текущая группа, "a.b."
}

func NewLineHandler(w io.Writer, level slog.Leveler, color bool) *LineHandler {
	h := &LineHandler{mu: &sync.Mutex{}, w: w, level: level}
	if color {
		r := lipgloss.NewRenderer(w)
		h.styles = map[slog.Level]lipgloss.Style{
			slog.LevelDebug: r.NewStyle().Foreground(lipgloss.Color("#5f87ff")),
			slog.LevelInfo:  r.NewStyle().Foreground(lipgloss.Color("#00af00")),
			slog.LevelWarn:  r.NewStyle().Foreground(lipgloss.Color("#d7af00")),
			slog.LevelError: r.NewStyle().Foreground(lipgloss.Color("#d70000")).Bold(true),
		}
	}
	return h
}

func (h *LineHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(r.Time.Format(timeLayout))
	b.WriteString("] [")
	b.WriteString(h.levelLabel(r.Level))
	b.WriteString("]: ")
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.prefix, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	for _, a := range attrs {
		appendAttr(&b, h.prefix, a)
	}
	c := *h
	c.attrs += b.String()
	return &c
}

func (h *LineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix += name + "."
	return &c
}

func (h *LineHandler) levelLabel(l slog.Level) string {
	label := l.String()
	if st, ok := h.styles[baseLevel(l)]; ok {
		return st.Render(label)
	}
	return label
}

// baseLevel: DEBUG+2 красим как DEBUG и т.п.
func baseLevel(l slog.Level) slog.Level {
	switch {
	case l >= slog.LevelError:
		return slog.LevelError
	case l >= slog.LevelWarn:
		return slog.LevelWarn
	case l >= slog.LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(b, p, ga)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(quoteIfNeeded(a.Value.String()))
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if unicode.IsSpace(r) || r == '"' || r == '=' || !unicode.IsPrint(r) {
			return strconv.Quote(s)
		}
	}
	return s
}
