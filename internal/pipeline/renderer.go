package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	romerrors "github.com/joe/romio/pkg/errors"
)

// unexported constants.
const (
	dimColorCode     = "240" // Dark gray
	errorColorCode   = "196" // Red
	labelColorCode   = "86"  // Cyan
	successColorCode = "42"  // Green
	warningColorCode = "226" // Yellow
)

// TextRenderer prints one line per finished item and a closing summary.
// It is not safe for concurrent use; feed it through a Bridge.
type TextRenderer struct {
	out     io.Writer
	now     func() time.Time
	started time.Time

	threads int
	total   int
	done    int
	skipped int
	failed  int
	bytes   int64

	dim     lipgloss.Style
	errorSt lipgloss.Style
	label   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
}

// NewTextRenderer writes to out. Colors are used only when out is a terminal.
func NewTextRenderer(out io.Writer) *TextRenderer {
	renderer := lipgloss.NewRenderer(out)

	return &TextRenderer{
		out:     out,
		now:     time.Now,
		dim:     renderer.NewStyle().Foreground(lipgloss.Color(dimColorCode)),
		errorSt: renderer.NewStyle().Foreground(lipgloss.Color(errorColorCode)).Bold(true),
		label:   renderer.NewStyle().Foreground(lipgloss.Color(labelColorCode)).Bold(true),
		success: renderer.NewStyle().Foreground(lipgloss.Color(successColorCode)),
		warning: renderer.NewStyle().Foreground(lipgloss.Color(warningColorCode)),
	}
}

// Init implements Listener.
func (r *TextRenderer) Init(threads int) {
	r.threads = threads
	r.started = r.now()
}

// ReportAllFinished prints the summary line.
func (r *TextRenderer) ReportAllFinished() {
	elapsed := r.now().Sub(r.started).Round(time.Millisecond)

	summary := fmt.Sprintf("%d finished, %d skipped, %d failed, %s processed in %s",
		r.done, r.skipped, r.failed, humanize.IBytes(uint64(max(r.bytes, 0))), elapsed)

	style := r.success
	if r.failed > 0 {
		style = r.errorSt
	}

	r.printf("%s %s\n", r.label.Render("Done:"), style.Render(summary))
}

// ReportBytesProgressed implements Listener.
func (r *TextRenderer) ReportBytesProgressed(_ int, delta int64) {
	r.bytes += delta
}

// ReportFailure prints the failure and any suggestions attached to cause.
func (r *TextRenderer) ReportFailure(thread int, item, message string, cause error) {
	r.failed++
	r.printf("%s %s %s\n", r.prefix(thread), r.errorSt.Render("✗ "+item), message)

	if suggestions := romerrors.FormatSuggestions(cause); suggestions != "" {
		r.printf("%s\n", r.dim.Render(suggestions))
	}
}

// ReportFinish implements Listener.
func (r *TextRenderer) ReportFinish(thread int, item string) {
	r.done++
	r.printf("%s %s\n", r.prefix(thread), r.success.Render("✓ "+item))
}

// ReportSkip implements Listener.
func (r *TextRenderer) ReportSkip(thread int, item, reason string) {
	r.skipped++
	r.printf("%s %s %s\n", r.prefix(thread), r.warning.Render("- "+item), r.dim.Render("("+reason+")"))
}

// ReportStart implements Listener.
func (r *TextRenderer) ReportStart(int, string, int64) {}

// ReportTotalItems implements Listener.
func (r *TextRenderer) ReportTotalItems(n int) {
	r.total = n
	r.printf("%s %s items with %d workers\n", r.label.Render("Processing"), humanize.Comma(int64(n)), r.threads)
}

func (r *TextRenderer) prefix(thread int) string {
	return r.dim.Render(fmt.Sprintf("[%2d] %*d/%d", thread, len(fmt.Sprint(r.total)), r.done+r.skipped+r.failed, r.total))
}

func (r *TextRenderer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}
