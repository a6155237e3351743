package ui

import (
	"fmt"
	"strings"

	"github.com/atomicstack/eman/internal/bpf"
	"github.com/atomicstack/eman/internal/format/descriptor"
	"github.com/atomicstack/eman/internal/format/table"
	"github.com/atomicstack/eman/internal/menu"
	"github.com/atomicstack/eman/internal/ui/state"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
)

const (
	headerSeparator      = " → "
	rootTitle            = "eman"
	previewPanelMinWidth = 36   // minimum cols for the preview panel; below this no split
	previewPanelFraction = 0.45 // fraction of total width given to the preview panel
	scrollbarWidth       = 2    // gap + bar
)

var (
	previewBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	previewScrollStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
	raw           bool // text contains ANSI escapes; skip style wrapping, use ANSI-aware truncation
}

// View implements tea.Model.
func (m *Model) View() string {
	if _, ok := m.nav.Screen().(state.DetailScreen); ok {
		return m.viewDetail()
	}
	if m.hasSidePreview() {
		return m.viewSideBySide()
	}
	return m.viewVertical()
}

// hasSidePreview reports whether the map list is showing and there is room
// for the field panel on the right.
func (m *Model) hasSidePreview() bool {
	s, ok := m.nav.Screen().(state.ListScreen)
	if !ok || s.Kind != bpf.KindMap {
		return false
	}
	return m.previewPanelWidth() > 0
}

// previewPanelWidth returns the width in columns for the right-hand preview
// panel. Returns 0 when the terminal is too narrow to split.
func (m *Model) previewPanelWidth() int {
	if m.width <= 0 {
		return 0
	}
	w := int(float64(m.width) * previewPanelFraction)
	if w < previewPanelMinWidth {
		return 0
	}
	return w
}

func (m *Model) viewVertical() string {
	lines := m.tableLines(m.width)
	if info := m.currentInfo(); info != "" {
		lines = append(lines, styledLine{text: info, style: styles.Info})
	}
	bottom := m.bottomLines()
	lines = limitHeight(lines, m.height-len(bottom), m.width)
	lines = applyWidth(lines, m.width)
	lines = append(lines, applyWidth(bottom, m.width)...)
	return renderLines(lines)
}

// viewSideBySide renders the map table on the left and the selected map's
// fields on the right.
func (m *Model) viewSideBySide() string {
	prevW := m.previewPanelWidth()
	menuW := m.width - prevW
	bottom := m.bottomLines()

	contentLines := m.tableLines(menuW)
	if info := m.currentInfo(); info != "" {
		contentLines = append(contentLines, styledLine{text: info, style: styles.Info})
	}
	panelH := m.height - len(bottom)
	if panelH < 1 {
		panelH = 1
	}
	if len(contentLines) > panelH {
		contentLines = contentLines[:panelH]
	}
	for len(contentLines) < panelH {
		contentLines = append(contentLines, styledLine{})
	}
	contentLines = applyWidth(contentLines, menuW)

	// Pad every row to exactly menuW visible columns so the panel stays
	// flush to the right edge.
	leftRows := strings.Split(renderLines(contentLines), "\n")
	for i, row := range leftRows {
		w := lipgloss.Width(row)
		if w > menuW {
			leftRows[i] = truncate.StringWithTail(row, uint(menuW-1), "…")
		} else if w < menuW {
			leftRows[i] = row + strings.Repeat(" ", menuW-w)
		}
	}
	leftStr := strings.Join(leftRows, "\n")
	rightStr := m.renderPreviewPanel(m.previewTitle(), m.nav.Preview(), prevW, panelH)
	topSection := lipgloss.JoinHorizontal(lipgloss.Top, leftStr, rightStr)

	return topSection + "\n" + renderLines(applyWidth(bottom, m.width))
}

// tableLines renders the breadcrumb, the column header and the visible rows
// of the active menu or list.
func (m *Model) tableLines(width int) []styledLine {
	lines := []styledLine{{text: m.breadcrumb(), style: styles.Title}}
	current := m.nav.Level()
	if current == nil {
		return lines
	}
	m.syncViewport(current)
	tbl := m.nav.Table()
	formatted := table.WithHeader(tbl.Headers, tbl.Rows, alignmentsFor(m.nav.Screen()))
	if len(formatted) > 0 {
		lines = append(lines, styledLine{text: "  " + formatted[0], style: styles.TableHeader})
	}
	if !m.listLoaded() {
		return append(lines, styledLine{text: "Loading…", style: styles.Loading})
	}
	if len(current.Items) == 0 {
		msg := "(no entries)"
		if current.Filter != "" {
			msg = fmt.Sprintf("No matches for %q", current.Filter)
		}
		return append(lines, styledLine{text: msg, style: styles.Info})
	}

	rows := formatted[1:]
	start, end := 0, len(rows)
	maxItems := m.maxVisibleItems()
	withBar := maxItems > 0 && len(rows) > maxItems
	if withBar {
		start = current.ViewportOffset
		if start < 0 {
			start = 0
		}
		if start+maxItems > len(rows) {
			start = len(rows) - maxItems
			current.ViewportOffset = start
		}
		end = start + maxItems
	}
	bodyW := width
	if withBar && width > scrollbarWidth {
		bodyW = width - scrollbarWidth
	}
	body := make([]styledLine, 0, end-start)
	for idx := start; idx < end; idx++ {
		body = append(body, buildItemLine(rows[idx], idx, current, bodyW))
	}
	if !withBar {
		return append(lines, body...)
	}
	bodyStr := renderLines(applyWidth(body, bodyW))
	joined := lipgloss.JoinHorizontal(lipgloss.Top, bodyStr, " ", scrollbar(end-start, current))
	for _, row := range strings.Split(joined, "\n") {
		lines = append(lines, styledLine{text: row, raw: true})
	}
	return lines
}

func alignmentsFor(screen state.Screen) []table.Alignment {
	if _, ok := screen.(state.ListScreen); ok {
		return []table.Alignment{table.AlignRight}
	}
	return nil
}

func (m *Model) listLoaded() bool {
	s, ok := m.nav.Screen().(state.ListScreen)
	if !ok {
		return true
	}
	return m.loaded[s.Kind]
}

// scrollbar draws a one-column bar of height rows whose thumb tracks the
// level's scroll offset.
func scrollbar(height int, l *level) string {
	if height <= 0 {
		return ""
	}
	thumb := 0
	if length := l.ScrollLength(); length > 0 && height > 1 {
		thumb = l.ScrollOffset() * (height - 1) / length
	}
	rows := make([]string, height)
	for i := range rows {
		if i == thumb {
			rows[i] = renderStyled(styles.ScrollThumb, "┃")
		} else {
			rows[i] = renderStyled(styles.ScrollTrack, "│")
		}
	}
	return strings.Join(rows, "\n")
}

// buildItemLine constructs a single styledLine for a table row. width is
// the target column width; when > 0 the text is padded so that the selected
// row's background spans the full container.
func buildItemLine(text string, idx int, current *level, width int) styledLine {
	indicator := "▌"
	lineStyle := styles.Item
	indicatorStyle := styles.ItemIndicator
	if idx == current.Cursor {
		indicatorStyle = styles.SelectedItemIndicator
		lineStyle = styles.SelectedItem
	}
	fullText := indicator + " " + text
	if width > 0 {
		if pad := width - runewidth.StringWidth(fullText); pad > 0 {
			fullText += strings.Repeat(" ", pad)
		}
	}
	return styledLine{
		text:          fullText,
		style:         lineStyle,
		prefixStyle:   indicatorStyle,
		highlightFrom: 1, // just the ▌ character
	}
}

func (m *Model) breadcrumb() string {
	segments := []string{rootTitle}
	switch s := m.nav.Screen().(type) {
	case state.ListScreen:
		segments = append(segments, menu.Title(s.Kind))
	case state.DetailScreen:
		name := descriptor.Name(s.Record.Name[:])
		segments = append(segments, menu.Title(bpf.KindProgram), fmt.Sprintf("Program %d (%s)", s.ID, name))
	}
	return strings.Join(segments, headerSeparator)
}

func (m *Model) previewTitle() string {
	item, ok := m.nav.List(bpf.KindMap).Selected()
	if !ok {
		return "Map"
	}
	return fmt.Sprintf("Map %d: %s", item.Object, item.Label)
}

// renderPreviewPanel builds the bordered field box as a string with exactly
// height rows and totalWidth columns.
func (m *Model) renderPreviewPanel(title string, fields []descriptor.Field, totalWidth, height int) string {
	const (
		tlc = "╭"
		trc = "╮"
		blc = "╰"
		brc = "╯"
		hz  = "─"
		vt  = "│"
	)

	innerW := totalWidth - 2
	innerH := height - 2
	if innerW < 1 {
		innerW = 1
	}
	if innerH < 1 {
		innerH = 1
	}

	contentLines := fieldLines(fields)
	if len(contentLines) == 0 {
		contentLines = []string{"No map selected"}
	}
	scrollInfo := ""
	if len(contentLines) > innerH {
		contentLines = contentLines[:innerH]
		scrollInfo = fmt.Sprintf(" %d/%d ", innerH, len(fields))
	}

	titleSeg := " " + title + " "
	scrollSeg := scrollInfo
	dashes := totalWidth - 4 - runewidth.StringWidth(titleSeg) - runewidth.StringWidth(scrollSeg)
	if dashes < 0 {
		scrollSeg = ""
		dashes = totalWidth - 4 - runewidth.StringWidth(titleSeg)
	}
	if dashes < 0 {
		titleSeg = " … "
		dashes = totalWidth - 4 - runewidth.StringWidth(titleSeg)
	}
	if dashes < 0 {
		dashes = 0
	}
	topLine := previewBorderStyle.Render(tlc+hz) +
		renderStyled(styles.PreviewTitle, titleSeg) +
		previewBorderStyle.Render(strings.Repeat(hz, dashes)) +
		previewScrollStyle.Render(scrollSeg) +
		previewBorderStyle.Render(hz+trc)
	bottomLine := previewBorderStyle.Render(blc + strings.Repeat(hz, innerW) + brc)

	rows := make([]string, 0, height)
	rows = append(rows, topLine)
	for i := 0; i < innerH; i++ {
		var content string
		if i < len(contentLines) {
			content = contentLines[i]
		}
		w := lipgloss.Width(content)
		if w > innerW {
			content = truncate.StringWithTail(content, uint(innerW-1), "…")
			w = lipgloss.Width(content)
		}
		if w < innerW {
			content += strings.Repeat(" ", innerW-w)
		}
		rows = append(rows, previewBorderStyle.Render(vt)+renderStyled(styles.PreviewBody, content)+previewBorderStyle.Render(vt))
	}
	rows = append(rows, bottomLine)
	return strings.Join(rows, "\n")
}

// fieldLines lays fields out as "label  value" with the labels padded to a
// common width.
func fieldLines(fields []descriptor.Field) []string {
	labelW := 0
	for _, f := range fields {
		labelW = max(labelW, runewidth.StringWidth(f.Label))
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = runewidth.FillRight(f.Label, labelW) + "  " + f.Value
	}
	return out
}

// bottomLines returns the rows pinned to the bottom of every screen: the
// status line, the filter prompt when active, and the key help.
func (m *Model) bottomLines() []styledLine {
	var status styledLine
	if msg := m.statusError(); msg != "" {
		status = styledLine{text: fmt.Sprintf("Error: %s", msg), style: styles.Error}
	}
	lines := []styledLine{status}
	if m.showFilterPrompt() {
		lines = append(lines, styledLine{text: m.filterPrompt(), raw: true})
	}
	if m.showFooter {
		m.syncKeys()
		for _, row := range strings.Split(m.help.View(m.keys), "\n") {
			lines = append(lines, styledLine{text: row, raw: true})
		}
	}
	return lines
}

func (m *Model) bottomHeight() int {
	rows := 1 // status
	if m.showFilterPrompt() {
		rows++
	}
	if m.showFooter {
		m.syncKeys()
		rows += lipgloss.Height(m.help.View(m.keys))
	}
	return rows
}

func (m *Model) maxVisibleItems() int {
	if m.height <= 0 {
		return -1
	}
	used := 2 // breadcrumb + column header
	used += m.bottomHeight()
	if info := m.currentInfo(); info != "" {
		used++
	}
	remain := m.height - used
	if remain < 1 {
		return 1
	}
	return remain
}

func renderStyled(style *lipgloss.Style, text string) string {
	if style == nil || text == "" {
		return text
	}
	return style.Render(text)
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: truncateText("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: truncateText("…", width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			if lipgloss.Width(text) > width {
				text = truncate.StringWithTail(text, uint(width-1), "…")
			}
		} else {
			text = truncateText(text, width)
		}
		line.text = text
		result[i] = line
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			out[i] = text
			continue
		}
		runes := []rune(text)
		if line.highlightFrom > 0 && line.highlightFrom < len(runes) {
			head := string(runes[:line.highlightFrom])
			tail := string(runes[line.highlightFrom:])
			if line.prefixStyle != nil {
				head = line.prefixStyle.Render(head)
			}
			if line.style != nil {
				tail = line.style.Render(tail)
			}
			text = head + tail
		} else if line.style != nil {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

func truncateText(text string, width int) string {
	if width <= 0 {
		return text
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	if width == 1 {
		return runewidth.Truncate(text, 1, "")
	}
	return runewidth.Truncate(text, width, "…")
}
