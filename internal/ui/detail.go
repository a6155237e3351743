package ui

import (
	"strings"

	"github.com/atomicstack/eman/internal/format/descriptor"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// detailTwoColumnMinWidth is the narrowest terminal that still gets the
// sections laid out side by side.
const detailTwoColumnMinWidth = 80

func (m *Model) viewDetail() string {
	lines := []styledLine{{text: m.breadcrumb(), style: styles.Title}}
	body := m.detailBody()
	m.clampDetailOffset()
	if rows := m.detailRows(); rows > 0 && len(body) > rows {
		end := min(m.detailOffset+rows, len(body))
		body = body[m.detailOffset:end]
	}
	for _, row := range body {
		lines = append(lines, styledLine{text: row, raw: true})
	}
	if info := m.currentInfo(); info != "" {
		lines = append(lines, styledLine{text: info, style: styles.Info})
	}
	lines = applyWidth(lines, m.width)
	lines = append(lines, applyWidth(m.bottomLines(), m.width)...)
	return renderLines(lines)
}

func (m *Model) detailBody() []string {
	rendered := renderSections(m.nav.Sections(m.clock()), m.width)
	if rendered == "" {
		return nil
	}
	return strings.Split(rendered, "\n")
}

func (m *Model) detailLineCount() int {
	return len(m.detailBody())
}

// detailRows is the number of body rows that fit on screen, or -1 when the
// height is unconstrained.
func (m *Model) detailRows() int {
	if m.height <= 0 {
		return -1
	}
	used := 1 + m.bottomHeight()
	if m.currentInfo() != "" {
		used++
	}
	return max(m.height-used, 1)
}

func (m *Model) clampDetailOffset() {
	rows := m.detailRows()
	maxOffset := 0
	if rows > 0 {
		maxOffset = max(m.detailLineCount()-rows, 0)
	}
	m.detailOffset = max(min(m.detailOffset, maxOffset), 0)
}

// renderSections lays the sections out in two columns, the left one taking
// the extra section when the count is odd.
func renderSections(sections []descriptor.Section, width int) string {
	if len(sections) == 0 {
		return ""
	}
	if width > 0 && width < detailTwoColumnMinWidth {
		return renderSectionColumn(sections, width)
	}
	colW := 0
	if width > 0 {
		colW = width / 2
	}
	split := (len(sections) + 1) / 2
	left := renderSectionColumn(sections[:split], colW)
	right := renderSectionColumn(sections[split:], colW)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func renderSectionColumn(sections []descriptor.Section, width int) string {
	boxes := make([]string, 0, len(sections))
	for _, s := range sections {
		boxes = append(boxes, renderSection(s, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

func renderSection(s descriptor.Section, width int) string {
	labelW := 0
	for _, f := range s.Fields {
		labelW = max(labelW, runewidth.StringWidth(f.Label))
	}
	rows := make([]string, 0, len(s.Fields)+1)
	rows = append(rows, renderStyled(styles.SectionTitle, s.Title))
	for _, f := range s.Fields {
		label := renderStyled(styles.FieldLabel, runewidth.FillRight(f.Label, labelW))
		rows = append(rows, label+"  "+renderStyled(styles.FieldValue, f.Value))
	}
	body := strings.Join(rows, "\n")
	if styles.Section == nil {
		return body
	}
	box := *styles.Section
	// Width excludes the border.
	if width > 2 {
		box = box.Width(width - 2)
	}
	return box.Render(body)
}
