package output

import "github.com/charmbracelet/lipgloss"

// Color palette.
const (
	ColorLime     = "154" // newly marked paths
	ColorGray     = "245" // already marked paths
	ColorDarkGray = "238" // service bookkeeping
	ColorRed      = "196" // errors
	ColorYellow   = "220" // dry run notice
)

// Styles holds the per-label styles.
type Styles struct {
	New      lipgloss.Style
	Excluded lipgloss.Style
	Error    lipgloss.Style
	Notice   lipgloss.Style
	Service  lipgloss.Style
}

// DefaultStyles returns colored label styles.
func DefaultStyles() Styles {
	return Styles{
		New:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Excluded: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorRed)),
		Notice:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Service:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	return Styles{
		New:      lipgloss.NewStyle(),
		Excluded: lipgloss.NewStyle(),
		Error:    lipgloss.NewStyle(),
		Notice:   lipgloss.NewStyle(),
		Service:  lipgloss.NewStyle(),
	}
}

// Label renders label with the style assigned to it.
func (s Styles) Label(label string) string {
	switch label {
	case LabelNew:
		return s.New.Render(label)
	case LabelExcluded:
		return s.Excluded.Render(label)
	case LabelErrorChecking, LabelErrorExcluding:
		return s.Error.Render(label)
	case LabelDryRun:
		return s.Notice.Render(label)
	default:
		return s.Service.Render(label)
	}
}
