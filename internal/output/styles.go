package output

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Color palette for all ANSI 256 colors used in the CLI. These are the
// single source of truth; never use inline lipgloss.Color literals.
var (
	// ColorCyan is used for identifiable nouns: project names, archive paths.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for successfully written archives.
	ColorGreen = lipgloss.Color("82")

	// ColorGreenCheck is used for the completion checkmark (✔).
	ColorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for structural chrome.
	ColorDimGray = lipgloss.Color("240")
)

// Semantic styles mapping domain concepts to visual presentation.
var (
	// StyleNoun styles identifiable nouns (project names, versions, filenames).
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleAction styles action verbs (building, writing).
	StyleAction = lipgloss.NewStyle().Bold(true)

	// StyleDim styles structural chrome (separators, counts).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// checkmark is the styled completion marker.
var checkmark = lipgloss.NewStyle().Foreground(ColorGreenCheck).SetString("✔")

// ArchiveWritten prints the completion line for a finished archive.
func ArchiveWritten(kind, filename string) {
	Println(fmt.Sprintf("%s %s %s", checkmark.String(), StyleSummary.Render("built "+kind), StyleNoun.Render(filename)))
}
