package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/speechpath/speechpath/internal/ui/theme"
)

const bannerArt = `
 ███████╗██████╗ ███████╗███████╗ ██████╗██╗  ██╗
 ██╔════╝██╔══██╗██╔════╝██╔════╝██╔════╝██║  ██║
 ███████╗██████╔╝█████╗  █████╗  ██║     ███████║
 ╚════██║██╔═══╝ ██╔══╝  ██╔══╝  ██║     ██╔══██║
 ███████║██║     ███████╗███████╗╚██████╗██║  ██║
 ╚══════╝╚═╝     ╚══════╝╚══════╝ ╚═════╝╚═╝  ╚═╝`

const bannerCompact = "S P E E C H P A T H"

// RenderBanner returns the banner in the primary color, falling back to a
// compact form below 52 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 52 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
