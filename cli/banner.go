// Package cli holds terminal helpers for interactive binaries: boxed banners
// and prompts.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/amp-labs/pushdown/envutil"
	"golang.org/x/term"
)

const (
	boxTopLeft     = "╒"
	boxBottomLeft  = "└"
	boxTopRight    = "╕"
	boxBottomRight = "┘"
	boxSide        = "│"
	boxTop         = "═"
	boxBottom      = "─"
	dividerLeft    = "┠"
	dividerMiddle  = "─"
	dividerRight   = "┨"
	ellipsis       = "…"
)

// Alignment of banner lines.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

const (
	bannerPadding   = 2
	dividerPadding  = 2
	truncateReserve = 1
)

// DefaultTerminalWidth is used when stdout is not a terminal.
const DefaultTerminalWidth = 80

// suppressed reports whether PUSHDOWN_NO_BANNER asks for plain output.
func suppressed(ctx context.Context) bool {
	return envutil.Bool(ctx, "PUSHDOWN_NO_BANNER", envutil.Default(false)).ValueOrElse(false)
}

// TerminalWidth returns the width of stdout, or DefaultTerminalWidth.
func TerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd())) //nolint:gosec // File descriptors fit in an int
	if err != nil || w <= 0 {
		return DefaultTerminalWidth
	}

	return w
}

// DividerAutoWidth renders a divider as wide as the terminal.
func DividerAutoWidth() string {
	return Divider(TerminalWidth())
}

// BannerAutoWidth renders a banner as wide as the terminal. With
// PUSHDOWN_NO_BANNER set, s is returned unboxed.
func BannerAutoWidth(ctx context.Context, s string, a Alignment) string {
	if suppressed(ctx) {
		return s + "\n"
	}

	return Banner(s, TerminalWidth(), a)
}

// Divider renders a horizontal rule width characters wide.
func Divider(width int) string {
	if width < dividerPadding {
		return "\n"
	}

	return fmt.Sprintf("%s%s%s\n", dividerLeft, strings.Repeat(dividerMiddle, width-dividerPadding), dividerRight)
}

// Banner draws s, one box line per input line, in a box width characters
// wide. Lines that do not fit are truncated with an ellipsis.
func Banner(s string, width int, alignment Alignment) string {
	if width <= bannerPadding {
		return ""
	}

	inner := width - bannerPadding
	parts := []string{boxTopLeft + strings.Repeat(boxTop, inner) + boxTopRight}

	for line := range strings.SplitSeq(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		padded, ok := pad(line, inner, alignment)
		if !ok {
			return ""
		}

		parts = append(parts, boxSide+padded+boxSide)
	}

	parts = append(parts, boxBottomLeft+strings.Repeat(boxBottom, inner)+boxBottomRight)

	return strings.Join(parts, "\n") + "\n"
}

func pad(text string, width int, alignment Alignment) (string, bool) {
	length := countGraphic(text)

	str := text
	if length > width {
		str, length = truncateGraphic(str, width-truncateReserve)
		str += ellipsis
		length++
	}

	diff := width - length

	switch alignment {
	case AlignLeft:
		return str + strings.Repeat(" ", diff), true
	case AlignRight:
		return strings.Repeat(" ", diff) + str, true
	case AlignCenter:
		left := diff / 2 //nolint:mnd

		return strings.Repeat(" ", left) + str + strings.Repeat(" ", diff-left), true
	default:
		return "", false
	}
}

func countGraphic(s string) int {
	count := 0

	for _, r := range s {
		if unicode.IsGraphic(r) {
			count++
		}
	}

	return count
}

// truncateGraphic keeps the first n graphic runes of s.
func truncateGraphic(s string, n int) (string, int) {
	var sb strings.Builder

	count := 0

	for _, r := range s {
		if unicode.IsGraphic(r) {
			if count == n {
				break
			}

			count++
		}

		sb.WriteRune(r)
	}

	return sb.String(), count
}
