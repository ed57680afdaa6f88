package stream

import (
	"fmt"
	"strings"

	"pricetracker/internal/domain"
)

const (
	ansiReset    = "\033[0m"
	ansiRed      = "\033[31m"
	ansiGreen    = "\033[32m"
	ansiYellow   = "\033[33m"
	ansiDim      = "\033[2m"
	ansiClearEOL = "\033[K"
)

func colorize(s, c string) string { return c + s + ansiReset }

// Formatter renders controller state as a single overwritable console
// line: sorted prices colored by direction, or the last error.
type Formatter struct{}

func NewFormatter() *Formatter { return &Formatter{} }

func (f *Formatter) Render(st State) string {
	var sb strings.Builder
	sb.WriteString("\r")
	sb.WriteString(colorize("[PRICES] ", ansiDim))

	switch {
	case st.ErrorMessage != "":
		sb.WriteString(colorize("error: "+st.ErrorMessage, ansiRed))
	case !st.Streaming && len(st.Prices) == 0:
		sb.WriteString(colorize("stopped", ansiDim))
	case st.Streaming && len(st.Prices) == 0:
		sb.WriteString(colorize("connecting...", ansiYellow))
	default:
		for i, item := range st.Prices {
			if i > 0 {
				sb.WriteString(colorize("  |  ", ansiDim))
			}
			sb.WriteString(item.Symbol)
			sb.WriteString(" ")
			px := fmt.Sprintf("%.2f", item.Price)
			switch item.Direction() {
			case domain.DirectionUp:
				sb.WriteString(colorize(px+"▲", ansiGreen))
			case domain.DirectionDown:
				sb.WriteString(colorize(px+"▼", ansiRed))
			default:
				sb.WriteString(colorize(px, ansiYellow))
			}
		}
		if !st.Streaming {
			sb.WriteString(colorize("  (stopped)", ansiDim))
		}
	}

	sb.WriteString(ansiClearEOL)
	return sb.String()
}
