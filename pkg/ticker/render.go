package ticker

import (
	"fmt"
	"math"
	"strings"

	"github.com/unklstewy/overhead/pkg/airline"
	"github.com/unklstewy/overhead/pkg/overhead"
)

// Board dimensions.
const (
	Rows = 4
	Cols = 14
)

var compassPoints = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// emptyRows is shown when no aircraft is overhead.
var emptyRows = [Rows]string{"", "NO", "FLIGHT", "OVERHEAD"}

// Compass returns the 8-point compass direction nearest heading.
func Compass(heading int) string {
	h := ((heading % 360) + 360) % 360
	return compassPoints[int(math.Round(float64(h)/45))%8]
}

// RenderRows returns the four display rows for summary, each exactly Cols
// runes wide. A nil summary renders the empty message.
func RenderRows(summary *overhead.FlightSummary) [Rows]string {
	text := emptyRows
	if summary != nil {
		name := strings.TrimSpace(summary.DisplayName)
		if len(name) < 2 {
			name = airline.Private
		}
		text = [Rows]string{
			name,
			fmt.Sprintf("ALT %dFT", summary.AltitudeFeet),
			fmt.Sprintf("SPD %dMPH", summary.GroundSpeedMph),
			fmt.Sprintf("HDG %s %d°", Compass(summary.HeadingDegrees), summary.HeadingDegrees),
		}
	}

	var rows [Rows]string
	for i, t := range text {
		rows[i] = FormatRow(t)
	}
	return rows
}

// FormatRow upper-cases text and pads or truncates it to Cols runes.
func FormatRow(text string) string {
	r := []rune(strings.ToUpper(text))
	if len(r) > Cols {
		r = r[:Cols]
	}
	return string(r) + strings.Repeat(" ", Cols-len(r))
}

// cellsOf splits rendered rows into a cell grid.
func cellsOf(rows [Rows]string) [Rows][Cols]rune {
	var cells [Rows][Cols]rune
	for i, row := range rows {
		copy(cells[i][:], []rune(row))
	}
	return cells
}
