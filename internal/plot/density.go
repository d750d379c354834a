package plot

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"zmean/domain/ztest"
	"zmean/internal/analysis"
)

// DensityConfig controls the terminal rendering of the standard normal curve
type DensityConfig struct {
	Width  int
	Height int
	Min    float64
	Max    float64
}

// DefaultDensityConfig returns a rendering that fits a standard terminal
func DefaultDensityConfig() DensityConfig {
	return DensityConfig{
		Width:  72,
		Height: 14,
		Min:    -4,
		Max:    4,
	}
}

// DensityPlot renders the standard normal density as ANSI text with the
// rejection-direction tail shaded and the observed z marked. Purely
// illustrative; the numbers the study reports come from the domain layer.
func DensityPlot(z float64, tail ztest.Tail, cfg DensityConfig) (string, error) {
	if cfg.Width < 16 || cfg.Height < 4 {
		return "", fmt.Errorf("density plot needs at least 16x4 cells, got %dx%d", cfg.Width, cfg.Height)
	}
	if !tail.Valid() {
		return "", fmt.Errorf("cannot shade tail %q", tail)
	}

	start := time.Now()
	dists := analysis.NewDistributions()

	step := (cfg.Max - cfg.Min) / float64(cfg.Width-1)
	xs := make([]float64, cfg.Width)
	heights := make([]int, cfg.Width)
	peak := dists.NormalPDF(0)

	for i := range xs {
		xs[i] = cfg.Min + float64(i)*step
		heights[i] = int(math.Round(dists.NormalPDF(xs[i]) / peak * float64(cfg.Height)))
	}

	markerCol := columnFor(z, cfg)

	var sb strings.Builder
	const reset = "\033[0m"

	for row := cfg.Height; row >= 1; row-- {
		for col := 0; col < cfg.Width; col++ {
			switch {
			case col == markerCol && heights[col] >= row:
				sb.WriteString("\033[48;5;160m \033[0m")
			case heights[col] >= row && inRejectionDirection(xs[col], z, tail):
				sb.WriteString(shadeColor(float64(row)/float64(cfg.Height)) + " " + reset)
			case heights[col] >= row:
				sb.WriteString("\033[48;5;238m \033[0m")
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}

	sb.WriteString(strings.Repeat("─", cfg.Width))
	sb.WriteByte('\n')
	sb.WriteString(axisLabels(cfg))
	sb.WriteByte('\n')
	sb.WriteString(fmt.Sprintf("z = %.4f (%s), shaded area = rejection direction\n", z, tail))

	log.Debug().
		Int("width", cfg.Width).
		Int("height", cfg.Height).
		Dur("render", time.Since(start)).
		Msg("density plot rendered")

	return sb.String(), nil
}

// columnFor maps z onto a plot column, clamped to the visible range
func columnFor(z float64, cfg DensityConfig) int {
	frac := (z - cfg.Min) / (cfg.Max - cfg.Min)
	col := int(math.Round(frac * float64(cfg.Width-1)))
	if col < 0 {
		col = 0
	}
	if col >= cfg.Width {
		col = cfg.Width - 1
	}
	return col
}

// inRejectionDirection reports whether x lies on the side(s) of z the
// p-value measures for the given tail mode.
func inRejectionDirection(x, z float64, tail ztest.Tail) bool {
	switch tail {
	case ztest.TailRight:
		return x >= z
	case ztest.TailLeft:
		return x <= z
	case ztest.TailTwo:
		return math.Abs(x) >= math.Abs(z)
	default:
		return false
	}
}

// shadeColor maps a 0..1 fraction onto the ANSI 256-color grayscale ramp
// (232 darkest to 255 lightest), returned as a background escape sequence.
func shadeColor(fraction float64) string {
	start := 240
	end := 255
	colorCode := int(float64(start) + fraction*float64(end-start))
	if colorCode > 255 {
		colorCode = 255
	}
	return fmt.Sprintf("\033[48;5;%dm", colorCode)
}

func axisLabels(cfg DensityConfig) string {
	left := fmt.Sprintf("%.0f", cfg.Min)
	mid := "0"
	right := fmt.Sprintf("+%.0f", cfg.Max)

	line := make([]byte, cfg.Width)
	for i := range line {
		line[i] = ' '
	}
	copy(line, left)
	copy(line[cfg.Width/2-len(mid)/2:], mid)
	copy(line[cfg.Width-len(right):], right)
	return string(line)
}
