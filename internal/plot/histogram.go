package plot

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog/log"
)

// RenderHistogram bins the draws and prints a horizontal bar histogram to w.
// Used by the simulate command to show that simulated null z statistics pile
// up around zero the way the analytic curve says they should.
func RenderHistogram(w io.Writer, draws []float64, bins int) error {
	if len(draws) == 0 {
		return fmt.Errorf("no draws to plot")
	}
	if bins <= 0 {
		bins = 15
	}

	start := time.Now()
	hist := histogram.Hist(bins, draws)
	if err := histogram.Fprint(w, hist, histogram.Linear(40)); err != nil {
		return fmt.Errorf("printing histogram: %w", err)
	}

	log.Debug().
		Int("draws", len(draws)).
		Int("bins", bins).
		Dur("render", time.Since(start)).
		Msg("histogram rendered")

	return nil
}

// FormatHistogram renders the histogram into a string
func FormatHistogram(draws []float64, bins int) (string, error) {
	var buf bytes.Buffer
	if err := RenderHistogram(&buf, draws, bins); err != nil {
		return "", err
	}
	return buf.String(), nil
}
