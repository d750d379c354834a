package plot

import (
	"strings"
	"testing"

	"zmean/domain/ztest"
	"zmean/internal/testkit"
)

func TestDensityPlot_RightTail(t *testing.T) {
	cfg := DefaultDensityConfig()

	out, err := DensityPlot(1.1859, ztest.TailRight, cfg)
	if err != nil {
		t.Fatalf("DensityPlot: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// height rows + axis rule + labels + caption
	if len(lines) != cfg.Height+3 {
		t.Fatalf("plot has %d lines, want %d", len(lines), cfg.Height+3)
	}
	if !strings.Contains(out, "z = 1.1859") {
		t.Error("caption missing z value")
	}
	if !strings.Contains(out, "\033[48;5;160m") {
		t.Error("plot missing z marker column")
	}
	if !strings.Contains(out, string(ztest.TailRight)) {
		t.Error("caption missing tail mode")
	}
}

func TestDensityPlot_RejectsBadConfig(t *testing.T) {
	if _, err := DensityPlot(0, ztest.TailRight, DensityConfig{Width: 4, Height: 2, Min: -4, Max: 4}); err == nil {
		t.Error("expected error for undersized plot")
	}
	if _, err := DensityPlot(0, ztest.Tail("sideways"), DefaultDensityConfig()); err == nil {
		t.Error("expected error for unknown tail")
	}
}

func TestFormatHistogram(t *testing.T) {
	draws := testkit.GenerateNormal(42, 2000, 0, 1)

	out, err := FormatHistogram(draws, 15)
	if err != nil {
		t.Fatalf("FormatHistogram: %v", err)
	}
	if len(strings.Split(strings.TrimRight(out, "\n"), "\n")) != 15 {
		t.Errorf("expected 15 histogram rows, got:\n%s", out)
	}

	if _, err := FormatHistogram(nil, 15); err == nil {
		t.Error("expected error for empty draws")
	}
}
