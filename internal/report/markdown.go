package report

import (
	"fmt"
	"strings"

	"zmean/domain/ztest"
	"zmean/ports"
)

// BuildStudyReport produces the markdown walkthrough for a stored run: the
// hypotheses, the standardization arithmetic, the tail probability, and the
// decision, in the order a reader would derive them by hand. The web UI
// renders this to HTML; the CLI prints it as-is.
func BuildStudyReport(record ports.StudyRunRecord) string {
	var sb strings.Builder

	title := record.Label
	if title == "" {
		title = "One-sample z-test"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)

	sb.WriteString("## Hypotheses\n\n")
	fmt.Fprintf(&sb, "- Null hypothesis H₀: %s\n", record.Hypotheses.Null)
	fmt.Fprintf(&sb, "- Alternative hypothesis Hₐ: %s\n", record.Hypotheses.Alternative)
	fmt.Fprintf(&sb, "- Significance level α = %.3f (%s)\n\n", record.Decision.Alpha, tailLabel(record.Result.Tail))

	sb.WriteString("## Inputs\n\n")
	sb.WriteString("| Quantity | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Sample mean x̄ | %.4f |\n", record.Inputs.SampleMean)
	fmt.Fprintf(&sb, "| Hypothesized mean μ₀ | %.4f |\n", record.Inputs.NullMean)
	fmt.Fprintf(&sb, "| Population SD σ | %.4f |\n", record.Inputs.PopulationSD)
	fmt.Fprintf(&sb, "| Sample size n | %d |\n\n", record.Inputs.SampleSize)

	sb.WriteString("## Test statistic\n\n")
	fmt.Fprintf(&sb, "The standard error is σ/√n = %.4f/√%d = **%.6f**.\n\n",
		record.Inputs.PopulationSD, record.Inputs.SampleSize, record.Result.StdError)
	fmt.Fprintf(&sb, "The z-statistic is (x̄ − μ₀)/SE = (%.4f − %.4f)/%.6f = **%.6f**.\n\n",
		record.Inputs.SampleMean, record.Inputs.NullMean, record.Result.StdError, record.Result.Z)

	sb.WriteString("## P-value\n\n")
	fmt.Fprintf(&sb, "Under H₀ the z-statistic is standard normal. Φ(%.6f) = %.6f, so the %s p-value is **%.6f**.\n\n",
		record.Result.Z, record.Result.CDF, tailLabel(record.Result.Tail), record.Result.PValue)
	fmt.Fprintf(&sb, "The critical value at α = %.3f is z* = %.4f.\n\n",
		record.Decision.Alpha, record.CriticalZ)

	sb.WriteString("## Decision\n\n")
	fmt.Fprintf(&sb, "**%s**\n\n", record.Decision.Conclusion)

	sb.WriteString("---\n\n")
	fmt.Fprintf(&sb, "Run `%s`, fingerprint `%s`, recorded %s.\n",
		record.ID, record.Fingerprint, record.CreatedAt)

	return sb.String()
}

func tailLabel(tail ztest.Tail) string {
	switch tail {
	case ztest.TailRight:
		return "right-tailed"
	case ztest.TailLeft:
		return "left-tailed"
	case ztest.TailTwo:
		return "two-tailed"
	default:
		return string(tail)
	}
}
