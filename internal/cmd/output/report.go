package output

import (
	"io"
	"time"

	"github.com/agentstation/authorgraph/pkg/idcache"
	"github.com/agentstation/authorgraph/pkg/reconcile"
)

// ReportView is the serializable form of a reconciliation report.
type ReportView struct {
	Summary  string                 `json:"summary" yaml:"summary"`
	Duration string                 `json:"duration" yaml:"duration"`
	Counts   map[reconcile.Kind]int `json:"counts" yaml:"counts"`
	Outcomes []reconcile.Outcome    `json:"outcomes" yaml:"outcomes"`
	Cache    *idcache.Stats         `json:"cache,omitempty" yaml:"cache,omitempty"`
	DryRun   bool                   `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
}

// NewReportView snapshots report. stats may be nil.
func NewReportView(report *reconcile.Report, stats *idcache.Stats, dryRun bool) ReportView {
	return ReportView{
		Summary:  report.Summary(),
		Duration: report.Duration().Round(time.Millisecond).String(),
		Counts:   report.Counts(),
		Outcomes: report.Outcomes(),
		Cache:    stats,
		DryRun:   dryRun,
	}
}

// OutcomesToTableData converts outcomes to table rows. Wide output adds the
// diff summary of updated units.
func OutcomesToTableData(outcomes []reconcile.Outcome, wide bool) Data {
	headers := []string{"Unit", "ID", "Result", "Node", "Reason"}
	if wide {
		headers = append(headers, "Diff")
	}

	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		row := []string{o.Unit, o.ID, string(o.Kind), o.NodeID, o.Reason}
		if wide {
			row = append(row, o.Diff)
		} else if o.Kind == reconcile.KindUpdated {
			row[4] = o.Diff
		}
		rows = append(rows, row)
	}

	return Data{
		Headers: headers,
		Rows:    rows,
	}
}

// FormatReport writes the report in the requested format.
func FormatReport(w io.Writer, format Format, view ReportView) error {
	switch format {
	case FormatJSON, FormatYAML:
		return NewFormatter(format).Format(w, view)
	}

	data := OutcomesToTableData(view.Outcomes, format == FormatWide)
	data.Title = "Outcomes"
	data.Footer = view.Summary + " in " + view.Duration
	if view.DryRun {
		data.Footer += " (dry run)"
	}
	if err := NewFormatter(format).Format(w, data); err != nil {
		return err
	}
	if view.Cache == nil {
		return nil
	}
	return NewFormatter(format).Format(w, *view.Cache)
}
