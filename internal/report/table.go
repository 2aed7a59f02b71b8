package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/wonny/vwapcast/internal/contracts"
)

// WriteTable prints one row per company: symbol, train RMSE, test RMSE
func WriteTable(w io.Writer, results []contracts.ResultRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Company\tTrain RMSE\tTest RMSE\t")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", r.Symbol, formatMetric(r.TrainRMSE), formatMetric(r.TestRMSE))
	}
	return tw.Flush()
}

// WriteSummary prints the describe() block and the failure breakdown
func WriteSummary(w io.Writer, s contracts.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "\tTrain RMSE\tTest RMSE\t")
	fmt.Fprintf(tw, "count\t%d\t%d\t\n", s.Train.Count, s.Test.Count)

	rows := []struct {
		name        string
		train, test contracts.Metric
	}{
		{"mean", s.Train.Mean, s.Test.Mean},
		{"std", s.Train.Std, s.Test.Std},
		{"min", s.Train.Min, s.Test.Min},
		{"25%", s.Train.P25, s.Test.P25},
		{"50%", s.Train.P50, s.Test.P50},
		{"75%", s.Train.P75, s.Test.P75},
		{"max", s.Train.Max, s.Test.Max},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", r.name, formatMetric(r.train), formatMetric(r.test))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\ncompanies=%d succeeded=%d failed=%d\n", s.Companies, s.Succeeded, s.Failed)
	kinds := make([]string, 0, len(s.FailuresByKind))
	for k := range s.FailuresByKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %s: %d\n", k, s.FailuresByKind[contracts.FailureKind(k)])
	}
	return nil
}

// WriteFailures lists the companies that produced no usable result
func WriteFailures(w io.Writer, failures []contracts.Failure) error {
	if len(failures) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Company\tKind\tReason")
	for _, f := range failures {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Symbol, f.Kind, f.Message)
	}
	return tw.Flush()
}

// WriteCSV writes the results table as CSV. NaN sentinels are written as "NaN".
func WriteCSV(w io.Writer, results []contracts.ResultRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"symbol", "train_rmse", "test_rmse", "rows", "train_rows", "val_rows", "test_rows"}); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Symbol,
			strconv.FormatFloat(float64(r.TrainRMSE), 'g', -1, 64),
			strconv.FormatFloat(float64(r.TestRMSE), 'g', -1, 64),
			strconv.Itoa(r.Rows),
			strconv.Itoa(r.TrainRows),
			strconv.Itoa(r.ValRows),
			strconv.Itoa(r.TestRows),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatMetric(m contracts.Metric) string {
	if !m.IsFinite() {
		return "NaN"
	}
	return strconv.FormatFloat(float64(m), 'f', 6, 64)
}
