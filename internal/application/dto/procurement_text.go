package dto

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	heavyRule = strings.Repeat("=", 70)
	lightRule = strings.Repeat("-", 70)
	numbers   = message.NewPrinter(language.English)
)

// ExceptionSummaryText resumen legible del reporte de excepciones, con el detalle de
// los hallazgos CRITICAL y HIGH.
func ExceptionSummaryText(doc ExceptionReportDocument) string {
	var b strings.Builder
	line := func(format string, args ...any) { fmt.Fprintf(&b, format+"\n", args...) }

	line(heavyRule)
	line("PROCUREMENT EXCEPTION REPORT")
	line(heavyRule)
	line("Report Date: %s", doc.ReportDate)
	line("")
	line(lightRule)
	line("SUMMARY")
	line(lightRule)
	s := doc.Summary
	line("SKUs Analyzed: %d", s.TotalSKUsAnalyzed)
	line("Total Exceptions: %d", s.TotalExceptions)
	line("Total Demand: %s units", numbers.Sprintf("%d", s.TotalDemand))
	line("Total Order Quantity: %s units", numbers.Sprintf("%d", s.TotalOrderQuantity))
	line("Unique Suppliers: %d", s.UniqueSuppliers)
	line("")

	line("By Severity:")
	for _, sev := range []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"} {
		if n := s.BySeverity[sev]; n > 0 {
			line("  * %s: %d", sev, n)
		}
	}
	line("")
	line("By Type:")
	for _, t := range sortedKeys(s.ByType) {
		if n := s.ByType[t]; n > 0 {
			line("  * %s: %d", t, n)
		}
	}
	line("")

	header := false
	for _, e := range doc.Exceptions {
		if e.Severity != "CRITICAL" && e.Severity != "HIGH" {
			continue
		}
		if !header {
			line(lightRule)
			line("CRITICAL & HIGH PRIORITY EXCEPTIONS")
			line(lightRule)
			header = true
		}
		line("")
		line("[%s] %s", e.Severity, e.Type)
		line("  SKU: %s - %s", e.SKU, orUnknown(e.ProductName))
		line("  Description: %s", e.Description)
		line("  Recommendation: %s", e.Recommendation)
		if e.Supplier != "" {
			line("  Supplier: %s", e.Supplier)
		}
	}

	line("")
	line(heavyRule)
	line("END OF REPORT")
	b.WriteString(heavyRule)
	return b.String()
}

// RunSummaryText resumen legible de una corrida.
func RunSummaryText(run PipelineRunDTO) string {
	var b strings.Builder
	line := func(format string, args ...any) { fmt.Fprintf(&b, format+"\n", args...) }

	line(heavyRule)
	line("              PROCUREMENT PIPELINE EXECUTION SUMMARY")
	line(heavyRule)
	line("  Processing Date:    %s", run.ProcessingDate)
	line("  Run ID:             %s", run.RunID)
	line("  Execution Start:    %s", run.StartedAt.Format("2006-01-02 15:04:05"))
	line("  Execution End:      %s", run.FinishedAt.Format("2006-01-02 15:04:05"))
	line("  Duration:           %.2f seconds", run.FinishedAt.Sub(run.StartedAt).Seconds())
	line("  Status:             %s", run.Status)
	if run.Error != "" {
		line("  Error:              %s", run.Error)
	}
	line(lightRule)
	line("  STAGE RESULTS:")
	for _, s := range run.Stages {
		line("    [%s] %s", s.Status, s.Name)
		for _, k := range sortedKeys(s.Counts) {
			line("       * %s: %s", k, numbers.Sprintf("%d", s.Counts[k]))
		}
		if s.Error != "" {
			line("       ! %s", s.Error)
		}
	}
	if len(run.Issues) > 0 {
		line(lightRule)
		line("  DATA QUALITY ISSUES (%d):", len(run.Issues))
		for _, is := range run.Issues {
			switch {
			case is.Index < 0:
				line("    [%s] %s: %s", is.Level, is.Source, is.Message)
			default:
				line("    [%s] %s #%d %s: %s", is.Level, is.Source, is.Index, is.Field, is.Message)
			}
		}
	}
	b.WriteString(heavyRule)
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
