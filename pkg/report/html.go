/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/carverauto/serialsync/pkg/models"
	"github.com/carverauto/serialsync/pkg/reconcile"
)

// Row is one line of the HTML report.
type Row struct {
	DisplayName     string
	SerialNumber    string
	OperatingSystem string
	Ownership       string
	LastSync        string
	Outcome         string
}

// RowsFrom converts notable records into report rows, preserving order.
func RowsFrom(notable []reconcile.Classified) []Row {
	rows := make([]Row, 0, len(notable))

	for _, n := range notable {
		rows = append(rows, Row{
			DisplayName:     n.Record.DisplayName,
			SerialNumber:    n.Record.SerialNumber,
			OperatingSystem: n.Record.OperatingSystem,
			Ownership:       n.Record.Ownership.String(),
			LastSync:        formatTime(n.Record.LastSync),
			Outcome:         n.Outcome.String(),
		})
	}

	return rows
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}

	return t.UTC().Format("2006-01-02 15:04")
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Segoe UI, Arial, sans-serif; font-size: 13px; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
th { background: #f0f0f0; }
</style>
</head>
<body>
<h2>{{.Title}}</h2>
<p>{{len .Rows}} record(s).</p>
{{- if .Rows}}
<table>
<tr><th>Device</th><th>Serial Number</th><th>Operating System</th><th>Ownership</th><th>Last Sync (UTC)</th><th>Status</th></tr>
{{- range .Rows}}
<tr><td>{{.DisplayName}}</td><td>{{.SerialNumber}}</td><td>{{.OperatingSystem}}</td><td>{{.Ownership}}</td><td>{{.LastSync}}</td><td>{{.Outcome}}</td></tr>
{{- end}}
</table>
{{- end}}
</body>
</html>
`))

// RenderHTML renders rows as an HTML table. Every field is escaped for its
// context, so vendor data cannot inject markup.
func RenderHTML(title string, rows []Row) (string, error) {
	var buf bytes.Buffer

	err := reportTemplate.Execute(&buf, struct {
		Title string
		Rows  []Row
	}{Title: title, Rows: rows})
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	return buf.String(), nil
}

// Title returns the report heading for a runbook.
func Title(s *models.Summary) string {
	prefix := ""
	if s.DryRun {
		prefix = "[DRY RUN] "
	}

	return fmt.Sprintf("%s%s report, %s", prefix, s.Runbook, s.StartedAt.UTC().Format(time.DateOnly))
}
