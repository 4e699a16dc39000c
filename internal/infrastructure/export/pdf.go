package exporter

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"io"
	"sort"
	"time"

	"github.com/finops/backend/internal/domain/report"
	"github.com/finops/backend/internal/infrastructure/printing"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrRendererUnavailable is returned for PDF exports when no renderer is configured.
var ErrRendererUnavailable = errors.New("pdf renderer not configured")

const pageFooter = `<div style="font-size:8px;width:100%;text-align:center;color:#666">` +
	`<span class="pageNumber"></span> / <span class="totalPages"></span></div>`

// titleCase upper-cases the first letter of every word. Casers are stateful,
// so each call gets its own.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

type pdfEncoder[R any] struct {
	renderer printing.PDFRenderer
}

type pdfFilter struct {
	Key, Value string
}

type pdfView struct {
	Title       string
	Subtitle    string
	GeneratedAt string
	Filters     []pdfFilter
	Groups      []report.Group
	Totals      report.Totals
}

// Encode regroups every row through the aggregator and renders a grouped
// report, one section per client or profile, followed by grand totals.
func (e *pdfEncoder[R]) Encode(ctx context.Context, w io.Writer, doc *Document[R], rows Rows[R]) (int64, error) {
	if e.renderer == nil {
		return 0, ErrRendererUnavailable
	}

	agg := report.NewAggregator(true)
	var n int64
	err := rows(func(chunk []R) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, r := range chunk {
			agg.Add(doc.Dataset.Entry(r))
		}
		n += int64(len(chunk))
		return nil
	})
	if err != nil {
		return n, err
	}

	html, err := renderReportHTML(doc, agg.Groups())
	if err != nil {
		return n, err
	}
	res, err := e.renderer.Render(ctx, &printing.RenderRequest{
		HTML:        html,
		Title:       titleCase(doc.Dataset.Title),
		Orientation: printing.OrientationLandscape,
		Margins:     printing.DefaultMargins(),
		FooterHTML:  pageFooter,
	})
	if err != nil {
		return n, err
	}
	_, err = w.Write(res.PDFData)
	return n, err
}

func renderReportHTML[R any](doc *Document[R], groups []report.Group) (string, error) {
	view := pdfView{
		Title:       titleCase(doc.Dataset.Title),
		Subtitle:    doc.Subtitle,
		GeneratedAt: doc.GeneratedAt.UTC().Format(time.DateTime),
		Groups:      groups,
		Totals:      report.Total(groups),
	}
	for k, v := range doc.FiltersApplied {
		view.Filters = append(view.Filters, pdfFilter{Key: k, Value: v})
	}
	sort.Slice(view.Filters, func(i, j int) bool { return view.Filters[i].Key < view.Filters[j].Key })

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"money": report.FormatCurrency,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.DateTime)
	},
	"title": titleCase,
}).Parse(`<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 10px; color: #222; }
h1 { font-size: 18px; margin: 0 0 4px; }
h2 { font-size: 13px; margin: 18px 0 6px; border-bottom: 1px solid #999; }
table { width: 100%; border-collapse: collapse; }
th, td { padding: 3px 5px; border-bottom: 1px solid #ddd; text-align: left; }
td.num, th.num { text-align: right; }
tr.total td { font-weight: bold; border-top: 1px solid #666; }
.meta { color: #666; margin-bottom: 8px; }
.note { color: #a33; font-style: italic; }
</style></head>
<body>
<h1>{{.Title}}</h1>
{{if .Subtitle}}<div class="meta">{{.Subtitle}}</div>{{end}}
<div class="meta">Generated {{.GeneratedAt}} UTC{{range .Filters}} &middot; {{.Key}}: {{.Value}}{{end}}</div>
{{range .Groups}}
<h2>{{.Label}}</h2>
<table>
<tr><th>Date</th><th>Type</th><th>Bank</th><th>Card</th><th>Remark</th><th class="num">Amount</th><th class="num">Charges</th></tr>
{{range .Entries}}<tr><td>{{date .At}}</td><td>{{title (print .Type)}}</td><td>{{.Bank}}</td><td>{{.Card}}</td><td>{{.Remark}}</td><td class="num">{{money .SignedAmount}}</td><td class="num">{{money .Charges}}</td></tr>
{{end}}<tr class="total"><td colspan="5">Transaction Amount / Withdraw Charges / Final Amount</td><td class="num">{{.Display.TransactionAmount}}</td><td class="num">{{.Display.WithdrawCharges}} / {{.Display.FinalAmount}}</td></tr>
</table>
{{if .IsOnlyWithdraw}}<div class="note">Withdrawals only: amounts show the charges total.</div>{{end}}
{{end}}
<h2>Grand Total</h2>
<table>
<tr><th>Groups</th><th>Transactions</th><th class="num">Transaction Amount</th><th class="num">Withdraw Charges</th><th class="num">Final Amount</th></tr>
<tr class="total"><td>{{.Totals.GroupCount}}</td><td>{{.Totals.TransactionCount}}</td><td class="num">{{.Totals.Display.TransactionAmount}}</td><td class="num">{{.Totals.Display.WithdrawCharges}}</td><td class="num">{{.Totals.Display.FinalAmount}}</td></tr>
</table>
</body></html>`))
