// Package report 把分析结果渲染成终端表格或 JSON。
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	rollup "taengine/internal/analysis/metrics"
	"taengine/internal/analysis/pattern"
	"taengine/internal/engine"
	"taengine/internal/pkg/mathx"
)

// maxDescription 描述列的最大宽度
const maxDescription = 90

// JSON writes results as indented JSON.
func JSON(w io.Writer, results []engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// Tables 为每个结果依次输出形态表与周期表。
func Tables(w io.Writer, results []engine.Result, periods []rollup.Period) {
	for _, res := range results {
		fmt.Fprintf(w, "\n%s %s  run=%s  candles=%d  close=%s\n",
			res.Symbol, res.Interval, res.RunID, res.Candles, num(float64(res.LastClose), 4))
		Patterns(w, res.Patterns)
		Periods(w, res.Periods, periods)
	}
}

// Patterns 以类别顺序渲染形态表。
func Patterns(w io.Writer, cats pattern.Categorized) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"category", "type", "index", "time", "description"})
	for _, cat := range pattern.Categories {
		for _, p := range cats[cat] {
			ts := "-"
			if p.Timestamp != nil {
				ts = p.Timestamp.Format("2006-01-02 15:04")
			}
			t.AppendRow(table.Row{string(cat), p.Type, p.Index, ts, TrimTo(p.Description, maxDescription)})
		}
	}
	if t.Length() == 0 {
		t.AppendRow(table.Row{"-", "no patterns", "", "", ""})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
	t.Render()
}

// Periods 按配置的周期顺序渲染汇总表。
func Periods(w io.Writer, report rollup.Report, order []rollup.Period) {
	if len(report) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"period", "high", "low", "change %", "volatility %", "volume", "support", "resistance", "divergence"})
	for _, p := range order {
		m, ok := report[p.Name]
		if !ok {
			continue
		}
		t.AppendRow(table.Row{
			m.Metrics.Period,
			num(float64(m.Metrics.HighestPrice), 4),
			num(float64(m.Metrics.LowestPrice), 4),
			num(float64(m.Metrics.PriceChangePercent), 2),
			num(float64(m.Metrics.Volatility), 2),
			num(float64(m.Metrics.TotalVolume), 0),
			num(float64(m.KeyLevels.Support), 4),
			num(float64(m.KeyLevels.Resistance), 4),
			divergence(m.Divergences),
		})
	}
	t.Render()
}

func divergence(d rollup.Divergences) string {
	var parts []string
	if d.Bullish {
		parts = append(parts, "bullish")
	}
	if d.Bearish {
		parts = append(parts, "bearish")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "/")
}

func num(v float64, decimals int) string {
	if !mathx.IsFinite(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", decimals, v)
}

// TrimTo 限制字符串长度，超长则追加省略号
func TrimTo(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
