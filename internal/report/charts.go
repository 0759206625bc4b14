package report

import (
	"github.com/xuri/excelize/v2"
)

// Chart size in pixels; both charts fit between row 7 and the tables at row 21.
const (
	chartWidth  = 480
	chartHeight = 260
)

func chartInfo(kind, anchor, sheet string, r Range) Chart {
	return Chart{
		Kind:       kind,
		Anchor:     anchor,
		Categories: r.Categories(sheet),
		Values:     r.Values(sheet),
	}
}

func chartTitle(text string, th Theme) []excelize.RichTextRun {
	return []excelize.RichTextRun{{
		Text: text,
		Font: &excelize.Font{Bold: true, Color: rgb(th.Text)},
	}}
}

func chartFill(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Color: []string{rgb(color)}, Pattern: 1}
}

// columnChart plots revenue per plan: brand fill, currency labels, no legend
// and horizontal gridlines only.
func columnChart(sheet string, r Range, opts Options) *excelize.Chart {
	th := opts.Theme
	axisFont := excelize.Font{Color: rgb(th.Text)}

	return &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       r.SeriesName(sheet),
			Categories: r.Categories(sheet),
			Values:     r.Values(sheet),
			Fill:       chartFill(th.Brand),
		}},
		Title:     chartTitle(planChartTitle, th),
		Legend:    excelize.ChartLegend{Position: "none"},
		Dimension: excelize.ChartDimension{Width: chartWidth, Height: chartHeight},
		Fill:      chartFill(th.Background),
		Border:    excelize.ChartLine{Type: excelize.ChartLineNone},
		PlotArea: excelize.ChartPlotArea{
			ShowVal: true,
			NumFmt:  excelize.ChartNumFmt{CustomNumFmt: opts.CurrencyFormat},
			Fill:    chartFill(th.Background),
		},
		XAxis: excelize.ChartAxis{MajorGridLines: false, Font: axisFont},
		YAxis: excelize.ChartAxis{MajorGridLines: true, Font: axisFont},
	}
}

// doughnutChart plots annual revenue per renewal status with one color per
// category and percentage labels.
func doughnutChart(sheet string, r Range, opts Options) *excelize.Chart {
	th := opts.Theme

	return &excelize.Chart{
		Type: excelize.Doughnut,
		Series: []excelize.ChartSeries{{
			Name:       r.SeriesName(sheet),
			Categories: r.Categories(sheet),
			Values:     r.Values(sheet),
			DataPoint:  dataPoints(r.Rows(), th),
		}},
		Title:     chartTitle(renewChartTitle, th),
		Legend:    excelize.ChartLegend{Position: "bottom"},
		Dimension: excelize.ChartDimension{Width: chartWidth, Height: chartHeight},
		Fill:      chartFill(th.Background),
		Border:    excelize.ChartLine{Type: excelize.ChartLineNone},
		PlotArea:  excelize.ChartPlotArea{ShowPercent: true},
		HoleSize:  50,
	}
}

func dataPoints(n int, th Theme) []excelize.ChartDataPoint {
	colors := PointColors(n, th)
	points := make([]excelize.ChartDataPoint, n)
	for i, c := range colors {
		points[i] = excelize.ChartDataPoint{Index: i, Fill: chartFill(c)}
	}
	return points
}

// PointColors assigns doughnut slice colors: the neutral color, then the
// brand color, then the palette, cycling when categories outnumber colors.
func PointColors(n int, th Theme) []string {
	cycle := append([]string{th.Neutral, th.Brand}, th.Palette...)
	colors := make([]string, n)
	for i := range colors {
		colors[i] = cycle[i%len(cycle)]
	}
	return colors
}
