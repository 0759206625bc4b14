package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

type styles struct {
	background  int
	title       int
	label       int
	total       int
	tableHeader int
	tableCell   int
	tableMoney  int
}

func newStyles(f *excelize.File, opts Options) (*styles, error) {
	th := opts.Theme
	bg := solidFill(th.Background)
	grid := boxBorder(th.Text)
	currency := opts.CurrencyFormat

	st := &styles{}
	defs := []struct {
		dst   *int
		name  string
		style *excelize.Style
	}{
		{&st.background, "background", &excelize.Style{Fill: bg}},
		{&st.title, "title", &excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 20, Color: th.Brand},
			Fill: bg,
		}},
		{&st.label, "label", &excelize.Style{
			Font: &excelize.Font{Italic: true, Color: th.Label},
			Fill: bg,
		}},
		{&st.total, "total", &excelize.Style{
			Font:         &excelize.Font{Bold: true, Size: 14, Color: th.Text},
			Fill:         bg,
			CustomNumFmt: &currency,
		}},
		{&st.tableHeader, "table header", &excelize.Style{
			Font:   &excelize.Font{Bold: true, Color: th.Text},
			Fill:   solidFill(th.Header),
			Border: grid,
		}},
		{&st.tableCell, "table cell", &excelize.Style{
			Font:   &excelize.Font{Color: th.Text},
			Fill:   bg,
			Border: grid,
		}},
		{&st.tableMoney, "table money", &excelize.Style{
			Font:         &excelize.Font{Color: th.Text},
			Fill:         bg,
			Border:       grid,
			CustomNumFmt: &currency,
		}},
	}

	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return nil, fmt.Errorf("could not create %s style: %w", d.name, err)
		}
		*d.dst = id
	}
	return st, nil
}

func solidFill(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
}

func boxBorder(color string) []excelize.Border {
	sides := []string{"left", "top", "right", "bottom"}
	border := make([]excelize.Border, len(sides))
	for i, side := range sides {
		border[i] = excelize.Border{Type: side, Color: color, Style: 1}
	}
	return border
}
