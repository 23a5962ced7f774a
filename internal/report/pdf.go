package report

import (
	"fmt"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
)

var tableHeaders = []string{"Date", "Project", "Description", "Hours"}

func tableProps() props.TableList {
	return props.TableList{
		HeaderProp: props.TableListContent{
			Size:      10,
			GridSizes: []uint{2, 3, 5, 2},
		},
		ContentProp: props.TableListContent{
			Size:      10,
			GridSizes: []uint{2, 3, 5, 2},
		},
		Align:                consts.Center,
		AlternatedBackground: &color.Color{Red: 240, Green: 240, Blue: 240},
		HeaderContentSpace:   1,
		Line:                 false,
	}
}

// RenderPDF lays out the summary as an A4 report covering from..to.
func RenderPDF(s *Summary, from, to string) ([]byte, error) {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 10, 20)

	m.RegisterHeader(func() {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text("Time Report", props.Text{
					Top:   3,
					Style: consts.Bold,
					Align: consts.Center,
					Size:  16,
				})
			})
		})
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text(fmt.Sprintf("%s - %s", from, to), props.Text{
					Top:   3,
					Style: consts.Normal,
					Align: consts.Center,
					Size:  12,
				})
			})
		})
	})

	if len(s.Groups) == 0 {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text("No time entries in this period", props.Text{Top: 5, Size: 11, Align: consts.Center})
			})
		})
	}

	for _, g := range s.Groups {
		rows := make([][]string, 0, len(g.Rows))
		for _, r := range g.Rows {
			rows = append(rows, []string{r.Date, r.Project, r.Description, formatHours(r.Hours)})
		}

		if g.Title != "" {
			title := g.Title
			m.Row(10, func() {
				m.Col(12, func() {
					m.Text(title, props.Text{
						Top:   5,
						Style: consts.Bold,
						Size:  12,
						Align: consts.Left,
					})
				})
			})
		}

		m.TableList(tableHeaders, rows, tableProps())

		subtotal := g.Hours
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text(fmt.Sprintf("Subtotal: %s", formatHours(subtotal)), props.Text{
					Style: consts.Bold,
					Align: consts.Right,
					Size:  10,
				})
			})
		})
		m.Row(5, func() {})
	}

	if len(s.Projects) > 0 {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text("By project", props.Text{Top: 5, Style: consts.Bold, Size: 12})
			})
		})
		for _, p := range s.Projects {
			p := p
			m.Row(7, func() {
				m.Col(9, func() {
					m.Text(p.Name, props.Text{Size: 10})
				})
				m.Col(3, func() {
					m.Text(formatHours(p.Hours), props.Text{Size: 10, Align: consts.Right})
				})
			})
		}
	}

	m.Row(20, func() {
		m.Col(12, func() {
			m.Text(fmt.Sprintf("Total: %s", formatHours(s.TotalHours)), props.Text{
				Top:   10,
				Style: consts.Bold,
				Align: consts.Right,
				Size:  12,
			})
		})
	})

	buf, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

func formatHours(h float64) string {
	return fmt.Sprintf("%.2f h", h)
}
