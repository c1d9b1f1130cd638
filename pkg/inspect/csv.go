package inspect

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/travigo/railtimetable/pkg/timetable"
)

type boardRow struct {
	Date     string `csv:"date"`
	Time     string `csv:"time"`
	UID      string `csv:"uid"`
	Headcode string `csv:"headcode"`
	Platform string `csv:"platform"`
	Portions string `csv:"portions"`
	TOC      string `csv:"toc"`
	STP      string `csv:"stp"`
}

// WriteBoardCSV writes the board as CSV with a header row
func WriteBoardCSV(out io.Writer, board *timetable.DepartureBoard) error {
	rows := make([]*boardRow, 0, len(board.Calls))
	for _, call := range board.Calls {
		rows = append(rows, &boardRow{
			Date:     call.Date.String(),
			Time:     call.Time.String(),
			UID:      call.UID,
			Headcode: identity(call.ServiceProperty),
			Platform: call.Point.Timing().Platform,
			Portions: portionNames(call.Portions(board.TimeType)),
			TOC:      call.TOC,
			STP:      string(call.STP),
		})
	}

	return gocsv.Marshal(rows, out)
}
