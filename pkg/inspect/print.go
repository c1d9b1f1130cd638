package inspect

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/travigo/railtimetable/pkg/stationorder"
	"github.com/travigo/railtimetable/pkg/timetable"
)

func newTabWriter(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 5, 3, 3, ' ', 0)
}

func portionNames(portions timetable.PortionEnds) string {
	names := make([]string, 0, len(portions))
	for _, portion := range portions {
		names = append(names, portion.Location().String())
	}
	return strings.Join(names, " & ")
}

func identity(property *timetable.ServiceProperty) string {
	if property == nil {
		return ""
	}
	return property.Identity
}

// PrintBoard writes one line per call. Departure boards name where each
// portion is going, arrival boards where it came from.
func PrintBoard(out io.Writer, board *timetable.DepartureBoard) error {
	w := newTabWriter(out)

	heading := "destination"
	if board.TimeType.IsArrival() {
		heading = "origin"
	}

	fmt.Fprintf(w, "time \t uid \t headcode \t platform \t %s \t toc\n", heading)
	for _, call := range board.Calls {
		fmt.Fprintf(w, "%s \t %s \t %s \t %s \t %s \t %s\n",
			call.Time,
			call.UID,
			identity(call.ServiceProperty),
			call.Point.Timing().Platform,
			portionNames(call.Portions(board.TimeType)),
			call.TOC,
		)
	}

	return w.Flush()
}

// PrintLayout writes the station matrix with a column per portion
func PrintLayout(out io.Writer, layout *stationorder.Layout) error {
	w := newTabWriter(out)

	fmt.Fprint(w, "station")
	for column := 0; column < layout.Columns(); column++ {
		uid := ""
		if calls := layout.Column(column); len(calls) > 0 {
			uid = calls[0].UID
		}
		fmt.Fprintf(w, " \t %s", uid)
	}
	fmt.Fprintln(w)

	for i, row := range layout.Rows {
		fmt.Fprint(w, layout.Stations[i].String())
		for _, call := range row {
			cell := ""
			if call != nil {
				cell = call.Time.String()
			}
			fmt.Fprintf(w, " \t %s", cell)
		}
		fmt.Fprintln(w)
	}

	return w.Flush()
}

func formatTime(public *timetable.Time, working timetable.Time) string {
	if public != nil {
		return public.String()
	}
	return "(" + working.String() + ")"
}

// PrintService writes the points of a service, with working times in
// brackets where there is no public time, followed by its associations
func PrintService(out io.Writer, service *timetable.FullService) error {
	w := newTabWriter(out)
	schedule := service.Service()

	fmt.Fprintf(w, "%s on %s \t %s \t %s \t %s\n",
		service.UID(), service.Date, schedule.TOC, schedule.Mode, identity(schedule.ServicePropertyAt(nil)),
	)
	fmt.Fprintln(w, "location \t platform \t arrive \t depart")

	for _, point := range schedule.Points {
		var arrive, depart string

		switch p := point.(type) {
		case *timetable.PassingPoint:
			arrive = "pass " + p.PassTime.String()
		default:
			if arrival, ok := point.(timetable.ArrivalPoint); ok {
				arrive = formatTime(arrival.PublicArrival(), arrival.WorkingArrival())
			}
			if departure, ok := point.(timetable.DeparturePoint); ok {
				depart = formatTime(departure.PublicDeparture(), departure.WorkingDeparture())
			}
		}

		fmt.Fprintf(w, "%s \t %s \t %s \t %s\n", point.Timing().Location, point.Timing().Platform, arrive, depart)
	}

	if service.DivideFrom != nil {
		fmt.Fprintf(w, "divides from %s at %s\n", service.DivideFrom.Primary.ID(), service.DivideFrom.Association.Location)
	}
	for _, association := range service.EnRoute {
		verb := "divides into"
		if association.Association.Category == timetable.Join {
			verb = "is joined by"
		}
		fmt.Fprintf(w, "%s %s at %s\n", verb, association.Secondary.ID(), association.Association.Location)
	}
	if service.JoinTo != nil {
		fmt.Fprintf(w, "joins %s at %s\n", service.JoinTo.Primary.ID(), service.JoinTo.Association.Location)
	}

	return w.Flush()
}
