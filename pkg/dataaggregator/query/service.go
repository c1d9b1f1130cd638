package query

import "github.com/travigo/railtimetable/pkg/timetable"

type Service struct {
	UID  string
	Date timetable.Date

	PermanentOnly       bool
	IncludeNonPassenger bool
}

// ServicesByRSID finds every train carrying a retail service id. Six
// characters match any portion of the train.
type ServicesByRSID struct {
	RSID string
	Date timetable.Date

	PermanentOnly       bool
	IncludeNonPassenger bool
}
