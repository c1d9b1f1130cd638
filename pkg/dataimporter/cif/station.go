package cif

import (
	"io"
	"strings"
)

type PhysicalStation struct {
	StationName                string
	CATEInterchangeStatus      string
	TIPLOCCode                 string
	MinorCRSCode               string
	CRSCode                    string
	OrdnanceSurveyGridRefEast  string
	OrdnanceSurveyGridRefNorth string
	MinimumChangeTime          string
}

type StationAlias struct {
	StationName  string
	StationAlias string
}

func (c *CommonInterfaceFormat) ParseMSN(reader io.Reader) error {
	scanner := newScanner(reader)
	for scanner.Scan() {
		if scanner.Text() == "" {
			continue
		}
		line := newRecord(scanner.Text())

		switch line.raw(0, 1) {
		case "A":
			// The file header is also an A record
			if strings.HasPrefix(line.field(1, recordLength), "FILE-SPEC") {
				continue
			}

			physicalStation := PhysicalStation{
				StationName:                line.field(5, 31),
				CATEInterchangeStatus:      line.field(35, 36),
				TIPLOCCode:                 line.field(36, 43),
				MinorCRSCode:               line.field(43, 46),
				CRSCode:                    line.field(49, 52),
				OrdnanceSurveyGridRefEast:  line.field(52, 57),
				OrdnanceSurveyGridRefNorth: line.field(58, 63),
				MinimumChangeTime:          line.field(63, 65),
			}
			if physicalStation.TIPLOCCode == "" {
				continue
			}
			c.PhysicalStations = append(c.PhysicalStations, physicalStation)
		case "L":
			stationAlias := StationAlias{
				StationName:  line.field(5, 31),
				StationAlias: line.field(36, 62),
			}
			c.StationAliases = append(c.StationAliases, stationAlias)
		}
	}

	return scanner.Err()
}
