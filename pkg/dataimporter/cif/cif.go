package cif

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// recordLength is the width every CIF record is padded to
const recordLength = 80

type CommonInterfaceFormat struct {
	Header              Header
	TrainDefinitionSets []*TrainDefinitionSet
	Associations        []Association
	Tiplocs             []TiplocInsert

	PhysicalStations []PhysicalStation
	StationAliases   []StationAlias
}

// Header is the HD record opening a timetable file
type Header struct {
	MainframeIdentity string
	DateOfExtract     string
	TimeOfExtract     string
	CurrentFileRef    string
	LastFileRef       string
	UpdateIndicator   string
	UserStartDate     string
	UserEndDate       string
}

// ParseFile reads a timetable bundle. Zip archives are searched for their
// MCA and MSN members, anything else is read as a bare file by extension.
func (c *CommonInterfaceFormat) ParseFile(path string) error {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		archive, err := zip.OpenReader(path)
		if err != nil {
			return fmt.Errorf("could not open archive %s: %w", path, err)
		}
		defer archive.Close()

		for _, zipFile := range archive.File {
			if err := c.parseArchiveMember(zipFile); err != nil {
				return err
			}
		}
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return c.parse(filepath.Base(path), file)
}

func (c *CommonInterfaceFormat) parseArchiveMember(zipFile *zip.File) error {
	file, err := zipFile.Open()
	if err != nil {
		return fmt.Errorf("could not open %s: %w", zipFile.Name, err)
	}
	defer file.Close()

	return c.parse(zipFile.Name, file)
}

func (c *CommonInterfaceFormat) parse(name string, reader io.Reader) error {
	switch strings.ToUpper(filepath.Ext(name)) {
	case ".MCA", ".CIF":
		log.Info().Str("file", name).Msgf("Parsing Full Basic Timetable Detail")
		if err := c.ParseMCA(reader); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		log.Info().
			Int("schedules", len(c.TrainDefinitionSets)).
			Int("associations", len(c.Associations)).
			Int("tiplocs", len(c.Tiplocs)).
			Msgf("Parsed Full Basic Timetable Detail")
	case ".MSN":
		log.Info().Str("file", name).Msgf("Parsing Master Station Names")
		if err := c.ParseMSN(reader); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		log.Info().
			Int("stations", len(c.PhysicalStations)).
			Int("aliases", len(c.StationAliases)).
			Msgf("Parsed Master Station Names")
	default:
		log.Debug().Str("file", name).Msg("Skipping file")
	}

	return nil
}

// record pads a line to the full record width so fixed columns can be cut
// from lines whose trailing spaces were stripped
type record string

func newRecord(line string) record {
	line = strings.TrimRight(line, "\r\n")
	if len(line) < recordLength {
		line += strings.Repeat(" ", recordLength-len(line))
	}
	return record(line)
}

// field returns the columns [from, to) with surrounding spaces removed
func (r record) field(from int, to int) string {
	return strings.TrimSpace(string(r[from:to]))
}

// raw returns the columns [from, to) untouched
func (r record) raw(from int, to int) string {
	return string(r[from:to])
}

func newScanner(reader io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)
	return scanner
}
