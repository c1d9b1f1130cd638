package stationorder

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed routes.yaml
var defaultRoutes []byte

// Route is a known ordering of stations along a line
type Route struct {
	Name     string   `yaml:"name"`
	Stations []string `yaml:"stations"`
}

// RouteLibrary is used to seed the station axis of a board before anything
// is known about the order of its stations
type RouteLibrary struct {
	Routes []Route `yaml:"routes"`
}

func ParseLibrary(data []byte) (*RouteLibrary, error) {
	library := &RouteLibrary{}
	if err := yaml.Unmarshal(data, library); err != nil {
		return nil, fmt.Errorf("could not parse route library: %w", err)
	}
	return library, nil
}

// LoadLibrary reads a route library file, falling back to the built in
// routes when no path is given
func LoadLibrary(path string) (*RouteLibrary, error) {
	if path == "" {
		return DefaultLibrary()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseLibrary(data)
}

func DefaultLibrary() (*RouteLibrary, error) {
	return ParseLibrary(defaultRoutes)
}

// seed picks the route, in either direction, sharing the most stations in
// order with the given placement
func (l *RouteLibrary) seed(order []orderItem) []station {
	if l == nil {
		return nil
	}

	var best []station
	bestCount := 0

	for _, route := range l.Routes {
		for _, list := range [][]string{route.Stations, reversed(route.Stations)} {
			count := 0
			start := 0
			for _, item := range order {
				for index := start; index < len(list); index++ {
					if list[index] == item.station.location.CRS {
						count++
						start = index + 1
						break
					}
				}
			}

			if count > bestCount {
				best = placeholders(list)
				bestCount = count
			}
		}
	}

	return best
}

func reversed[T any](items []T) []T {
	result := make([]T, len(items))
	for i, item := range items {
		result[len(items)-1-i] = item
	}
	return result
}
