package dataimporter

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/resty.v1"
)

func isValidUrl(toTest string) bool {
	_, err := url.ParseRequestURI(toTest)
	if err != nil {
		return false
	}

	u, err := url.Parse(toTest)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	return true
}

// Fetch returns a local path for source, downloading it first when it is a
// URL. The downloaded file keeps the extension the server names it with so
// the parser can tell the feed format apart. Cleanup removes anything
// downloaded.
func Fetch(ctx context.Context, source string) (string, func(), error) {
	if !isValidUrl(source) {
		return source, func() {}, nil
	}

	directory, err := os.MkdirTemp(os.TempDir(), "railtimetable-data-importer-")
	if err != nil {
		return "", nil, fmt.Errorf("cannot create temporary directory: %w", err)
	}
	cleanup := func() {
		os.RemoveAll(directory)
	}

	output := filepath.Join(directory, "download")

	resp, err := resty.R().
		SetContext(ctx).
		SetHeader("User-Agent", "railtimetable-data-importer").
		SetOutput(output).
		Get(source)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("could not download %s: %w", source, err)
	}
	if resp.IsError() {
		cleanup()
		return "", nil, fmt.Errorf("could not download %s: %s", source, resp.Status())
	}

	sourceURL, _ := url.Parse(source)
	extension := filepath.Ext(path.Base(sourceURL.Path))
	if _, params, err := mime.ParseMediaType(resp.Header().Get("Content-Disposition")); err == nil {
		extension = filepath.Ext(params["filename"])
	}

	named := output + extension
	if err := os.Rename(output, named); err != nil {
		cleanup()
		return "", nil, err
	}

	log.Info().Str("source", source).Str("path", named).Msg("Downloaded timetable")

	return named, cleanup, nil
}
