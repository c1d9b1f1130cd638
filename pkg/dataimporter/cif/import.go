package cif

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/railtimetable/pkg/timetable"
)

// Destination receives a converted timetable
type Destination interface {
	InsertServices(ctx context.Context, services []timetable.ServiceEntry) error
	InsertAssociations(ctx context.Context, associations []timetable.AssociationEntry) error
	SetGeneratedDate(ctx context.Context, date timetable.Date) error
}

// importCleaner is implemented by destinations that keep earlier imports
// around until a new one has been written
type importCleaner interface {
	DeleteOtherImports(ctx context.Context, importID string) error
}

type Importer struct {
	Destination Destination
	ImportID    string

	// TrainsOnly drops bus and ship schedules
	TrainsOnly bool
}

func (i *Importer) Import(ctx context.Context, bundle *CommonInterfaceFormat) error {
	startTime := time.Now()

	if bundle.Header.UpdateIndicator == "U" {
		log.Warn().Str("file", bundle.Header.CurrentFileRef).Msg("Update extract imported as a full timetable")
	}

	services, associations := bundle.Convert(i.TrainsOnly)
	log.Info().
		Str("import", i.ImportID).
		Int("services", len(services)).
		Int("associations", len(associations)).
		Msg("Converted timetable")

	// Each collection is written in file order by a single writer
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		if err := i.Destination.InsertServices(ctx, services); err != nil {
			return fmt.Errorf("could not write services: %w", err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		if err := i.Destination.InsertAssociations(ctx, associations); err != nil {
			return fmt.Errorf("could not write associations: %w", err)
		}
		return nil
	})
	if err := p.Wait(); err != nil {
		return err
	}

	generatedDate, err := bundle.GeneratedDate()
	if err != nil {
		log.Warn().Err(err).Msg("No extract date in timetable header, using today")
		generatedDate = timetable.DateFromTime(time.Now().In(timetable.London()))
	}
	if err := i.Destination.SetGeneratedDate(ctx, generatedDate); err != nil {
		return err
	}

	if cleaner, ok := i.Destination.(importCleaner); ok {
		if err := cleaner.DeleteOtherImports(ctx, i.ImportID); err != nil {
			return fmt.Errorf("could not remove previous imports: %w", err)
		}
	}

	log.Info().
		Str("import", i.ImportID).
		Str("generated", generatedDate.String()).
		Msgf("Import took %s", time.Since(startTime).String())

	return nil
}
