package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/railtimetable/pkg/database"
	"github.com/travigo/railtimetable/pkg/repository"
	"github.com/travigo/railtimetable/pkg/timetable"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/exp/slices"
)

const batchSize = 200

const generatedDateKey = "generated_date"

// Store keeps the timetable in MongoDB. Entries are read back in the order
// they were written so the overlay tie-break matches the source file.
type Store struct {
	Holidays timetable.HolidayCalendar

	// ImportID is stamped on every document written
	ImportID string

	services     *mongo.Collection
	associations *mongo.Collection
	metadata     *mongo.Collection
}

func NewStore(holidays timetable.HolidayCalendar) *Store {
	return &Store{
		Holidays:     holidays,
		services:     database.GetCollection(database.ServicesCollection),
		associations: database.GetCollection(database.AssociationsCollection),
		metadata:     database.GetCollection(database.MetadataCollection),
	}
}

var insertionOrder = options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

func periodCovers(from timetable.Date, to timetable.Date) bson.D {
	return bson.D{
		{Key: "period.from", Value: bson.M{"$lte": to}},
		{Key: "period.to", Value: bson.M{"$gte": from}},
	}
}

func (s *Store) findServices(ctx context.Context, filter bson.D) ([]timetable.ServiceEntry, error) {
	cursor, err := s.services.Find(ctx, filter, insertionOrder)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []timetable.ServiceEntry
	for cursor.Next(ctx) {
		var document serviceDocument
		if err := cursor.Decode(&document); err != nil {
			return nil, err
		}

		entry, err := document.entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, cursor.Err()
}

func (s *Store) selectService(entries []timetable.ServiceEntry, uid string, date timetable.Date, permanentOnly bool) *timetable.DatedService {
	var candidates []timetable.ServiceEntry
	for _, entry := range entries {
		if entry.Header().UID == uid && entry.Header().RunsOnDate(date, s.Holidays) {
			candidates = append(candidates, entry)
		}
	}

	winner, found := timetable.SelectOverlay(candidates, permanentOnly)
	if !found {
		return nil
	}
	return timetable.NewDatedService(winner, date)
}

func (s *Store) Service(ctx context.Context, uid string, date timetable.Date, permanentOnly bool) (*timetable.DatedService, error) {
	filter := append(bson.D{{Key: "uid", Value: uid}}, periodCovers(date, date)...)

	entries, err := s.findServices(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("could not load service %s: %w", uid, err)
	}

	return s.selectService(entries, uid, date, permanentOnly), nil
}

func (s *Store) Services(ctx context.Context, keys []timetable.ServiceKey, permanentOnly bool) (map[timetable.ServiceKey]*timetable.DatedService, error) {
	result := map[timetable.ServiceKey]*timetable.DatedService{}
	if len(keys) == 0 {
		return result, nil
	}

	var uids []string
	first, last := keys[0].Date, keys[0].Date
	for _, key := range keys {
		if !slices.Contains(uids, key.UID) {
			uids = append(uids, key.UID)
		}
		if key.Date.Before(first) {
			first = key.Date
		}
		if key.Date.After(last) {
			last = key.Date
		}
	}

	filter := append(bson.D{{Key: "uid", Value: bson.M{"$in": uids}}}, periodCovers(first, last)...)
	entries, err := s.findServices(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("could not load services: %w", err)
	}

	byUID := map[string][]timetable.ServiceEntry{}
	for _, entry := range entries {
		uid := entry.Header().UID
		byUID[uid] = append(byUID[uid], entry)
	}

	for _, key := range keys {
		if dated := s.selectService(byUID[key.UID], key.UID, key.Date, permanentOnly); dated != nil {
			result[key] = dated
		}
	}

	return result, nil
}

func (s *Store) AssociationEntries(ctx context.Context, uid string, date timetable.Date) ([]timetable.AssociationEntry, error) {
	filter := append(bson.D{
		{Key: "$or", Value: bson.A{
			bson.M{"primaryuid": uid},
			bson.M{"secondaryuid": uid},
		}},
	}, periodCovers(date.AddDays(-1), date.AddDays(1))...)

	entries, err := s.findAssociations(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("could not load associations of %s: %w", uid, err)
	}
	return entries, nil
}

// AssociationEntriesForServices loads the associations of every service in
// one query over the union of their dates, then splits them per service
func (s *Store) AssociationEntriesForServices(ctx context.Context, services []*timetable.DatedService) (map[timetable.ServiceKey][]timetable.AssociationEntry, error) {
	if len(services) == 0 {
		return map[timetable.ServiceKey][]timetable.AssociationEntry{}, nil
	}

	uids := make([]string, 0, len(services))
	first, last := services[0].Date, services[0].Date
	for _, dated := range services {
		uids = append(uids, dated.UID())
		if dated.Date.Before(first) {
			first = dated.Date
		}
		if dated.Date.After(last) {
			last = dated.Date
		}
	}
	slices.Sort(uids)
	uids = slices.Compact(uids)

	filter := append(bson.D{
		{Key: "$or", Value: bson.A{
			bson.M{"primaryuid": bson.M{"$in": uids}},
			bson.M{"secondaryuid": bson.M{"$in": uids}},
		}},
	}, periodCovers(first.AddDays(-1), last.AddDays(1))...)

	entries, err := s.findAssociations(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("could not load associations of %d services: %w", len(services), err)
	}

	return groupAssociationEntries(services, entries), nil
}

func (s *Store) findAssociations(ctx context.Context, filter bson.D) ([]timetable.AssociationEntry, error) {
	cursor, err := s.associations.Find(ctx, filter, insertionOrder)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []timetable.AssociationEntry
	for cursor.Next(ctx) {
		var document associationDocument
		if err := cursor.Decode(&document); err != nil {
			return nil, err
		}
		entries = append(entries, document.entry())
	}

	return entries, cursor.Err()
}

// groupAssociationEntries hands each service the entries naming it whose
// period touches the days either side of its date, keeping their order
func groupAssociationEntries(services []*timetable.DatedService, entries []timetable.AssociationEntry) map[timetable.ServiceKey][]timetable.AssociationEntry {
	byUID := map[string][]timetable.AssociationEntry{}
	for _, entry := range entries {
		header := entry.Header()
		byUID[header.PrimaryUID] = append(byUID[header.PrimaryUID], entry)
		if header.SecondaryUID != header.PrimaryUID {
			byUID[header.SecondaryUID] = append(byUID[header.SecondaryUID], entry)
		}
	}

	grouped := make(map[timetable.ServiceKey][]timetable.AssociationEntry, len(services))
	for _, dated := range services {
		var matching []timetable.AssociationEntry
		for _, entry := range byUID[dated.UID()] {
			if repository.AssociationWindow(entry, dated.Date) {
				matching = append(matching, entry)
			}
		}
		grouped[dated.Key()] = matching
	}

	return grouped
}

func (s *Store) CandidateIdentifiers(ctx context.Context, crs string, timeType timetable.TimeType, from time.Time, to time.Time) ([]string, error) {
	dates := repository.CandidateDates(from, to)

	filter := append(bson.D{
		{Key: "cancelled", Value: false},
		{Key: "points", Value: bson.M{
			"$elemMatch": bson.M{
				"location.crscode": crs,
				timeField(timeType): bson.M{"$ne": nil},
			},
		}},
	}, periodCovers(dates[0], dates[len(dates)-1])...)

	values, err := s.services.Distinct(ctx, "uid", filter)
	if err != nil {
		return nil, fmt.Errorf("could not find services at %s: %w", crs, err)
	}

	uids := make([]string, 0, len(values))
	for _, value := range values {
		if uid, ok := value.(string); ok {
			uids = append(uids, uid)
		}
	}
	slices.Sort(uids)

	return uids, nil
}

func (s *Store) ServicesByRSID(ctx context.Context, rsid string, date timetable.Date, permanentOnly bool) ([]*timetable.DatedService, error) {
	if len(rsid) < 6 {
		return nil, nil
	}

	filter := append(bson.D{{Key: "rsids", Value: rsid[0:6]}}, periodCovers(date, date)...)
	values, err := s.services.Distinct(ctx, "uid", filter)
	if err != nil {
		return nil, fmt.Errorf("could not find services with retail id %s: %w", rsid, err)
	}

	uids := make([]string, 0, len(values))
	for _, value := range values {
		if uid, ok := value.(string); ok {
			uids = append(uids, uid)
		}
	}
	slices.Sort(uids)

	var result []*timetable.DatedService
	for _, uid := range uids {
		dated, err := s.Service(ctx, uid, date, permanentOnly)
		if err != nil {
			return nil, err
		}
		if dated == nil {
			continue
		}
		if service := dated.Service(); service != nil && service.HasRSID(rsid) {
			result = append(result, dated)
		}
	}

	return result, nil
}

func (s *Store) InsertServices(ctx context.Context, services []timetable.ServiceEntry) error {
	operations := make([]mongo.WriteModel, 0, batchSize)

	for _, entry := range services {
		insertModel := mongo.NewInsertOneModel()
		insertModel.SetDocument(newServiceDocument(s.ImportID, entry))
		operations = append(operations, insertModel)

		if len(operations) == batchSize {
			if err := s.write(ctx, s.services, operations); err != nil {
				return err
			}
			operations = operations[:0]
		}
	}

	return s.write(ctx, s.services, operations)
}

func (s *Store) InsertAssociations(ctx context.Context, associations []timetable.AssociationEntry) error {
	operations := make([]mongo.WriteModel, 0, batchSize)

	for _, entry := range associations {
		insertModel := mongo.NewInsertOneModel()
		insertModel.SetDocument(newAssociationDocument(s.ImportID, entry))
		operations = append(operations, insertModel)

		if len(operations) == batchSize {
			if err := s.write(ctx, s.associations, operations); err != nil {
				return err
			}
			operations = operations[:0]
		}
	}

	return s.write(ctx, s.associations, operations)
}

// write keeps the operations in order so that documents read back sorted by
// id come out in the order they were given
func (s *Store) write(ctx context.Context, collection *mongo.Collection, operations []mongo.WriteModel) error {
	if len(operations) == 0 {
		return nil
	}

	_, err := collection.BulkWrite(ctx, operations, options.BulkWrite().SetOrdered(true))
	if err != nil {
		log.Error().Err(err).Str("collection", collection.Name()).Msg("Failed to bulk write")
		return err
	}
	return nil
}

// DeleteOtherImports removes everything except the given import, so a fresh
// import can be swapped in once it has been written
func (s *Store) DeleteOtherImports(ctx context.Context, importID string) error {
	filter := bson.M{"importid": bson.M{"$ne": importID}}

	if _, err := s.services.DeleteMany(ctx, filter); err != nil {
		return err
	}
	if _, err := s.associations.DeleteMany(ctx, filter); err != nil {
		return err
	}
	return nil
}

type metadataDocument struct {
	Key   string         `bson:"_id"`
	Date  timetable.Date `bson:"date"`
	Value string         `bson:"value,omitempty"`
}

func (s *Store) GeneratedDate(ctx context.Context) (timetable.Date, error) {
	var document metadataDocument
	err := s.metadata.FindOne(ctx, bson.M{"_id": generatedDateKey}).Decode(&document)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return timetable.Date{}, nil
	}
	if err != nil {
		return timetable.Date{}, err
	}
	return document.Date, nil
}

func (s *Store) SetGeneratedDate(ctx context.Context, date timetable.Date) error {
	_, err := s.metadata.ReplaceOne(
		ctx,
		bson.M{"_id": generatedDateKey},
		metadataDocument{Key: generatedDateKey, Date: date, Value: s.ImportID},
		options.Replace().SetUpsert(true),
	)
	return err
}
