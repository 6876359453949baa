package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSource fetches catalog records from the WFCatalog MongoDB.
type MongoSource struct {
	uri        string
	database   string
	collection string
}

// NewMongoSource creates a source for the given connection details.
func NewMongoSource(uri, database, collection string) *MongoSource {
	return &MongoSource{uri: uri, database: database, collection: collection}
}

func (m *MongoSource) connect(ctx context.Context) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to WFCatalog database: %w", err)
	}
	return client, nil
}

// FetchRecords queries daily stream entries whose timestamp falls inside
// the inclusive year window, excluding the given networks. For each entry
// the last element of the files array carries the current name and
// checksum; the entry creation date is merged in alongside it.
func (m *MongoSource) FetchRecords(ctx context.Context, startYear, endYear int, excluded []string) ([]Record, error) {
	client, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Disconnect(ctx)

	if excluded == nil {
		excluded = []string{}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "ts", Value: bson.D{
				{Key: "$gte", Value: time.Date(startYear, 1, 1, 0, 0, 0, 0, time.UTC)},
				{Key: "$lte", Value: time.Date(endYear, 12, 31, 23, 59, 59, 999999000, time.UTC)},
			}},
			{Key: "net", Value: bson.D{{Key: "$nin", Value: excluded}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "lastFile", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$files", -1}}}},
			{Key: "created", Value: 1},
			{Key: "ts", Value: 1},
		}}},
		{{Key: "$replaceRoot", Value: bson.D{
			{Key: "newRoot", Value: bson.D{
				{Key: "$mergeObjects", Value: bson.A{
					"$lastFile",
					bson.D{{Key: "created", Value: "$created"}, {Key: "ts", Value: "$ts"}},
				}},
			}},
		}}},
	}

	cursor, err := client.Database(m.database).Collection(m.collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("WFCatalog query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Name    string    `bson:"name"`
		Chksm   string    `bson:"chksm"`
		Created time.Time `bson:"created"`
		TS      time.Time `bson:"ts"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode WFCatalog records: %w", err)
	}

	records := make([]Record, 0, len(docs))
	for _, d := range docs {
		records = append(records, Record{
			FileName: d.Name,
			Checksum: d.Chksm,
			Created:  d.Created,
			Stream:   d.TS,
		})
	}

	slog.Info("Read files from WFCatalog database", "records", len(records))
	return records, nil
}

// DeleteByFileID removes catalog entries by their fileId key. Used by the
// delete-superfluous maintenance command; the reconciliation engine itself
// never mutates the catalog.
func (m *MongoSource) DeleteByFileID(ctx context.Context, fileIDs []string) (int64, error) {
	client, err := m.connect(ctx)
	if err != nil {
		return 0, err
	}
	defer client.Disconnect(ctx)

	coll := client.Database(m.database).Collection(m.collection)
	var deleted int64
	for _, id := range fileIDs {
		res, err := coll.DeleteOne(ctx, bson.D{{Key: "fileId", Value: id}})
		if err != nil {
			return deleted, fmt.Errorf("failed to delete %s from WFCatalog: %w", id, err)
		}
		deleted += res.DeletedCount
	}
	return deleted, nil
}
