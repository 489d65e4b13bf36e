package registration

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultMongoCollection = "checklistPhotos"

// MongoConnection hands out collections of the registration database.
type MongoConnection interface {
	Collection(collectionName string) *mongo.Collection
}

type MongoConfig struct {
	ConnectionString string
	Database         string
	Collection       string
}

type mongoProductionConnection struct {
	client   *mongo.Client
	database string
}

var _ MongoConnection = (*mongoProductionConnection)(nil)

func NewMongoConnection(ctx context.Context, config MongoConfig) (MongoConnection, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.ConnectionString))
	if err != nil {
		return nil, err
	}

	database := config.Database
	if database == "" {
		database = "inspectphoto"
	}

	return &mongoProductionConnection{client, database}, nil
}

func (c *mongoProductionConnection) Collection(collectionName string) *mongo.Collection {
	return c.client.Database(c.database).Collection(collectionName)
}

// PhotoRecord is the stored form of a registered item.
type PhotoRecord struct {
	RecordID     int64     `json:"recordId" bson:"recordId"`
	ContextID    int64     `json:"contextId" bson:"contextId"`
	URL          string    `json:"url" bson:"url"`
	RegisteredAt time.Time `json:"registeredAt" bson:"registeredAt"`
}

type MongoRegistrar struct {
	conn       MongoConnection
	collection string
	now        func() time.Time
}

var _ Registrar = (*MongoRegistrar)(nil)

func NewMongoRegistrar(conn MongoConnection, collection string) *MongoRegistrar {
	if collection == "" {
		collection = DefaultMongoCollection
	}

	return &MongoRegistrar{conn, collection, time.Now}
}

func (r *MongoRegistrar) Register(ctx context.Context, recordID int64, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	registeredAt := r.now().UTC()
	documents := make([]interface{}, len(items))
	for i, item := range items {
		documents[i] = PhotoRecord{recordID, item.ContextID, item.URL, registeredAt}
	}

	_, err := r.conn.Collection(r.collection).InsertMany(ctx, documents)
	return err
}
