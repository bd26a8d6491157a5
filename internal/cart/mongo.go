package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/deundomarinel09/easyshop-engine/internal/domain"
)

// MongoStore persists one cart document per buyer. Decimal fields are
// stored as strings to keep full precision through the roundtrip.
type MongoStore struct {
	collection *mongo.Collection
}

type cartDoc struct {
	BuyerID   string        `bson:"buyer_id"`
	Items     []cartItemDoc `bson:"items"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

type cartItemDoc struct {
	ProductID     int64  `bson:"product_id"`
	Name          string `bson:"name"`
	Price         string `bson:"price"`
	Quantity      int    `bson:"quantity"`
	Stock         int    `bson:"stock"`
	Weight        string `bson:"weight"`
	UnitOfMeasure string `bson:"unit_of_measure"`
	Image         string `bson:"image"`
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection("carts")}
}

// ConnectMongo dials the server and verifies the connection before use.
func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

func (m *MongoStore) Load(ctx context.Context, buyerID string) ([]domain.CartItem, error) {
	var doc cartDoc

	filter := bson.M{"buyer_id": buyerID}
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	items := make([]domain.CartItem, 0, len(doc.Items))
	for _, it := range doc.Items {
		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return nil, fmt.Errorf("stored price %q is not decimal: %w", it.Price, err)
		}
		weight, err := decimal.NewFromString(it.Weight)
		if err != nil {
			return nil, fmt.Errorf("stored weight %q is not decimal: %w", it.Weight, err)
		}
		items = append(items, domain.CartItem{
			ProductID:     it.ProductID,
			Name:          it.Name,
			Price:         price,
			Quantity:      it.Quantity,
			Stock:         it.Stock,
			Weight:        weight,
			UnitOfMeasure: it.UnitOfMeasure,
			Image:         it.Image,
		})
	}
	return items, nil
}

func (m *MongoStore) Save(ctx context.Context, buyerID string, items []domain.CartItem) error {
	docs := make([]cartItemDoc, 0, len(items))
	for _, it := range items {
		docs = append(docs, cartItemDoc{
			ProductID:     it.ProductID,
			Name:          it.Name,
			Price:         it.Price.String(),
			Quantity:      it.Quantity,
			Stock:         it.Stock,
			Weight:        it.Weight.String(),
			UnitOfMeasure: it.UnitOfMeasure,
			Image:         it.Image,
		})
	}

	filter := bson.M{"buyer_id": buyerID}
	update := bson.M{"$set": cartDoc{
		BuyerID:   buyerID,
		Items:     docs,
		UpdatedAt: time.Now(),
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (m *MongoStore) Delete(ctx context.Context, buyerID string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"buyer_id": buyerID})
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

// EnsureIndexes creates the unique buyer index. Call once at startup.
func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "buyer_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := m.collection.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
