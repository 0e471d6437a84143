package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"finanzy/internal/core"
)

const transactionsCollection = "transactions"

// mongoCollection is the slice of *mongo.Collection the repository uses.
type mongoCollection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

type transactionDocument struct {
	ID          string `bson:"_id"`
	Seq         int64  `bson:"seq"`
	Title       string `bson:"title"`
	AmountCents int64  `bson:"amount_cents"`
	Type        string `bson:"type"`
	Category    string `bson:"category"`
	Date        string `bson:"date"`
	Period      string `bson:"period"`
}

func toDocument(tx core.Transaction, seq int64) transactionDocument {
	return transactionDocument{
		ID:          tx.ID,
		Seq:         seq,
		Title:       tx.Title,
		AmountCents: tx.Amount.Cents,
		Type:        string(tx.Type),
		Category:    tx.Category,
		Date:        tx.Date.String(),
		Period:      string(tx.Period),
	}
}

func (d transactionDocument) transaction() (core.Transaction, error) {
	date, err := core.ParseDate(d.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode transaction %s: %w", d.ID, err)
	}
	return core.Transaction{
		ID:       d.ID,
		Title:    d.Title,
		Amount:   core.Money{Cents: d.AmountCents},
		Type:     core.TransactionType(d.Type),
		Category: d.Category,
		Date:     date,
		Period:   core.Period(d.Period),
	}, nil
}

type MongoRepository struct {
	client *mongo.Client
	coll   mongoCollection
	now    func() time.Time
}

// NewMongoRepository connects to uri and uses the transactions collection
// of database.
func NewMongoRepository(ctx context.Context, uri, database string) (*MongoRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	repo := newMongoRepository(client.Database(database).Collection(transactionsCollection))
	repo.client = client
	return repo, nil
}

func newMongoRepository(coll mongoCollection) *MongoRepository {
	return &MongoRepository{coll: coll, now: time.Now}
}

func (r *MongoRepository) Close() error {
	if r.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Ping(ctx, nil)
}

func (r *MongoRepository) List(ctx context.Context) ([]core.Transaction, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer cur.Close(ctx)

	var docs []transactionDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(docs))
	for _, d := range docs {
		tx, err := d.transaction()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (core.Transaction, error) {
	var doc transactionDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.Transaction{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return doc.transaction()
}

func (r *MongoRepository) Insert(ctx context.Context, tx core.Transaction) error {
	_, err := r.coll.InsertOne(ctx, toDocument(tx, r.now().UnixNano()))
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert %s: %w", tx.ID, ErrDuplicateID)
	}
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// Replace overwrites every field but the insertion sequence.
func (r *MongoRepository) Replace(ctx context.Context, tx core.Transaction) error {
	doc := toDocument(tx, 0)
	update := bson.M{"$set": bson.M{
		"title":        doc.Title,
		"amount_cents": doc.AmountCents,
		"type":         doc.Type,
		"category":     doc.Category,
		"date":         doc.Date,
		"period":       doc.Period,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": tx.ID}, update)
	if err != nil {
		return fmt.Errorf("replace transaction: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("replace %s: %w", tx.ID, ErrNotFound)
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	return nil
}

var _ Repository = (*MongoRepository)(nil)
