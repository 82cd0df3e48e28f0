package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/order"
)

const auditService = "storefront"

// MongoRepository records an audit trail of order lifecycle events. It is
// registered with the order manager as a listener.
type MongoRepository struct {
	client   *mongo.Client
	database *mongo.Database
	config   *config.MongoDBConfig
}

func NewMongoRepository(cfg *config.MongoDBConfig) (*MongoRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	return &MongoRepository{
		client:   client,
		database: client.Database(cfg.Database),
		config:   cfg,
	}, nil
}

func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoRepository) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// AuditLog is one recorded lifecycle event for an order.
type AuditLog struct {
	ID        string    `bson:"_id,omitempty" json:"-"`
	Service   string    `bson:"service" json:"service"`
	Action    string    `bson:"action" json:"action"`
	EntityID  string    `bson:"entity_id" json:"order_id"`
	Data      bson.M    `bson:"data" json:"data"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func (m *MongoRepository) CreateAuditLog(ctx context.Context, log *AuditLog) error {
	collection := m.database.Collection(m.config.Collection)
	log.CreatedAt = time.Now()
	_, err := collection.InsertOne(ctx, log)
	return err
}

// AuditTrail returns up to limit entries for an order, newest first.
func (m *MongoRepository) AuditTrail(ctx context.Context, orderID string, limit int64) ([]*AuditLog, error) {
	collection := m.database.Collection(m.config.Collection)

	filter := bson.M{"entity_id": orderID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := []*AuditLog{}
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}

func (m *MongoRepository) OrderCreated(ctx context.Context, o order.Order) error {
	items := make(bson.A, len(o.Items))
	for i, it := range o.Items {
		items[i] = bson.M{"name": it.Name, "price": it.Price, "quantity": it.Quantity}
	}
	return m.CreateAuditLog(ctx, &AuditLog{
		Service:  auditService,
		Action:   "order_created",
		EntityID: o.ID,
		Data: bson.M{
			"customer_name": o.Customer.Name,
			"customer_city": o.Customer.City,
			"total_amount":  o.Total,
			"status":        o.Status.String(),
			"items":         items,
		},
	})
}

func (m *MongoRepository) StatusChanged(ctx context.Context, o order.Order, from order.Status) error {
	return m.CreateAuditLog(ctx, &AuditLog{
		Service:  auditService,
		Action:   "status_changed",
		EntityID: o.ID,
		Data: bson.M{
			"from": from.String(),
			"to":   o.Status.String(),
		},
	})
}
