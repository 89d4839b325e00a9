package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gunalchandran/grocery-backend/models"
)

// Collection names used by the storefront's existing database.
const (
	ProductsCollection = "Products"
	UsersCollection    = "Users"
	CartCollection     = "Cart"
	OrdersCollection   = "Orders"
)

// MongoStore implements Store on top of a MongoDB database.
type MongoStore struct {
	client   *mongo.Client
	products *mongo.Collection
	users    *mongo.Collection
	cart     *mongo.Collection
	orders   *mongo.Collection
}

// Connect dials MongoDB, verifies the connection and makes sure the indexes
// the workflow relies on exist.
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client:   client,
		products: db.Collection(ProductsCollection),
		users:    db.Collection(UsersCollection),
		cart:     db.Collection(CartCollection),
		orders:   db.Collection(OrdersCollection),
	}
	if err := s.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}
	if _, err := s.cart.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "product_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create cart user/product index: %w", err)
	}
	if _, err := s.orders.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
	}); err != nil {
		return fmt.Errorf("create orders email index: %w", err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Products

func (s *MongoStore) InsertProduct(ctx context.Context, p *models.Product) (string, error) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, err := s.products.InsertOne(ctx, p); err != nil {
		return "", err
	}
	return p.ID.Hex(), nil
}

func (s *MongoStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	cursor, err := s.products.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *MongoStore) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var p models.Product
	if err := s.products.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *MongoStore) UpdateProduct(ctx context.Context, id string, upd models.ProductUpdate) (int64, error) {
	oid, err := ParseID(id)
	if err != nil {
		return 0, err
	}
	set := productSet(upd)
	if len(set) == 0 {
		return 0, nil
	}
	res, err := s.products.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func productSet(upd models.ProductUpdate) bson.M {
	set := bson.M{}
	if upd.Name != nil {
		set["product_name"] = *upd.Name
	}
	if upd.Brand != nil {
		set["brands"] = *upd.Brand
	}
	if upd.Code != nil {
		set["code"] = *upd.Code
	}
	if upd.ImageURL != nil {
		set["image_url"] = *upd.ImageURL
	}
	if upd.IngredientsText != nil {
		set["ingredients_text"] = *upd.IngredientsText
	}
	if upd.Price != nil {
		set["price"] = *upd.Price
	}
	if upd.Stock != nil {
		set["stock"] = *upd.Stock
	}
	if upd.SchemaVersion != nil {
		set["schema_version"] = *upd.SchemaVersion
	}
	return set
}

func (s *MongoStore) DeleteProduct(ctx context.Context, id string) (int64, error) {
	oid, err := ParseID(id)
	if err != nil {
		return 0, err
	}
	res, err := s.products.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) ReserveStock(ctx context.Context, id string, qty int) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	res, err := s.products.UpdateOne(ctx,
		bson.M{"_id": oid, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := s.products.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrInsufficientStock
}

func (s *MongoStore) ReleaseStock(ctx context.Context, id string, qty int) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	res, err := s.products.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"stock": qty}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Cart

func (s *MongoStore) AddToCart(ctx context.Context, item *models.CartItem) error {
	filter := bson.M{"user": item.UserEmail, "product_id": item.ProductID}
	update := bson.M{
		"$inc": bson.M{"quantity": item.Quantity},
		"$setOnInsert": bson.M{
			"product_name": item.ProductName,
			"price":        item.Price,
			"image_url":    item.ImageURL,
		},
	}
	_, err := s.cart.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// Two first-time adds raced on the upsert; the loser retries as a
		// plain increment against the row the winner created.
		_, err = s.cart.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"quantity": item.Quantity}})
	}
	return err
}

func (s *MongoStore) ListCart(ctx context.Context, email string) ([]models.CartItem, error) {
	cursor, err := s.cart.Find(ctx, bson.M{"user": email})
	if err != nil {
		return nil, err
	}
	items := []models.CartItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *MongoStore) SetCartQuantity(ctx context.Context, email, itemID string, qty int) (int64, error) {
	oid, err := ParseID(itemID)
	if err != nil {
		return 0, err
	}
	res, err := s.cart.UpdateOne(ctx,
		bson.M{"_id": oid, "user": email},
		bson.M{"$set": bson.M{"quantity": qty}},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (s *MongoStore) DeleteCartItem(ctx context.Context, email, itemID string) (int64, error) {
	oid, err := ParseID(itemID)
	if err != nil {
		return 0, err
	}
	res, err := s.cart.DeleteOne(ctx, bson.M{"_id": oid, "user": email})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) ClearCart(ctx context.Context, email string) (int64, error) {
	res, err := s.cart.DeleteMany(ctx, bson.M{"user": email})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Orders

func (s *MongoStore) InsertOrder(ctx context.Context, o *models.Order) (string, error) {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	if _, err := s.orders.InsertOne(ctx, o); err != nil {
		return "", err
	}
	return o.ID.Hex(), nil
}

func (s *MongoStore) InsertOrders(ctx context.Context, orders []*models.Order) ([]string, error) {
	docs := make([]interface{}, 0, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		if o.ID.IsZero() {
			o.ID = primitive.NewObjectID()
		}
		docs = append(docs, o)
		ids = append(ids, o.ID.Hex())
	}
	if _, err := s.orders.InsertMany(ctx, docs); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *MongoStore) DeleteOrders(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.orders.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

func (s *MongoStore) FindOrder(ctx context.Context, id string) (*models.Order, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.findOrder(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) FindCustomerOrder(ctx context.Context, id, email string) (*models.Order, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.findOrder(ctx, bson.M{"_id": oid, "email": email})
}

func (s *MongoStore) findOrder(ctx context.Context, filter bson.M) (*models.Order, error) {
	var o models.Order
	if err := s.orders.FindOne(ctx, filter).Decode(&o); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (s *MongoStore) ListOrders(ctx context.Context, email string) ([]models.Order, error) {
	filter := bson.M{}
	if email != "" {
		filter["email"] = email
	}
	cursor, err := s.orders.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *MongoStore) TransitionDelivery(ctx context.Context, id, from, to string) (bool, error) {
	oid, err := ParseID(id)
	if err != nil {
		return false, err
	}
	res, err := s.orders.UpdateOne(ctx,
		bson.M{"_id": oid, "delivery_status": from},
		bson.M{"$set": bson.M{"delivery_status": to}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (s *MongoStore) UpdateOrderStatus(ctx context.Context, id, paymentStatus, deliveryStatus string) (int64, error) {
	oid, err := ParseID(id)
	if err != nil {
		return 0, err
	}
	res, err := s.orders.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"payment_status": paymentStatus, "delivery_status": deliveryStatus}},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// Users

func (s *MongoStore) InsertUser(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := s.users.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *MongoStore) UpdateProfile(ctx context.Context, email string, upd models.ProfileUpdate) (int64, error) {
	set := bson.M{"phone": upd.Phone}
	if upd.ProfilePic != "" {
		set["profile_pic"] = upd.ProfilePic
	}
	res, err := s.users.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

var _ Store = (*MongoStore)(nil)
