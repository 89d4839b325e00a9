package store

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gunalchandran/grocery-backend/models"
)

// MemoryStore holds every collection in process memory. It mirrors the
// guarded updates of MongoStore so workflow behaviour is identical.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[primitive.ObjectID]models.Product
	cart     []models.CartItem
	orders   []models.Order
	users    map[string]models.User
}

// NewMemoryStore initializes an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[primitive.ObjectID]models.Product),
		users:    make(map[string]models.User),
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error  { return nil }
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Products

func (s *MemoryStore) InsertProduct(ctx context.Context, p *models.Product) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.products[p.ID] = *p
	return p.ID.Hex(), nil
}

func (s *MemoryStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		result = append(result, p)
	}
	// ObjectIDs grow with creation time, so this matches the natural order
	// MongoDB returns.
	sortProducts(result)
	return result, nil
}

func (s *MemoryStore) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[oid]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) UpdateProduct(ctx context.Context, id string, upd models.ProductUpdate) (int64, error) {
	oid, err := ParseID(id)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[oid]
	if !ok {
		return 0, nil
	}
	if !upd.Apply(&p) {
		return 0, nil
	}
	s.products[oid] = p
	return 1, nil
}

func (s *MemoryStore) DeleteProduct(ctx context.Context, id string) (int64, error) {
	oid, err := ParseID(id)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[oid]; !ok {
		return 0, nil
	}
	delete(s.products, oid)
	return 1, nil
}

func (s *MemoryStore) ReserveStock(ctx context.Context, id string, qty int) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[oid]
	if !ok {
		return ErrNotFound
	}
	if p.Stock < qty {
		return ErrInsufficientStock
	}
	p.Stock -= qty
	s.products[oid] = p
	return nil
}

func (s *MemoryStore) ReleaseStock(ctx context.Context, id string, qty int) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[oid]
	if !ok {
		return ErrNotFound
	}
	p.Stock += qty
	s.products[oid] = p
	return nil
}

// Cart

func (s *MemoryStore) AddToCart(ctx context.Context, item *models.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		if s.cart[i].UserEmail == item.UserEmail && s.cart[i].ProductID == item.ProductID {
			s.cart[i].Quantity += item.Quantity
			return nil
		}
	}
	row := *item
	if row.ID.IsZero() {
		row.ID = primitive.NewObjectID()
	}
	s.cart = append(s.cart, row)
	return nil
}

func (s *MemoryStore) ListCart(ctx context.Context, email string) ([]models.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.CartItem{}
	for _, row := range s.cart {
		if row.UserEmail == email {
			result = append(result, row)
		}
	}
	return result, nil
}

func (s *MemoryStore) SetCartQuantity(ctx context.Context, email, itemID string, qty int) (int64, error) {
	oid, err := ParseID(itemID)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		if s.cart[i].ID == oid && s.cart[i].UserEmail == email {
			s.cart[i].Quantity = qty
			return 1, nil
		}
	}
	return 0, nil
}

func (s *MemoryStore) DeleteCartItem(ctx context.Context, email, itemID string) (int64, error) {
	oid, err := ParseID(itemID)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		if s.cart[i].ID == oid && s.cart[i].UserEmail == email {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (s *MemoryStore) ClearCart(ctx context.Context, email string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.cart[:0]
	var removed int64
	for _, row := range s.cart {
		if row.UserEmail == email {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	s.cart = kept
	return removed, nil
}

// Orders

func (s *MemoryStore) InsertOrder(ctx context.Context, o *models.Order) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	s.orders = append(s.orders, *o)
	return o.ID.Hex(), nil
}

func (s *MemoryStore) InsertOrders(ctx context.Context, orders []*models.Order) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		if o.ID.IsZero() {
			o.ID = primitive.NewObjectID()
		}
		s.orders = append(s.orders, *o)
		ids = append(ids, o.ID.Hex())
	}
	return ids, nil
}

func (s *MemoryStore) DeleteOrders(ctx context.Context, ids []primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := s.orders[:0]
	for _, o := range s.orders {
		if !drop[o.ID] {
			kept = append(kept, o)
		}
	}
	s.orders = kept
	return nil
}

func (s *MemoryStore) FindOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.findOrder(id, func(models.Order) bool { return true })
}

func (s *MemoryStore) FindCustomerOrder(ctx context.Context, id, email string) (*models.Order, error) {
	return s.findOrder(id, func(o models.Order) bool { return o.Email == email })
}

func (s *MemoryStore) findOrder(id string, match func(models.Order) bool) (*models.Order, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.ID == oid && match(o) {
			found := o
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListOrders(ctx context.Context, email string) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.Order{}
	for _, o := range s.orders {
		if email == "" || o.Email == email {
			result = append(result, o)
		}
	}
	return result, nil
}

func (s *MemoryStore) TransitionDelivery(ctx context.Context, id, from, to string) (bool, error) {
	oid, err := ParseID(id)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID == oid && s.orders[i].DeliveryStatus == from {
			s.orders[i].DeliveryStatus = to
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) UpdateOrderStatus(ctx context.Context, id, paymentStatus, deliveryStatus string) (int64, error) {
	oid, err := ParseID(id)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID == oid {
			s.orders[i].PaymentStatus = paymentStatus
			s.orders[i].DeliveryStatus = deliveryStatus
			return 1, nil
		}
	}
	return 0, nil
}

// Users

func (s *MemoryStore) InsertUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.Email]; exists {
		return ErrDuplicate
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users[u.Email] = *u
	return nil
}

func (s *MemoryStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) UpdateProfile(ctx context.Context, email string, upd models.ProfileUpdate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[email]
	if !ok {
		return 0, nil
	}
	u.Phone = upd.Phone
	if upd.ProfilePic != "" {
		u.ProfilePic = upd.ProfilePic
	}
	s.users[email] = u
	return 1, nil
}

func sortProducts(products []models.Product) {
	sort.Slice(products, func(i, j int) bool {
		return products[i].ID.Hex() < products[j].ID.Hex()
	})
}

var _ Store = (*MemoryStore)(nil)
