package mockapi

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fjod/matule/internal/domain"
	"github.com/fjod/matule/internal/network"
	"github.com/google/uuid"
)

const (
	usersCollection       = "_pb_users_auth_"
	authOriginsCollection = "pbc_auth_origins"
	productsCollection    = "pbc_products_01"
	newsCollection        = "pbc_news_000001"
	cartCollection        = "pbc_cart_000001"
	ordersCollection      = "pbc_orders_0001"
	projectCollection     = "pbc_project_001"

	timeLayout = "2006-01-02 15:04:05.000Z"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrBadCredential = errors.New("invalid credentials")
	ErrForbidden     = errors.New("record belongs to another user")
)

type userRecord struct {
	network.User
	email    string
	password string
}

type storedFile struct {
	contentType string
	data        []byte
}

// store holds every collection in memory.
type store struct {
	mu  sync.RWMutex
	now func() time.Time

	users    map[string]*userRecord
	emails   map[string]string
	origins  map[string]network.UserAuth
	products []network.ProductAPI
	news     []network.News
	carts    map[string]network.ResponseCart
	orders   []network.ResponseOrder
	projects []network.ProjectAPI
	files    map[string]storedFile
}

func newStore(products []domain.Product, now func() time.Time) *store {
	s := &store{
		now:     now,
		users:   make(map[string]*userRecord),
		emails:  make(map[string]string),
		origins: make(map[string]network.UserAuth),
		carts:   make(map[string]network.ResponseCart),
		files:   make(map[string]storedFile),
	}
	created := s.timestamp()
	for _, p := range products {
		s.products = append(s.products, network.ProductAPI{
			ID:              fmt.Sprintf("product%08d", p.ID),
			CollectionID:    productsCollection,
			CollectionName:  "products",
			Created:         created,
			Updated:         created,
			Title:           p.Title,
			Description:     p.Description,
			Price:           p.Price,
			TypeCloses:      p.Category,
			Type:            "clothes",
			ApproximateCost: fmt.Sprintf("%d ₽", p.Price),
		})
	}
	for i, image := range []string{"banner_sale.png", "banner_new.png"} {
		s.news = append(s.news, network.News{
			ID:             fmt.Sprintf("news%011d", i+1),
			CollectionID:   newsCollection,
			CollectionName: "news",
			NewsImage:      image,
			Created:        created,
			Updated:        created,
		})
	}
	return s
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:15]
}

func (s *store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func (s *store) createUser(email, password string) (network.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emails[email]; ok {
		return network.User{}, ErrEmailTaken
	}
	ts := s.timestamp()
	rec := &userRecord{
		User: network.User{
			ID:             newID(),
			CollectionID:   usersCollection,
			CollectionName: "users",
			Created:        ts,
			Updated:        ts,
		},
		email:    email,
		password: password,
	}
	s.users[rec.ID] = rec
	s.emails[email] = rec.ID
	return rec.User, nil
}

// authenticate checks the password and records a new auth origin.
func (s *store) authenticate(email, password string) (network.User, network.UserAuth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.emails[email]
	if !ok || s.users[id].password != password {
		return network.User{}, network.UserAuth{}, ErrBadCredential
	}
	ts := s.timestamp()
	origin := network.UserAuth{
		ID:             newID(),
		CollectionID:   authOriginsCollection,
		CollectionName: "_authOrigins",
		Created:        ts,
		Updated:        ts,
		CollectionRef:  usersCollection,
		Fingerprint:    uuid.NewString(),
		RecordRef:      id,
	}
	s.origins[origin.ID] = origin
	return s.users[id].User, origin, nil
}

func (s *store) user(id string) (network.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[id]
	if !ok {
		return network.User{}, ErrNotFound
	}
	return rec.User, nil
}

// updateUser applies the non-empty fields of values. Keys follow the
// backend field names.
func (s *store) updateUser(id string, values map[string]string) (network.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[id]
	if !ok {
		return network.User{}, ErrNotFound
	}
	if email, ok := values["email"]; ok && email != rec.email {
		if _, taken := s.emails[email]; taken {
			return network.User{}, ErrEmailTaken
		}
		delete(s.emails, rec.email)
		s.emails[email] = id
		rec.email = email
	}
	fields := map[string]*string{
		"firstname":    &rec.Firstname,
		"lastname":     &rec.Lastname,
		"secondname":   &rec.Secondname,
		"datebirthday": &rec.DateBirthday,
		"gender":       &rec.Gender,
	}
	for key, dst := range fields {
		if v, ok := values[key]; ok {
			*dst = v
		}
	}
	rec.Updated = s.timestamp()
	return rec.User, nil
}

func (s *store) hasOrigin(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.origins[id]
	return ok
}

func (s *store) originsOf(userID string) []network.UserAuth {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []network.UserAuth
	for _, o := range s.origins {
		if o.RecordRef == userID {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b network.UserAuth) int { return strings.Compare(a.Created+a.ID, b.Created+b.ID) })
	return out
}

func (s *store) deleteOrigin(id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.origins[id]
	if !ok {
		return ErrNotFound
	}
	if o.RecordRef != userID {
		return ErrForbidden
	}
	delete(s.origins, id)
	return nil
}

func (s *store) listProducts(match func(network.ProductAPI) bool) []network.ProductItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []network.ProductItem
	for _, p := range s.products {
		if match != nil && !match(p) {
			continue
		}
		out = append(out, network.ProductItem{
			ID:         p.ID,
			Title:      p.Title,
			Price:      p.Price,
			TypeCloses: p.TypeCloses,
			Type:       p.Type,
		})
	}
	return out
}

func (s *store) product(id string) (network.ProductAPI, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return network.ProductAPI{}, ErrNotFound
}

func (s *store) listNews() []network.News {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.news)
}

func (s *store) createCart(req network.RequestCart) network.ResponseCart {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.timestamp()
	c := network.ResponseCart{
		ID:             newID(),
		CollectionID:   cartCollection,
		CollectionName: "cart",
		Created:        ts,
		Updated:        ts,
		UserID:         req.UserID,
		ProductID:      req.ProductID,
		Count:          req.Count,
	}
	s.carts[c.ID] = c
	return c
}

func (s *store) updateCart(id string, req network.RequestCart) (network.ResponseCart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[id]
	if !ok {
		return network.ResponseCart{}, ErrNotFound
	}
	if c.UserID != req.UserID {
		return network.ResponseCart{}, ErrForbidden
	}
	if req.ProductID != "" {
		c.ProductID = req.ProductID
	}
	c.Count = req.Count
	c.Updated = s.timestamp()
	s.carts[id] = c
	return c, nil
}

func (s *store) createOrder(req network.RequestOrder) network.ResponseOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.timestamp()
	o := network.ResponseOrder{
		ID:             newID(),
		CollectionID:   ordersCollection,
		CollectionName: "orders",
		Created:        ts,
		Updated:        ts,
		UserID:         req.UserID,
		ProductID:      req.ProductID,
		Count:          req.Count,
	}
	s.orders = append(s.orders, o)
	return o
}

func (s *store) createProject(req network.RequestProject, image *network.Image) network.ProjectAPI {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.timestamp()
	p := network.ProjectAPI{
		ID:                newID(),
		CollectionID:      projectCollection,
		CollectionName:    "project",
		Created:           ts,
		Updated:           ts,
		Title:             req.Title,
		DateStart:         req.DateStart,
		DateEnd:           req.DateEnd,
		Gender:            req.Gender,
		DescriptionSource: req.DescriptionSource,
		Category:          req.Category,
		UserID:            req.UserID,
	}
	if image != nil {
		p.Image = image.Name
		s.files[fileKey(p.CollectionID, p.ID, image.Name)] = storedFile{
			contentType: image.ContentType,
			data:        image.Data,
		}
	}
	s.projects = append(s.projects, p)
	return p
}

func (s *store) projectsOf(userID string) []network.ProjectAPI {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []network.ProjectAPI
	for _, p := range s.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out
}

func (s *store) file(collectionID, recordID, name string) (storedFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[fileKey(collectionID, recordID, name)]
	if !ok {
		return storedFile{}, ErrNotFound
	}
	return f, nil
}

func fileKey(collectionID, recordID, name string) string {
	return collectionID + "/" + recordID + "/" + name
}
