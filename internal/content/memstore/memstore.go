// Package memstore is an in-process content backend for tests and local runs.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/brueckenwerk/cms/internal/content"
	"github.com/brueckenwerk/cms/internal/models"
)

// Collection is a map-backed Repository. List returns records in insertion order.
type Collection[T models.Document] struct {
	mu    sync.RWMutex
	docs  map[string]T
	order []string
	// Err, when set, is returned by every call. Tests use it to simulate outages.
	Err error
}

func NewCollection[T models.Document]() *Collection[T] {
	return &Collection[T]{docs: map[string]T{}}
}

func (c *Collection[T]) List(_ context.Context) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Err != nil {
		return nil, c.Err
	}
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.docs[id])
	}
	return out, nil
}

func (c *Collection[T]) Get(_ context.Context, id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var zero T
	if c.Err != nil {
		return zero, c.Err
	}
	doc, ok := c.docs[id]
	if !ok {
		return zero, content.ErrNotFound
	}
	return doc, nil
}

func (c *Collection[T]) Insert(_ context.Context, doc T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	id := doc.DocID()
	if _, ok := c.docs[id]; ok {
		return content.ErrConflict
	}
	c.docs[id] = doc
	c.order = append(c.order, id)
	return nil
}

func (c *Collection[T]) Replace(_ context.Context, doc T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	id := doc.DocID()
	if _, ok := c.docs[id]; !ok {
		return content.ErrNotFound
	}
	c.docs[id] = doc
	return nil
}

func (c *Collection[T]) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	if _, ok := c.docs[id]; !ok {
		return content.ErrNotFound
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Users adds the email lookup to a user collection.
type Users struct {
	*Collection[models.User]
}

func (u Users) Insert(ctx context.Context, user models.User) error {
	if _, err := u.ByEmail(ctx, user.Email); err == nil {
		return content.ErrConflict
	}
	return u.Collection.Insert(ctx, user)
}

func (u Users) ByEmail(ctx context.Context, email string) (models.User, error) {
	all, err := u.List(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, user := range all {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return models.User{}, content.ErrNotFound
}

// Media is the map-backed MetadataRepository.
type Media struct {
	mu   sync.RWMutex
	meta map[string]models.MediaMeta
	now  func() time.Time
}

func NewMedia() *Media {
	return &Media{meta: map[string]models.MediaMeta{}, now: time.Now}
}

func (m *Media) List(_ context.Context) ([]models.MediaMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.MediaMeta, 0, len(m.meta))
	for _, v := range m.meta {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *Media) Get(_ context.Context, key string) (models.MediaMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.meta[key]
	if !ok {
		return models.MediaMeta{}, content.ErrNotFound
	}
	return v, nil
}

func (m *Media) Upsert(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	v, ok := m.meta[key]
	if !ok {
		v = models.MediaMeta{Key: key, CreatedAt: now}
	}
	v.UpdatedAt = now
	m.meta[key] = v
	return nil
}

func (m *Media) SetNoIndex(_ context.Context, key string, noindex bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	v, ok := m.meta[key]
	if !ok {
		v = models.MediaMeta{Key: key, CreatedAt: now}
	}
	v.NoIndex = noindex
	v.UpdatedAt = now
	m.meta[key] = v
	return nil
}

func (m *Media) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.meta[key]; !ok {
		return content.ErrNotFound
	}
	delete(m.meta, key)
	return nil
}

// Backend exposes the concrete collections so tests can seed or break them.
type Backend struct {
	Projects    *Collection[models.Project]
	TeamMembers *Collection[models.TeamMember]
	Courses     *Collection[models.Course]
	BlogPosts   *Collection[models.BlogPost]
	Media       *Media
	Users       Users
}

// New returns an empty backend and the Store view over it.
func New() (*Backend, *content.Store) {
	b := &Backend{
		Projects:    NewCollection[models.Project](),
		TeamMembers: NewCollection[models.TeamMember](),
		Courses:     NewCollection[models.Course](),
		BlogPosts:   NewCollection[models.BlogPost](),
		Media:       NewMedia(),
		Users:       Users{NewCollection[models.User]()},
	}
	return b, &content.Store{
		Projects:    b.Projects,
		TeamMembers: b.TeamMembers,
		Courses:     b.Courses,
		BlogPosts:   b.BlogPosts,
		Media:       b.Media,
		Users:       b.Users,
		Ping:        func(context.Context) error { return nil },
		Close:       func(context.Context) error { return nil },
	}
}
