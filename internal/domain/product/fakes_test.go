package product

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testConfig() *config.Config {
	return &config.Config{Cache: config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "test"}}
}

type fakeProducts struct {
	byID        map[uint]*Product
	nextID      uint
	listFilter  ListFilter
	loads       int
	updated     []*Product
	images      map[uint][]ProductImage
	deactivated []uint
}

func newFakeProducts(products ...Product) *fakeProducts {
	f := &fakeProducts{byID: map[uint]*Product{}, images: map[uint][]ProductImage{}}
	for i := range products {
		p := products[i]
		f.byID[p.ID] = &p
		if p.ID >= f.nextID {
			f.nextID = p.ID
		}
	}
	return f
}

func (f *fakeProducts) sorted(keep func(p *Product) bool) []Product {
	var out []Product
	for _, p := range f.byID {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeProducts) List(_ context.Context, filter ListFilter) ([]Product, int64, error) {
	f.listFilter = filter
	out := f.sorted(func(p *Product) bool { return p.IsActive })
	return out, int64(len(out)), nil
}

func (f *fakeProducts) Featured(_ context.Context, limit int) ([]Product, error) {
	f.loads++
	out := f.sorted(func(p *Product) bool { return p.IsActive && p.IsFeatured })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeProducts) Bestsellers(_ context.Context, limit int) ([]Product, error) {
	f.loads++
	out := f.sorted(func(p *Product) bool { return p.IsActive })
	sort.SliceStable(out, func(i, j int) bool { return out[i].SoldCount > out[j].SoldCount })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeProducts) FindBySlug(_ context.Context, slug string) (*Product, error) {
	for _, p := range f.byID {
		if p.Slug == slug && p.IsActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrProductNotFound
}

func (f *fakeProducts) FindByID(_ context.Context, id uint) (*Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) Related(_ context.Context, p *Product, limit int) ([]Product, error) {
	out := f.sorted(func(o *Product) bool {
		return o.IsActive && o.ID != p.ID && o.CategoryID != nil && p.CategoryID != nil && *o.CategoryID == *p.CategoryID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeProducts) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, p := range f.byID {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProducts) Create(_ context.Context, p *Product) error {
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProducts) Update(_ context.Context, p *Product) error {
	cp := *p
	f.byID[p.ID] = &cp
	f.updated = append(f.updated, &cp)
	return nil
}

func (f *fakeProducts) ReplaceImages(_ context.Context, productID uint, images []ProductImage) error {
	f.images[productID] = images
	return nil
}

func (f *fakeProducts) SetActive(_ context.Context, id uint, active bool) error {
	p, ok := f.byID[id]
	if !ok {
		return ErrProductNotFound
	}
	p.IsActive = active
	if !active {
		f.deactivated = append(f.deactivated, id)
	}
	return nil
}

type fakeCategories struct {
	byID   map[uint]*Category
	nextID uint
	lists  int
}

func newFakeCategories(categories ...Category) *fakeCategories {
	f := &fakeCategories{byID: map[uint]*Category{}}
	for i := range categories {
		c := categories[i]
		f.byID[c.ID] = &c
		if c.ID >= f.nextID {
			f.nextID = c.ID
		}
	}
	return f
}

func (f *fakeCategories) ListActive(context.Context) ([]Category, error) {
	f.lists++
	var out []Category
	for _, c := range f.byID {
		if c.IsActive {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeCategories) FindBySlug(_ context.Context, slug string) (*Category, error) {
	for _, c := range f.byID {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrCategoryNotFound
}

func (f *fakeCategories) FindByID(_ context.Context, id uint) (*Category, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategories) SlugExists(_ context.Context, slug string) (bool, error) {
	_, err := f.FindBySlug(context.Background(), slug)
	return err == nil, nil
}

func (f *fakeCategories) Create(_ context.Context, c *Category) error {
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCategories) Update(_ context.Context, c *Category) error {
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

type fakeReviews struct {
	byID    map[uint]*Review
	nextID  uint
	created []Review
	deleted []uint
}

func newFakeReviews(reviews ...Review) *fakeReviews {
	f := &fakeReviews{byID: map[uint]*Review{}}
	for i := range reviews {
		r := reviews[i]
		f.byID[r.ID] = &r
		if r.ID >= f.nextID {
			f.nextID = r.ID
		}
	}
	return f
}

func (f *fakeReviews) Create(_ context.Context, r *Review) error {
	for _, existing := range f.byID {
		if existing.UserID == r.UserID && existing.ProductID == r.ProductID {
			return apperror.Conflict("duplicate review")
		}
	}
	f.nextID++
	r.ID = f.nextID
	cp := *r
	f.byID[r.ID] = &cp
	f.created = append(f.created, cp)
	return nil
}

func (f *fakeReviews) FindByID(_ context.Context, id uint) (*Review, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, ErrReviewNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReviews) Exists(_ context.Context, userID, productID uint) (bool, error) {
	for _, r := range f.byID {
		if r.UserID == userID && r.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviews) ListForProduct(_ context.Context, productID uint, offset, limit int) ([]Review, int64, error) {
	var all []Review
	for _, r := range f.byID {
		if r.ProductID == productID {
			all = append(all, *r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (f *fakeReviews) RatingBreakdown(_ context.Context, productID uint) (map[int]int64, error) {
	out := map[int]int64{}
	for _, r := range f.byID {
		if r.ProductID == productID {
			out[r.Rating]++
		}
	}
	return out, nil
}

func (f *fakeReviews) Delete(_ context.Context, r *Review) error {
	delete(f.byID, r.ID)
	f.deleted = append(f.deleted, r.ID)
	return nil
}

type memoryCache struct {
	values  map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.values, key)
		c.deleted = append(c.deleted, key)
	}
	return nil
}

type fakeOrders map[uint]struct {
	userID uint
	status string
}

func (f fakeOrders) OwnedOrderStatus(_ context.Context, orderID, userID uint) (string, bool, error) {
	o, ok := f[orderID]
	if !ok || o.userID != userID {
		return "", false, nil
	}
	return o.status, true, nil
}

type fakeWishlist map[[2]uint]bool

func (f fakeWishlist) IsWishlisted(_ context.Context, userID, productID uint) (bool, error) {
	return f[[2]uint{userID, productID}], nil
}
