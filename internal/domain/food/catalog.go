package food

import (
	"fmt"
	"sort"
)

// Catalog is a read-only collection of records, ordered by ID. It is built
// once and shared between concurrent requests without locking.
type Catalog struct {
	version string
	records []Record
	index   map[string]int
}

// NewCatalog validates the records and builds the lookup index.
func NewCatalog(version string, records []Record) (*Catalog, error) {
	if len(records) == 0 {
		return nil, ErrEmptyCatalog
	}

	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	index := make(map[string]int, len(sorted))
	for i, r := range sorted {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := index[r.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateFood, r.ID)
		}
		index[r.ID] = i
	}

	return &Catalog{version: version, records: sorted, index: index}, nil
}

// Version identifies the catalog data set.
func (c *Catalog) Version() string { return c.version }

// Len returns the number of records.
func (c *Catalog) Len() int { return len(c.records) }

// Lookup finds a record by ID.
func (c *Catalog) Lookup(id string) (Record, bool) {
	i, ok := c.index[id]
	if !ok {
		return Record{}, false
	}
	return c.records[i], true
}

// Get is Lookup with an error for missing IDs.
func (c *Catalog) Get(id string) (Record, error) {
	r, ok := c.Lookup(id)
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrFoodNotFound, id)
	}
	return r, nil
}

// All returns every record in ID order.
func (c *Catalog) All() []Record {
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Filter returns the records matching keep, in ID order.
func (c *Catalog) Filter(keep func(Record) bool) []Record {
	var out []Record
	for _, r := range c.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// ByCategory returns the records of one category.
func (c *Catalog) ByCategory(cat Category) []Record {
	return c.Filter(func(r Record) bool { return r.Category == cat })
}
