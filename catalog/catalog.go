// Package catalog holds the fixed reference data that drives document routing:
// document types and their slip short codes, statuses and their display colors,
// and routing locations with the department responsible for each.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// DocumentType maps a document type name to the short code used in routing slip numbers.
type DocumentType struct {
	Name      string `json:"name"`
	ShortCode string `json:"short_code"`
}

// Status is a document status and the color it is rendered with.
type Status struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Location is a custodial location a document can be routed to.
type Location struct {
	Name       string `json:"name"`
	Department string `json:"department"`
}

// Catalog is read-only after construction.
type Catalog struct {
	types     []DocumentType
	statuses  []Status
	locations []Location

	typeByName     map[string]DocumentType
	statusByName   map[string]Status
	locationByName map[string]Location
	byDepartment   map[string][]string
}

// New builds a catalog from the given entries. Names are matched after trimming
// surrounding whitespace; duplicates and blank names are rejected.
func New(types []DocumentType, statuses []Status, locations []Location) (*Catalog, error) {
	c := &Catalog{
		typeByName:     make(map[string]DocumentType, len(types)),
		statusByName:   make(map[string]Status, len(statuses)),
		locationByName: make(map[string]Location, len(locations)),
		byDepartment:   make(map[string][]string),
	}

	for _, t := range types {
		name := normalize(t.Name)
		if name == "" || strings.TrimSpace(t.ShortCode) == "" {
			return nil, fmt.Errorf("document type %q requires a name and short code", t.Name)
		}
		if _, exists := c.typeByName[name]; exists {
			return nil, fmt.Errorf("duplicate document type %q", name)
		}
		t.Name = name
		t.ShortCode = strings.TrimSpace(t.ShortCode)
		c.typeByName[name] = t
		c.types = append(c.types, t)
	}

	for _, s := range statuses {
		name := normalize(s.Name)
		if name == "" {
			return nil, fmt.Errorf("status name is required")
		}
		if _, exists := c.statusByName[name]; exists {
			return nil, fmt.Errorf("duplicate status %q", name)
		}
		s.Name = name
		c.statusByName[name] = s
		c.statuses = append(c.statuses, s)
	}

	for _, l := range locations {
		name := normalize(l.Name)
		dept := normalize(l.Department)
		if name == "" || dept == "" {
			return nil, fmt.Errorf("location %q requires a name and department", l.Name)
		}
		if _, exists := c.locationByName[name]; exists {
			return nil, fmt.Errorf("duplicate location %q", name)
		}
		l.Name = name
		l.Department = dept
		c.locationByName[name] = l
		c.locations = append(c.locations, l)
		c.byDepartment[dept] = append(c.byDepartment[dept], name)
	}

	return c, nil
}

// MustNew is New for package-level catalogs; it panics on invalid input.
func MustNew(types []DocumentType, statuses []Status, locations []Location) *Catalog {
	c, err := New(types, statuses, locations)
	if err != nil {
		panic(err)
	}
	return c
}

func normalize(value string) string {
	return strings.TrimSpace(value)
}

// DocumentType looks up a document type by name.
func (c *Catalog) DocumentType(name string) (DocumentType, bool) {
	t, ok := c.typeByName[normalize(name)]
	return t, ok
}

// Status looks up a status by name.
func (c *Catalog) Status(name string) (Status, bool) {
	s, ok := c.statusByName[normalize(name)]
	return s, ok
}

// Location looks up a routing location by name.
func (c *Catalog) Location(name string) (Location, bool) {
	l, ok := c.locationByName[normalize(name)]
	return l, ok
}

// LocationsOf returns the names of the locations owned by department, in catalog order.
func (c *Catalog) LocationsOf(department string) []string {
	names := c.byDepartment[normalize(department)]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Departments returns every department that owns at least one location, sorted.
func (c *Catalog) Departments() []string {
	out := make([]string, 0, len(c.byDepartment))
	for dept := range c.byDepartment {
		out = append(out, dept)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) Types() []DocumentType {
	return append([]DocumentType(nil), c.types...)
}

func (c *Catalog) Statuses() []Status {
	return append([]Status(nil), c.statuses...)
}

func (c *Catalog) Locations() []Location {
	return append([]Location(nil), c.locations...)
}

// SlipNumber builds the human readable routing slip number {shortcode}-{routingNo}.
func (c *Catalog) SlipNumber(docType string, routingNo int) (string, error) {
	t, ok := c.DocumentType(docType)
	if !ok {
		return "", fmt.Errorf("unknown document type %q", docType)
	}
	return fmt.Sprintf("%s-%d", t.ShortCode, routingNo), nil
}
