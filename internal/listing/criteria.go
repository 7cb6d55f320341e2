// Package listing turns a resource's declared search columns, filters and
// sortable columns plus a caller's selections into a storage-neutral Criteria,
// and pages through the rows a Source returns for it.
//
// Field names in a Criteria are column paths: a plain attribute ("location"),
// a dotted relation path ("post.location", "user.name") or a derived value
// ("comments_count", "posts"). Stores translate paths themselves: the gorm
// store maps them to SQL expressions, the memory store resolves them through
// the models' Field method (see Apply).
package listing

import "fmt"

type Op string

const (
	// OpEq keeps rows whose field equals Value.
	OpEq Op = "eq"
	// OpNotNull keeps rows whose field is set.
	OpNotNull Op = "not_null"
	// OpGte keeps rows whose field is >= Value.
	OpGte Op = "gte"
	// OpHas keeps rows with at least one related row; Field names the relation.
	OpHas Op = "has"
	// OpContains is a case-insensitive substring match. Used by search only.
	OpContains Op = "contains"
)

type Condition struct {
	Field string
	Op    Op
	Value any
}

func (c Condition) String() string {
	switch c.Op {
	case OpNotNull, OpHas:
		return fmt.Sprintf("%s %s", c.Op, c.Field)
	}
	return fmt.Sprintf("%s %s %v", c.Field, c.Op, c.Value)
}

type Order struct {
	Field string
	Desc  bool
}

// Criteria is what a Source must evaluate: all Where conditions AND-ed, the
// Search conditions OR-ed together (ignored when empty), then ordered and
// sliced. Limit 0 means no limit.
type Criteria struct {
	Where  []Condition
	Search []Condition
	Order  []Order
	Offset int
	Limit  int
}

// Fields lists every path the criteria touches, for stores that validate
// paths up front.
func (c Criteria) Fields() []string {
	var fields []string
	for _, w := range c.Where {
		fields = append(fields, w.Field)
	}
	for _, s := range c.Search {
		fields = append(fields, s.Field)
	}
	for _, o := range c.Order {
		fields = append(fields, o.Field)
	}
	return fields
}
