package listing

import "strconv"

// Filter is a named predicate a resource registers for its table. Fields is
// the shape of its form input (empty for a plain toggle). Build returns false
// when the input carries nothing to filter on, in which case the filter is a
// no-op rather than an empty result.
type Filter struct {
	Name   string
	Label  string
	Fields []string
	Build  func(in Input) (Condition, bool)
}

// Toggle builds a filter without form input that always applies cond.
func Toggle(name, label string, cond func() Condition) Filter {
	return Filter{
		Name:  name,
		Label: label,
		Build: func(Input) (Condition, bool) {
			return cond(), true
		},
	}
}

// Equals builds a filter with a single form input that matches field by
// equality, and does nothing when the input is empty.
func Equals(name, label, input, field string) Filter {
	return Filter{
		Name:   name,
		Label:  label,
		Fields: []string{input},
		Build: func(in Input) (Condition, bool) {
			v := in[input]
			if v == "" {
				return Condition{}, false
			}
			return Condition{Field: field, Op: OpEq, Value: v}, true
		},
	}
}

// EqualsID is Equals for a foreign key input; anything that is not a record
// id is treated as unselected.
func EqualsID(name, label, input, field string) Filter {
	return Filter{
		Name:   name,
		Label:  label,
		Fields: []string{input},
		Build: func(in Input) (Condition, bool) {
			id, err := strconv.ParseUint(in[input], 10, 64)
			if err != nil || id == 0 {
				return Condition{}, false
			}
			return Condition{Field: field, Op: OpEq, Value: uint(id)}, true
		},
	}
}

// Schema is what the engine needs to know about a resource table.
type Schema interface {
	Name() string
	SearchColumns() []string
	// SortField maps a sortable column name to the field path to order by.
	SortField(column string) (string, bool)
	Filter(name string) (Filter, bool)
}
