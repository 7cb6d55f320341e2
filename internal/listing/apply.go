package listing

import (
	"cmp"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Resolver exposes a record's values by column path.
type Resolver interface {
	Field(path string) (any, bool)
}

// Apply evaluates c against rows in memory. Rows must already carry the
// relations and derived counts the criteria refers to.
func Apply[T Resolver](rows []T, c Criteria) ([]T, int64, error) {
	matched := make([]T, 0, len(rows))
	for _, row := range rows {
		ok, err := matches(row, c)
		if err != nil {
			return nil, 0, err
		}
		if ok {
			matched = append(matched, row)
		}
	}

	for _, o := range c.Order {
		if _, ok := firstField(rows, o.Field); !ok {
			return nil, 0, fmt.Errorf("unknown sort field %q", o.Field)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		for _, o := range c.Order {
			a, _ := matched[i].Field(o.Field)
			b, _ := matched[j].Field(o.Field)
			r := compare(a, b)
			if r == 0 {
				continue
			}
			if o.Desc {
				return r > 0
			}
			return r < 0
		}
		return false
	})

	total := int64(len(matched))
	if c.Offset < 0 {
		c.Offset = 0
	}
	if c.Offset >= len(matched) {
		return []T{}, total, nil
	}
	matched = matched[c.Offset:]
	if c.Limit > 0 && c.Limit < len(matched) {
		matched = matched[:c.Limit]
	}
	return matched, total, nil
}

func firstField[T Resolver](rows []T, field string) (any, bool) {
	if len(rows) == 0 {
		return nil, true
	}
	return rows[0].Field(field)
}

func matches(row Resolver, c Criteria) (bool, error) {
	for _, cond := range c.Where {
		ok, err := Match(row, cond)
		if err != nil || !ok {
			return false, err
		}
	}

	if len(c.Search) == 0 {
		return true, nil
	}
	for _, cond := range c.Search {
		ok, err := Match(row, cond)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Match evaluates a single condition against a row.
func Match(row Resolver, cond Condition) (bool, error) {
	v, ok := row.Field(cond.Field)
	if !ok {
		return false, fmt.Errorf("unknown field %q", cond.Field)
	}

	switch cond.Op {
	case OpEq:
		return v != nil && fmt.Sprint(v) == fmt.Sprint(cond.Value), nil
	case OpNotNull:
		return v != nil, nil
	case OpGte:
		return v != nil && compare(v, cond.Value) >= 0, nil
	case OpHas:
		n, isInt := v.(int)
		return isInt && n > 0, nil
	case OpContains:
		if v == nil {
			return false, nil
		}
		needle := strings.ToLower(fmt.Sprint(cond.Value))
		return strings.Contains(strings.ToLower(display(v)), needle), nil
	}
	return false, fmt.Errorf("unsupported operator %q", cond.Op)
}

func display(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprint(v)
}

// compare orders nil before everything else.
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case uint:
		if y, ok := b.(uint); ok {
			return cmp.Compare(x, y)
		}
	case int:
		if y, ok := b.(int); ok {
			return cmp.Compare(x, y)
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
