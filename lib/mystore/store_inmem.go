package mystore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"
)

type InMemoryStore[T any] struct {
	sync.Mutex
	Items map[string]T
}

func NewInMemoryStore[T any](c context.Context) (*InMemoryStore[T], func(), error) {
	return &InMemoryStore[T]{
		Items: make(map[string]T),
	}, func() {}, nil
}

func (s *InMemoryStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	// Start transaction
	s.Lock()

	ctx := context.WithValue(c, ctxTransactionKey{}, true)

	// Within this block everything is transactional
	err := f(ctx)
	if err != nil {
		// Rollback
		s.Unlock()

		return err
	}

	// Commit
	s.Unlock()

	return nil
}

func (s *InMemoryStore[T]) Put(c context.Context, uid string, value T) error {
	nonTransactional := c.Value(ctxTransactionKey{}) == nil

	if nonTransactional {
		s.Lock()
		defer s.Unlock()
	}

	s.Items[uid] = value

	return nil
}

func (s *InMemoryStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	nonTransactional := c.Value(ctxTransactionKey{}) == nil

	if nonTransactional {
		s.Lock()
		defer s.Unlock()
	}

	result, exists := s.Items[uid]

	return result, exists, nil
}

func (s *InMemoryStore[T]) Remove(c context.Context, uid string) error {
	nonTransactional := c.Value(ctxTransactionKey{}) == nil

	if nonTransactional {
		s.Lock()
		defer s.Unlock()
	}

	delete(s.Items, uid)

	return nil
}

func (s *InMemoryStore[T]) List(c context.Context) ([]T, error) {
	nonTransactional := c.Value(ctxTransactionKey{}) == nil

	if nonTransactional {
		s.Lock()
		defer s.Unlock()
	}

	result := make([]T, 0, len(s.Items))
	for _, v := range s.Items {
		result = append(result, v)
	}

	return result, nil
}

func (s *InMemoryStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	all, err := s.List(c)
	if err != nil {
		return nil, err
	}

	result := make([]T, 0, len(all))
outer:
	for _, item := range all {
		for _, f := range filters {
			matches, err := matchesFilter(item, f)
			if err != nil {
				return nil, err
			}
			if !matches {
				continue outer
			}
		}
		result = append(result, item)
	}

	if orderByField != "" {
		sort.SliceStable(result, func(i, j int) bool {
			less, _ := compareField(result[i], result[j], orderByField)
			return less
		})
	}

	return result, nil
}

func matchesFilter[T any](item T, f Filter) (bool, error) {
	fieldValue, err := fieldByName(item, f.Field)
	if err != nil {
		return false, err
	}

	cmp, err := compareValues(fieldValue, f.Value)
	if err != nil {
		return false, err
	}

	switch f.Compare {
	case "=":
		return cmp == 0, nil
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("unsupported compare operator '%s'", f.Compare)
	}
}

func fieldByName[T any](item T, name string) (any, error) {
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	field := v.FieldByName(name)
	if !field.IsValid() {
		return nil, fmt.Errorf("unknown field '%s' on %T", name, item)
	}
	return field.Interface(), nil
}

func compareField[T any](a T, b T, fieldName string) (bool, error) {
	left, err := fieldByName(a, fieldName)
	if err != nil {
		return false, err
	}
	right, err := fieldByName(b, fieldName)
	if err != nil {
		return false, err
	}
	cmp, err := compareValues(left, right)
	if err != nil {
		return false, err
	}
	return cmp < 0, nil
}

func compareValues(left any, right any) (int, error) {
	switch l := left.(type) {
	case time.Time:
		r, ok := right.(time.Time)
		if !ok {
			return 0, fmt.Errorf("cannot compare time.Time with %T", right)
		}
		return l.Compare(r), nil
	case *time.Time:
		r, ok := right.(time.Time)
		if !ok || l == nil {
			return 0, fmt.Errorf("cannot compare *time.Time with %T", right)
		}
		return l.Compare(r), nil
	case string:
		r, ok := right.(string)
		if !ok {
			return 0, fmt.Errorf("cannot compare string with %T", right)
		}
		switch {
		case l < r:
			return -1, nil
		case l > r:
			return 1, nil
		}
		return 0, nil
	case bool:
		r, ok := right.(bool)
		if !ok {
			return 0, fmt.Errorf("cannot compare bool with %T", right)
		}
		if l == r {
			return 0, nil
		}
		if !l {
			return -1, nil
		}
		return 1, nil
	case int, int32, int64:
		lv := reflect.ValueOf(left).Int()
		rv := reflect.ValueOf(right)
		if !rv.CanInt() {
			return 0, fmt.Errorf("cannot compare integer with %T", right)
		}
		switch {
		case lv < rv.Int():
			return -1, nil
		case lv > rv.Int():
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported filter type %T", left)
	}
}
