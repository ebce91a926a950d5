package mystore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type Person struct {
	UID      string
	Name     string
	Age      int
	JoinedAt time.Time
}

var (
	exampleTime = time.Date(2023, 2, 27, 23, 58, 59, 0, time.UTC)
	person      = Person{UID: "123", Name: "Marc", Age: 42, JoinedAt: exampleTime}
)

func TestStore(t *testing.T) {
	c := context.TODO()
	ps, cleanup, err := NewInMemoryStore[Person](c)
	assert.NoError(t, err)
	defer cleanup()

	t.Run("Get not found", func(t *testing.T) {
		_, found, err := ps.Get(c, person.UID)
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Put", func(t *testing.T) {
		err = ps.Put(c, person.UID, person)
		assert.NoError(t, err)
	})

	t.Run("Get found", func(t *testing.T) {
		p, found, err := ps.Get(c, person.UID)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, person, p)
	})

	t.Run("List", func(t *testing.T) {
		all, err := ps.List(c)
		assert.NoError(t, err)
		assert.Equal(t, []Person{person}, all)
	})

	t.Run("Remove", func(t *testing.T) {
		err := ps.Remove(c, person.UID)
		assert.NoError(t, err)

		_, found, err := ps.Get(c, person.UID)
		assert.NoError(t, err)
		assert.False(t, found)

		// removing again is not an error
		assert.NoError(t, ps.Remove(c, person.UID))
	})
}

func TestQuery(t *testing.T) {
	c := context.TODO()
	ps, cleanup, err := NewInMemoryStore[Person](c)
	assert.NoError(t, err)
	defer cleanup()

	people := []Person{
		{UID: "1", Name: "Marc", Age: 42, JoinedAt: exampleTime},
		{UID: "2", Name: "Eva", Age: 35, JoinedAt: exampleTime.Add(time.Hour)},
		{UID: "3", Name: "Pim", Age: 12, JoinedAt: exampleTime.Add(2 * time.Hour)},
	}
	for _, p := range people {
		assert.NoError(t, ps.Put(c, p.UID, p))
	}

	t.Run("Filter on equality", func(t *testing.T) {
		got, err := ps.Query(c, []Filter{{Field: "Name", Compare: "=", Value: "Eva"}}, "UID")
		assert.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, "2", got[0].UID)
	})

	t.Run("Filter on timestamp before", func(t *testing.T) {
		got, err := ps.Query(c, []Filter{{Field: "JoinedAt", Compare: "<", Value: exampleTime.Add(90 * time.Minute)}}, "JoinedAt")
		assert.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, "1", got[0].UID)
		assert.Equal(t, "2", got[1].UID)
	})

	t.Run("Combined filters", func(t *testing.T) {
		got, err := ps.Query(c, []Filter{
			{Field: "Age", Compare: ">=", Value: 35},
			{Field: "JoinedAt", Compare: ">", Value: exampleTime},
		}, "UID")
		assert.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, "Eva", got[0].Name)
	})

	t.Run("Unknown field", func(t *testing.T) {
		_, err := ps.Query(c, []Filter{{Field: "Unknown", Compare: "=", Value: "x"}}, "")
		assert.Error(t, err)
	})
}
