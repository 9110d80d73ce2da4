package store

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kinds = []string{"inmem", "level"}

func TestExistence(t *testing.T) {
	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			db := NewTestKV(t, kind)

			_, err := db.Get([]byte("not_exist"))
			assert.Equal(t, ErrNotFound, err)

			require.NoError(t, db.Put([]byte("exist"), []byte("value")))

			val, err := db.Get([]byte("exist"))
			require.NoError(t, err)
			assert.Equal(t, []byte("value"), val)

			require.NoError(t, db.Delete([]byte("exist")))

			_, err = db.Get([]byte("exist"))
			assert.Equal(t, ErrNotFound, err)
		})
	}
}

func TestIterate(t *testing.T) {
	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			db := NewTestKV(t, kind)

			for _, key := range []string{"b/2", "a/1", "b/1", "c/1", "b/3", "ba"} {
				require.NoError(t, db.Put([]byte(key), []byte("v"+key)))
			}

			var keys []string
			require.NoError(t, db.Iterate([]byte("b/"), func(key, value []byte) error {
				keys = append(keys, string(key))
				assert.Equal(t, "v"+string(key), string(value))
				return nil
			}))
			assert.Equal(t, []string{"b/1", "b/2", "b/3"}, keys)

			var all int
			require.NoError(t, db.Iterate(nil, func(key, value []byte) error {
				all++
				return nil
			}))
			assert.Equal(t, 6, all)

			stop := errors.New("stop")
			var seen int
			err := db.Iterate([]byte("b/"), func(key, value []byte) error {
				seen++
				return stop
			})
			assert.Equal(t, stop, err)
			assert.Equal(t, 1, seen)
		})
	}
}

func TestValuesAreCopied(t *testing.T) {
	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			db := NewTestKV(t, kind)

			value := []byte("original")
			require.NoError(t, db.Put([]byte("k"), value))
			value[0] = 'X'

			got, err := db.Get([]byte("k"))
			require.NoError(t, err)
			assert.Equal(t, "original", string(got))
		})
	}
}

func TestClosed(t *testing.T) {
	for _, kind := range kinds {
		t.Run(kind, func(t *testing.T) {
			db := NewTestKV(t, kind)
			require.NoError(t, db.Close())

			_, err := db.Get([]byte("k"))
			assert.Equal(t, ErrClosed, err)
			assert.Equal(t, ErrClosed, db.Put([]byte("k"), nil))
		})
	}
}

func BenchmarkInmem(b *testing.B) {
	db := NewTestKV(b, "inmem")

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		var randomKey [128]byte
		var randomValue [600]byte

		_, _ = rand.Read(randomKey[:])
		_, _ = rand.Read(randomValue[:])

		assert.NoError(b, db.Put(randomKey[:], randomValue[:]))

		value, err := db.Get(randomKey[:])
		assert.NoError(b, err)
		assert.EqualValues(b, randomValue[:], value)
	}
}
