package store

import (
	"bytes"
	"sync"

	"github.com/huandu/skiplist"
)

var _ KV = (*inmemKV)(nil)

type inmemKV struct {
	sync.RWMutex
	db *skiplist.SkipList
}

func NewInmem() *inmemKV {
	var comparator skiplist.GreaterThanFunc = func(lhs, rhs interface{}) bool {
		return bytes.Compare(lhs.([]byte), rhs.([]byte)) == 1
	}

	return &inmemKV{db: skiplist.New(comparator)}
}

func (s *inmemKV) Close() error {
	s.Lock()
	defer s.Unlock()

	if s.db != nil {
		s.db.Init()
		s.db = nil
	}

	return nil
}

func (s *inmemKV) Get(key []byte) ([]byte, error) {
	s.RLock()
	defer s.RUnlock()

	if s.db == nil {
		return nil, ErrClosed
	}

	buf, found := s.db.GetValue(key)
	if !found {
		return nil, ErrNotFound
	}

	return clone(buf.([]byte)), nil
}

func (s *inmemKV) Put(key, value []byte) error {
	s.Lock()
	defer s.Unlock()

	if s.db == nil {
		return ErrClosed
	}

	_ = s.db.Set(clone(key), clone(value))

	return nil
}

func (s *inmemKV) Delete(key []byte) error {
	s.Lock()
	defer s.Unlock()

	if s.db == nil {
		return ErrClosed
	}

	_ = s.db.Remove(key)

	return nil
}

func (s *inmemKV) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	var pairs [][2][]byte

	s.RLock()
	if s.db == nil {
		s.RUnlock()
		return ErrClosed
	}

	for elem := s.db.Front(); elem != nil; elem = elem.Next() {
		key := elem.Key().([]byte)

		if bytes.HasPrefix(key, prefix) {
			pairs = append(pairs, [2][]byte{clone(key), clone(elem.Value.([]byte))})
			continue
		}

		if bytes.Compare(key, prefix) > 0 {
			break
		}
	}
	s.RUnlock()

	for _, pair := range pairs {
		if err := fn(pair[0], pair[1]); err != nil {
			return err
		}
	}

	return nil
}
