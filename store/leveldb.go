package store

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var _ KV = (*leveldbKV)(nil)

type leveldbKV struct {
	dir string
	db  *leveldb.DB
}

func NewLevelDB(dir string) (*leveldbKV, error) {
	opts := &opt.Options{
		Filter:       filter.NewBloomFilter(10),
		NoWriteMerge: true,
	}

	db, err := leveldb.OpenFile(dir, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Level DB")
	}

	return &leveldbKV{
		dir: dir,
		db:  db,
	}, nil
}

func (l *leveldbKV) Close() error {
	return convert(l.db.Close())
}

func (l *leveldbKV) Get(key []byte) ([]byte, error) {
	buf, err := l.db.Get(key, nil)
	return buf, convert(err)
}

func (l *leveldbKV) Put(key, value []byte) error {
	return convert(l.db.Put(key, value, nil))
}

func (l *leveldbKV) Delete(key []byte) error {
	return convert(l.db.Delete(key, nil))
}

func (l *leveldbKV) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	it := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer it.Release()

	for it.Next() {
		if err := fn(clone(it.Key()), clone(it.Value())); err != nil {
			return err
		}
	}

	return convert(it.Error())
}

func convert(err error) error {
	switch err {
	case leveldb.ErrNotFound:
		return ErrNotFound
	case leveldb.ErrClosed:
		return ErrClosed
	}

	return err
}
