// Package keystore persists named DSTU 4145 private keys in a LevelDB
// database. Keys are stored in their structured form so that keys on
// ad-hoc curves survive a round trip.
package keystore

import (
	"encoding/hex"
	"math/big"
	"sync"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v2"

	dstu4145 "github.com/rafaelescrich/go-dstu4145"
)

var keyPrefix = []byte("key/")

// ErrNotFound is returned when no key is stored under a name.
var ErrNotFound = errors.New("keystore: key not found")

// record is the stored form of a key. Byte strings are hexadecimal and
// little-endian, like the fields of dstu4145.KeyStruct.
type record struct {
	Curve string `yaml:"curve,omitempty"`
	M     int    `yaml:"m"`
	KS    []int  `yaml:"ks,flow"`
	A     uint   `yaml:"a"`
	B     string `yaml:"b"`
	Order string `yaml:"order"`
	Base  string `yaml:"base"`
	D     string `yaml:"d"`
	SBox  string `yaml:"sbox,omitempty"`
}

// Store is a key store. It is safe for concurrent use.
type Store struct {
	mutex  sync.RWMutex
	db     *leveldb.DB
	path   string
	logger *zap.Logger
}

// Open opens or creates the store at path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "keystore: opening %s", path)
	}
	return newStore(db, path, logger), nil
}

// OpenMemory returns a store that lives in memory only.
func OpenMemory(logger *zap.Logger) (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "keystore: opening memory store")
	}
	return newStore(db, ":memory:", logger), nil
}

func newStore(db *leveldb.DB, path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, path: path, logger: logger.With(zap.String("keystore", path))}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return errors.Wrap(s.db.Close(), "keystore: closing")
}

func dbKey(name string) []byte {
	return append(append([]byte(nil), keyPrefix...), name...)
}

// Put stores priv under name, replacing any previous key.
func (s *Store) Put(name string, priv *dstu4145.PrivateKey) error {
	if name == "" {
		return errors.New("keystore: empty key name")
	}
	ks := priv.Struct()
	rec := record{
		Curve: priv.Curve().Name(),
		M:     ks.Curve.M,
		KS:    ks.Curve.KS,
		A:     ks.Curve.A,
		B:     hex.EncodeToString(ks.Curve.B),
		Order: ks.Curve.Order.Text(16),
		Base:  hex.EncodeToString(ks.Curve.Base),
		D:     hex.EncodeToString(ks.D),
		SBox:  hex.EncodeToString(ks.SBox),
	}
	value, err := yaml.Marshal(&rec)
	if err != nil {
		return errors.Wrap(err, "keystore: encoding key")
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if err := s.db.Put(dbKey(name), value, &opt.WriteOptions{Sync: true}); err != nil {
		s.logger.Error("failed to store key", zap.String("name", name), zap.Error(err))
		return errors.Wrapf(err, "keystore: writing key %s", name)
	}
	s.logger.Debug("stored key", zap.String("name", name), zap.String("curve", rec.Curve))
	return nil
}

// Get loads the key stored under name. Curves are resolved through ctx.
func (s *Store) Get(ctx *dstu4145.Context, name string) (*dstu4145.PrivateKey, error) {
	s.mutex.RLock()
	value, err := s.db.Get(dbKey(name), nil)
	s.mutex.RUnlock()
	if err == leveldb.ErrNotFound {
		return nil, errors.WithMessage(ErrNotFound, name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "keystore: reading key %s", name)
	}

	var rec record
	if err := yaml.Unmarshal(value, &rec); err != nil {
		return nil, errors.Wrapf(err, "keystore: decoding key %s", name)
	}
	ks, err := rec.keyStruct()
	if err != nil {
		return nil, errors.WithMessagef(err, "keystore: key %s", name)
	}
	return ctx.PrivateKeyFromStruct(ks)
}

func (rec *record) keyStruct() (dstu4145.KeyStruct, error) {
	var ks dstu4145.KeyStruct
	fields := []struct {
		name string
		src  string
		dst  *[]byte
	}{
		{"b", rec.B, &ks.Curve.B},
		{"base", rec.Base, &ks.Curve.Base},
		{"d", rec.D, &ks.D},
		{"sbox", rec.SBox, &ks.SBox},
	}
	for _, f := range fields {
		b, err := hex.DecodeString(f.src)
		if err != nil {
			return ks, errors.Wrapf(err, "field %s", f.name)
		}
		*f.dst = b
	}
	order, ok := new(big.Int).SetString(rec.Order, 16)
	if !ok {
		return ks, errors.New("field order is not hexadecimal")
	}
	ks.Curve.M = rec.M
	ks.Curve.KS = rec.KS
	ks.Curve.A = rec.A
	ks.Curve.Order = order
	return ks, nil
}

// Delete removes the key stored under name.
func (s *Store) Delete(name string) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if ok, err := s.db.Has(dbKey(name), nil); err != nil {
		return errors.Wrapf(err, "keystore: reading key %s", name)
	} else if !ok {
		return errors.WithMessage(ErrNotFound, name)
	}
	return errors.Wrapf(s.db.Delete(dbKey(name), &opt.WriteOptions{Sync: true}), "keystore: deleting key %s", name)
}

// List returns the names of the stored keys in lexical order.
func (s *Store) List() ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	itr := s.db.NewIterator(util.BytesPrefix(keyPrefix), nil)
	defer itr.Release()

	var names []string
	for itr.Next() {
		names = append(names, string(itr.Key()[len(keyPrefix):]))
	}
	return names, errors.Wrap(itr.Error(), "keystore: listing keys")
}
