// Package snapshot persists decode passes in a bbolt database.
//
// Every pass is a top level bucket pass_<id> holding one nested bucket per
// store category and a meta bucket. Parameters are JSON values keyed by their
// insertion sequence, so reading a category back keeps the decode order.
package snapshot

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/tosih/a2l-calreader/pkg/blocks"
	"github.com/tosih/a2l-calreader/pkg/calibration"
	"github.com/tosih/a2l-calreader/pkg/models"
	"github.com/tosih/a2l-calreader/pkg/store"
)

const (
	BucketNamePrefix = "pass_"
	MetaBucket       = "meta"
	infoKey          = "info"
	blocksKey        = "blocks"
)

// Info describes a stored pass
type Info struct {
	calibration.Summary
	Image   string `json:"image,omitempty"`
	Symbols string `json:"symbols,omitempty"`
}

type DB struct {
	DB     *bbolt.DB
	Logger *zap.Logger
}

// ErrPassNotFound returned when no bucket exists for a pass id
type ErrPassNotFound struct {
	ID string
}

func (e ErrPassNotFound) Error() string {
	return fmt.Sprintf("pass '%s' not found", e.ID)
}

func Open(path string, logger *zap.Logger) (*DB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{DB: db, Logger: logger}, nil
}

func (s *DB) Close() error {
	return s.DB.Close()
}

func bucketName(id string) []byte {
	return []byte(BucketNamePrefix + id)
}

func sequenceKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

// SavePass stores a completed pass together with the plan its image was read with.
// Passes are immutable; saving the same id twice fails.
func (s *DB) SavePass(res *calibration.Result, plan []blocks.Block, image, symbols string) error {
	id := res.ID.String()
	info := Info{Summary: res.Summary(), Image: image, Symbols: symbols}

	err := s.DB.Update(func(tx *bbolt.Tx) error {
		pass, err := tx.CreateBucket(bucketName(id))
		if err != nil {
			return fmt.Errorf("pass '%s': %w", id, err)
		}
		for _, category := range models.StoreCategories {
			b, err := pass.CreateBucket([]byte(category))
			if err != nil {
				return err
			}
			err = res.Store.Each(category, func(p models.Parameter) error {
				data, err := json.Marshal(p)
				if err != nil {
					return fmt.Errorf("%s: %w", p.Common().Name, err)
				}
				seq, err := b.NextSequence()
				if err != nil {
					return err
				}
				return b.Put(sequenceKey(seq), data)
			})
			if err != nil {
				return err
			}
		}

		meta, err := pass.CreateBucket([]byte(MetaBucket))
		if err != nil {
			return err
		}
		data, err := json.Marshal(info)
		if err != nil {
			return err
		}
		if err := meta.Put([]byte(infoKey), data); err != nil {
			return err
		}
		data, err = json.Marshal(plan)
		if err != nil {
			return err
		}
		return meta.Put([]byte(blocksKey), data)
	})
	if err != nil {
		return err
	}
	s.Logger.Info("pass saved", zap.String("pass", id), zap.Int("parameters", res.Store.Total()))
	return nil
}

func (s *DB) passBucket(tx *bbolt.Tx, id string) (*bbolt.Bucket, error) {
	b := tx.Bucket(bucketName(id))
	if b == nil {
		return nil, ErrPassNotFound{ID: id}
	}
	return b, nil
}

func readMeta(pass *bbolt.Bucket, key string, v interface{}) error {
	meta := pass.Bucket([]byte(MetaBucket))
	if meta == nil {
		return fmt.Errorf("no %s bucket", MetaBucket)
	}
	data := meta.Get([]byte(key))
	if data == nil {
		return fmt.Errorf("no %s in %s bucket", key, MetaBucket)
	}
	return json.Unmarshal(data, v)
}

// Passes returns the stored passes, oldest first
func (s *DB) Passes() ([]Info, error) {
	var out []Info
	err := s.DB.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bbolt.Bucket) error {
			if !strings.HasPrefix(string(name), BucketNamePrefix) {
				return nil
			}
			var info Info
			if err := readMeta(b, infoKey, &info); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			out = append(out, info)
			return nil
		})
	})
	return out, err
}

// Info returns the metadata of one pass
func (s *DB) Info(id string) (Info, error) {
	var info Info
	err := s.DB.View(func(tx *bbolt.Tx) error {
		pass, err := s.passBucket(tx, id)
		if err != nil {
			return err
		}
		return readMeta(pass, infoKey, &info)
	})
	return info, err
}

// Blocks returns the block plan stored with a pass
func (s *DB) Blocks(id string) ([]blocks.Block, error) {
	var plan []blocks.Block
	err := s.DB.View(func(tx *bbolt.Tx) error {
		pass, err := s.passBucket(tx, id)
		if err != nil {
			return err
		}
		return readMeta(pass, blocksKey, &plan)
	})
	return plan, err
}

// Parameters returns the parameters of one category in decode order
func (s *DB) Parameters(id, category string) ([]models.Parameter, error) {
	var out []models.Parameter
	err := s.DB.View(func(tx *bbolt.Tx) error {
		pass, err := s.passBucket(tx, id)
		if err != nil {
			return err
		}
		b := pass.Bucket([]byte(category))
		if b == nil {
			return fmt.Errorf("pass '%s': no category '%s'", id, category)
		}
		return b.ForEach(func(_, data []byte) error {
			p, err := store.Unmarshal(category, data)
			if err != nil {
				return err
			}
			out = append(out, p)
			return nil
		})
	})
	return out, err
}

// Load rebuilds the parameter store of a pass
func (s *DB) Load(id string) (*store.Store, error) {
	out := store.New()
	for _, category := range models.StoreCategories {
		params, err := s.Parameters(id, category)
		if err != nil {
			return nil, err
		}
		for _, p := range params {
			if err := out.Put(p); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
