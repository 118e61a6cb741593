package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/SangMin316/dn3/pkg/transform"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
	"gorgonia.org/tensor"
)

// Store caches named sample sets in leveldb. Extras are not persisted.
type Store struct {
	db *leveldb.DB
}

type record struct {
	Index      int       `json:"index"`
	Shape      []int     `json:"shape"`
	Input      []float64 `json:"input"`
	LabelShape []int     `json:"labelShape"`
	Label      []float64 `json:"label"`
	LabelIndex bool      `json:"labelIndex,omitempty"`
}

func OpenStore(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func key(name string, index int) []byte {
	return fmt.Appendf([]byte{}, "%s-%08d", name, index)
}

func prefix(name string) []byte {
	return fmt.Appendf([]byte{}, "%s-", name)
}

// Put replaces the named set with samples.
func (s *Store) Put(name string, samples []transform.Sample) error {
	if strings.Contains(name, "-") {
		return fmt.Errorf("%w: store name %q must not contain '-'", transform.ErrInvalidConfiguration, name)
	}
	if err := s.Delete(name); err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	for i, sample := range samples {
		r, err := encodeRecord(i, sample)
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
		batch.Put(key(name, i), data)
	}
	return s.db.Write(batch, nil)
}

// Get returns the named set in insertion order. An unknown name yields no
// samples and no error.
func (s *Store) Get(name string) ([]transform.Sample, error) {
	iter := s.db.NewIterator(util.BytesPrefix(prefix(name)), nil)
	defer iter.Release()

	records := []record{}
	for iter.Next() {
		suffix := strings.TrimPrefix(string(iter.Key()), string(prefix(name)))
		if _, err := strconv.Atoi(suffix); err != nil {
			continue
		}
		var r record
		if err := json.Unmarshal(iter.Value(), &r); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", iter.Key(), err)
		}
		records = append(records, r)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	slices.SortFunc(records, func(a, b record) int {
		return a.Index - b.Index
	})

	out := make([]transform.Sample, len(records))
	for i, r := range records {
		out[i] = decodeRecord(r)
	}
	return out, nil
}

func (s *Store) Delete(name string) error {
	iter := s.db.NewIterator(util.BytesPrefix(prefix(name)), nil)
	defer iter.Release()

	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(slices.Clone(iter.Key()))
	}
	if err := iter.Error(); err != nil {
		return err
	}
	return s.db.Write(batch, nil)
}

func encodeRecord(index int, s transform.Sample) (record, error) {
	input, err := transform.AsFloat64(s.Input)
	if err != nil {
		return record{}, err
	}
	r := record{
		Index: index,
		Shape: slices.Clone([]int(input.Shape())),
	}
	if r.Input, err = transform.Float64s(input); err != nil {
		return record{}, err
	}
	if s.Label == nil {
		return r, nil
	}

	if class, err := transform.ClassIndex(s.Label); err == nil {
		r.LabelIndex = true
		r.Label = []float64{float64(class)}
		return r, nil
	}
	label, err := transform.AsFloat64(s.Label)
	if err != nil {
		return record{}, err
	}
	r.LabelShape = slices.Clone([]int(label.Shape()))
	r.Label, err = transform.Float64s(label)
	return r, err
}

func decodeRecord(r record) transform.Sample {
	s := transform.Sample{Input: fromFlat(r.Shape, r.Input)}
	switch {
	case r.LabelIndex:
		s.Label = tensor.New(tensor.FromScalar(int(math.Round(r.Label[0]))))
	case r.Label != nil:
		s.Label = fromFlat(r.LabelShape, r.Label)
	}
	return s
}

func fromFlat(shape []int, data []float64) *tensor.Dense {
	if len(shape) == 0 {
		return tensor.New(tensor.FromScalar(data[0]))
	}
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(data))
}
