// Package store keeps the parameters of one decode pass, one insertion-ordered
// section per category.
package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Velocidex/ordereddict"

	"github.com/tosih/a2l-calreader/pkg/models"
)

// Store maps category -> name -> decoded parameter
type Store struct {
	mu       sync.RWMutex
	sections map[string]*ordereddict.Dict
}

func New() *Store {
	s := &Store{sections: make(map[string]*ordereddict.Dict, len(models.StoreCategories))}
	for _, category := range models.StoreCategories {
		s.sections[category] = ordereddict.NewDict()
	}
	return s
}

// Section returns the store section a parameter belongs to. VALUE holds boolean and
// dependent values, CURVE holds curves of every axis attribute.
func Section(p models.Parameter) (string, error) {
	switch p.(type) {
	case *models.AxisPts:
		return models.CategoryAxisPts, nil
	case *models.Value:
		return models.CategoryValue, nil
	case *models.Ascii:
		return models.CategoryASCII, nil
	case *models.ValueBlock:
		return models.CategoryValBlk, nil
	case *models.Curve:
		return models.CategoryCurve, nil
	case *models.Map:
		return models.CategoryMap, nil
	case *models.Cuboid:
		return models.CategoryCuboid, nil
	case *models.Cube4:
		return models.CategoryCube4, nil
	case *models.Cube5:
		return models.CategoryCube5, nil
	default:
		return "", fmt.Errorf("no store section for %T", p)
	}
}

// Put adds p to its section. Names are unique within a section.
func (s *Store) Put(p models.Parameter) error {
	section, err := Section(p)
	if err != nil {
		return err
	}
	name := p.Common().Name

	s.mu.Lock()
	defer s.mu.Unlock()
	dict := s.sections[section]
	if _, ok := dict.Get(name); ok {
		return models.ErrDuplicateParameter{Category: section, Name: name}
	}
	dict.Set(name, p)
	return nil
}

// Get returns the parameter stored under section and name
func (s *Store) Get(section, name string) (models.Parameter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dict, ok := s.sections[section]
	if !ok {
		return nil, false
	}
	v, ok := dict.Get(name)
	if !ok {
		return nil, false
	}
	p, ok := v.(models.Parameter)
	return p, ok
}

// AxisPts returns a decoded AXIS_PTS object by name
func (s *Store) AxisPts(name string) (*models.AxisPts, bool) {
	p, ok := s.Get(models.CategoryAxisPts, name)
	if !ok {
		return nil, false
	}
	ap, ok := p.(*models.AxisPts)
	return ap, ok
}

// Curve returns a decoded CURVE by name
func (s *Store) Curve(name string) (*models.Curve, bool) {
	p, ok := s.Get(models.CategoryCurve, name)
	if !ok {
		return nil, false
	}
	c, ok := p.(*models.Curve)
	return c, ok
}

// Names returns the names of a section in insertion order
func (s *Store) Names(section string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dict, ok := s.sections[section]
	if !ok {
		return nil
	}
	return dict.Keys()
}

// Each calls fn for every parameter of section in insertion order, stopping at the first error
func (s *Store) Each(section string, fn func(models.Parameter) error) error {
	for _, name := range s.Names(section) {
		p, ok := s.Get(section, name)
		if !ok {
			continue
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the size of one section
func (s *Store) Len(section string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dict, ok := s.sections[section]
	if !ok {
		return 0
	}
	return dict.Len()
}

// Total returns the number of parameters over all sections
func (s *Store) Total() int {
	total := 0
	for _, section := range models.StoreCategories {
		total += s.Len(section)
	}
	return total
}

// MarshalJSON renders the sections in category order, parameters in insertion order
func (s *Store) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := ordereddict.NewDict()
	for _, section := range models.StoreCategories {
		out.Set(section, s.sections[section])
	}
	return out.MarshalJSON()
}

// Allocate returns an empty parameter of the Go type held by section
func Allocate(section string) (models.Parameter, error) {
	switch section {
	case models.CategoryAxisPts:
		return &models.AxisPts{}, nil
	case models.CategoryValue:
		return &models.Value{}, nil
	case models.CategoryASCII:
		return &models.Ascii{}, nil
	case models.CategoryValBlk:
		return &models.ValueBlock{}, nil
	case models.CategoryCurve:
		return &models.Curve{}, nil
	case models.CategoryMap:
		return &models.Map{}, nil
	case models.CategoryCuboid:
		return &models.Cuboid{}, nil
	case models.CategoryCube4:
		return &models.Cube4{}, nil
	case models.CategoryCube5:
		return &models.Cube5{}, nil
	default:
		return nil, fmt.Errorf("unknown store section '%s'", section)
	}
}

// Unmarshal decodes one JSON encoded parameter of section
func Unmarshal(section string, data []byte) (models.Parameter, error) {
	p, err := Allocate(section)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("%s: %w", section, err)
	}
	return p, nil
}
