// Package calibration runs decode passes over a memory image and plans
// device uploads.
//
// A pass is a two phase pipeline. Phase one decodes every AXIS_PTS object, phase
// two the characteristics whose axes may refer back to them: VALUE, ASCII,
// VAL_BLK, then CURVE, MAP, CUBOID, CUBE_4 and CUBE_5.
package calibration

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tosih/a2l-calreader/pkg/axis"
	"github.com/tosih/a2l-calreader/pkg/convert"
	"github.com/tosih/a2l-calreader/pkg/curve"
	"github.com/tosih/a2l-calreader/pkg/image"
	"github.com/tosih/a2l-calreader/pkg/models"
	"github.com/tosih/a2l-calreader/pkg/scalar"
	"github.com/tosih/a2l-calreader/pkg/store"
	"github.com/tosih/a2l-calreader/pkg/symbols"
)

// Pass decodes every object of a symbol model out of one memory image
type Pass struct {
	ID        ulid.ULID
	Model     *symbols.Model
	Memory    image.Memory
	Converter convert.Converter
	Logger    *zap.Logger
	// Parallel bounds the goroutines of the AXIS_PTS and scalar phases, 1 decodes sequentially
	Parallel int
}

// Result is the outcome of a completed pass
type Result struct {
	ID       ulid.ULID     `json:"id"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	EPK      EPKStatus     `json:"epk"`
	Store    *store.Store  `json:"parameters"`
}

// Summary describes a pass without its parameters
type Summary struct {
	ID       string         `json:"id"`
	Started  time.Time      `json:"started"`
	Duration time.Duration  `json:"duration"`
	EPK      EPKStatus      `json:"epk"`
	Counts   map[string]int `json:"counts"`
}

func (r *Result) Summary() Summary {
	out := Summary{
		ID:       r.ID.String(),
		Started:  r.Started,
		Duration: r.Duration,
		EPK:      r.EPK,
		Counts:   make(map[string]int, len(models.StoreCategories)),
	}
	for _, category := range models.StoreCategories {
		out.Counts[category] = r.Store.Len(category)
	}
	return out
}

type Option func(*Pass)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Pass) {
		p.Logger = logger
	}
}

func WithParallel(n int) Option {
	return func(p *Pass) {
		p.Parallel = n
	}
}

func WithConverter(conv convert.Converter) Option {
	return func(p *Pass) {
		p.Converter = conv
	}
}

// NewID returns a fresh pass identifier
func NewID() ulid.ULID {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader)
}

func NewPass(model *symbols.Model, mem image.Memory, opts ...Option) *Pass {
	p := &Pass{
		ID:        NewID(),
		Model:     model,
		Memory:    mem,
		Converter: convert.NewEvaluator(model),
		Logger:    zap.NewNop(),
		Parallel:  1,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.Logger = p.Logger.With(zap.String("pass", p.ID.String()))
	return p
}

// Run executes both phases. Any structural error aborts the pass; an EPK
// mismatch is only reported.
func (p *Pass) Run(ctx context.Context) (*Result, error) {
	res := &Result{ID: p.ID, Started: time.Now(), Store: store.New()}
	order := p.Model.ByteOrder()

	status, err := CheckEPK(p.Memory, p.Model)
	res.EPK = status
	switch {
	case err != nil:
		p.Logger.Warn("EPK not readable", zap.Error(err))
	case status == EPKMismatch:
		p.Logger.Warn("EPK mismatch, image and symbol database may not belong together")
	default:
		p.Logger.Debug("EPK checked", zap.String("status", status.String()))
	}

	axes := axis.NewDecoder(p.Memory, p.Converter, order)
	axes.Logger = p.Logger
	axisPts := p.Model.AxisPoints()
	err = p.decodeAll(ctx, res.Store, len(axisPts), func(i int) (models.Parameter, string, error) {
		ap, err := axes.Decode(axisPts[i])
		return ap, axisPts[i].Name, err
	})
	if err != nil {
		return nil, fmt.Errorf("AXIS_PTS phase: %w", err)
	}
	p.Logger.Info("axis points decoded", zap.Int("count", len(axisPts)))

	scalars := scalar.NewDecoder(p.Memory, p.Converter, order)
	scalars.Logger = p.Logger
	for _, t := range []models.CharacteristicType{models.TypeValue, models.TypeASCII, models.TypeValBlk} {
		list := p.Model.Characteristics(t)
		err := p.decodeAll(ctx, res.Store, len(list), func(i int) (models.Parameter, string, error) {
			param, err := scalars.Decode(list[i])
			return param, list[i].Name, err
		})
		if err != nil {
			return nil, fmt.Errorf("%s phase: %w", t, err)
		}
		p.Logger.Info("characteristics decoded", zap.String("type", string(t)), zap.Int("count", len(list)))
	}

	tables := curve.NewDispatcher(p.Memory, p.Converter, res.Store, order)
	tables.Logger = p.Logger
	for _, t := range []models.CharacteristicType{models.TypeCurve, models.TypeMap, models.TypeCuboid, models.TypeCube4, models.TypeCube5} {
		list := p.Model.Characteristics(t)
		if t == models.TypeCurve {
			ordered, err := CurveOrder(list)
			if err != nil {
				return nil, fmt.Errorf("%s phase: %w", t, err)
			}
			list = ordered
		}
		for _, chx := range list {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			tab, err := tables.Decode(chx)
			if err != nil {
				return nil, fmt.Errorf("%s phase: %w", t, err)
			}
			if err := res.Store.Put(tab); err != nil {
				return nil, err
			}
			p.Logger.Debug("decoded", zap.String("object", chx.Name), zap.String("category", tab.Common().Category))
		}
		p.Logger.Info("characteristics decoded", zap.String("type", string(t)), zap.Int("count", len(list)))
	}

	res.Duration = time.Since(res.Started)
	p.Logger.Info("pass completed", zap.Int("parameters", res.Store.Total()), zap.Duration("duration", res.Duration))
	return res, nil
}

// decodeAll decodes n independent objects, possibly in parallel, and stores the
// results in index order
func (p *Pass) decodeAll(ctx context.Context, s *store.Store, n int, decode func(i int) (models.Parameter, string, error)) error {
	results := make([]models.Parameter, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.Parallel, 1))
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			param, name, err := decode(i)
			if err != nil {
				p.Logger.Error("decode failed", zap.String("object", name), zap.Error(err))
				return err
			}
			results[i] = param
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, param := range results {
		if err := s.Put(param); err != nil {
			return err
		}
		p.Logger.Debug("decoded", zap.String("object", param.Common().Name), zap.String("category", param.Common().Category))
	}
	return nil
}

// CurveOrder sorts curves so every curve follows the curves its CURVE_AXIS axes
// reference. Curves are emitted in waves, each wave in address order. A reference
// to a name outside curves is left to the dispatcher, a cycle is an unresolved
// reference.
func CurveOrder(curves []models.CharacteristicDescriptor) ([]models.CharacteristicDescriptor, error) {
	pending := make(map[string]bool, len(curves))
	for _, c := range curves {
		pending[c.Name] = true
	}
	out := make([]models.CharacteristicDescriptor, 0, len(curves))
	rest := curves
	for len(rest) > 0 {
		var wave, next []models.CharacteristicDescriptor
		for _, c := range rest {
			if _, ok := pendingRef(c, pending); ok {
				next = append(next, c)
				continue
			}
			wave = append(wave, c)
		}
		if len(wave) == 0 {
			ref, _ := pendingRef(next[0], pending)
			return nil, models.ErrUnresolvedAxisReference{Object: next[0].Name, Attribute: models.CurveAxis, Ref: ref}
		}
		for _, c := range wave {
			delete(pending, c.Name)
		}
		out = append(out, wave...)
		rest = next
	}
	return out, nil
}

// pendingRef returns the first CURVE_AXIS reference of c still waiting to be ordered
func pendingRef(c models.CharacteristicDescriptor, pending map[string]bool) (string, bool) {
	for _, ad := range c.AxisDescriptions {
		if ad.Attribute == models.CurveAxis && pending[ad.CurveAxisRef] {
			return ad.CurveAxisRef, true
		}
	}
	return "", false
}
