package calibration

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tosih/a2l-calreader/pkg/blocks"
	"github.com/tosih/a2l-calreader/pkg/image"
	"github.com/tosih/a2l-calreader/pkg/layout"
	"github.com/tosih/a2l-calreader/pkg/models"
	"github.com/tosih/a2l-calreader/pkg/scalar"
	"github.com/tosih/a2l-calreader/pkg/symbols"
)

// EPKFootprint is the footprint name of the EPROM identifier
const EPKFootprint = "EPK"

// Footprints lists the statically allocated bytes of every object of the model:
// the EPK if configured, AXIS_PTS by address, then characteristics by type and address.
func Footprints(model *symbols.Model) ([]blocks.Footprint, error) {
	var out []blocks.Footprint
	if epk, ok := model.EPK(); ok {
		out = append(out, blocks.Footprint{Name: EPKFootprint, Address: epk.Address, Length: len(epk.Value)})
	}
	for _, ap := range model.AxisPoints() {
		size, err := layout.Sizeof(ap.Layout)
		if err != nil {
			return nil, models.ErrMalformedRecordLayout{Object: ap.Name, What: err.Error()}
		}
		out = append(out, blocks.Footprint{Name: ap.Name, Address: ap.Address, Length: size})
	}
	for _, chx := range model.AllCharacteristics() {
		size, err := characteristicSize(chx)
		if err != nil {
			return nil, err
		}
		out = append(out, blocks.Footprint{Name: chx.Name, Address: chx.Address, Length: size})
	}
	return out, nil
}

func characteristicSize(chx models.CharacteristicDescriptor) (int, error) {
	if chx.Type == models.TypeASCII {
		return scalar.Length(chx), nil
	}
	size, err := layout.Sizeof(chx.Layout)
	if err != nil {
		return 0, models.ErrMalformedRecordLayout{Object: chx.Name, What: err.Error()}
	}
	return size, nil
}

// Plan merges the footprints of the model into contiguous blocks
func Plan(model *symbols.Model) ([]blocks.Block, error) {
	footprints, err := Footprints(model)
	if err != nil {
		return nil, err
	}
	return blocks.Plan(footprints), nil
}

// Upload reads every planned block once from the device and assembles an image
// of the blocks read
func Upload(ctx context.Context, device image.Device, model *symbols.Model, logger *zap.Logger, opts ...image.Option) (*image.Image, []blocks.Block, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	plan, err := Plan(model)
	if err != nil {
		return nil, nil, err
	}
	sections := make([]image.Section, 0, len(plan))
	for _, b := range plan {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		data, err := device.Read(ctx, b.Address, b.Length)
		if err != nil {
			return nil, nil, models.ErrIoRead{Address: b.Address, Length: b.Length, Err: err}
		}
		if len(data) != b.Length {
			return nil, nil, models.ErrIoRead{Address: b.Address, Length: b.Length,
				Err: fmt.Errorf("device returned %d bytes", len(data))}
		}
		logger.Debug("block uploaded",
			zap.String("address", fmt.Sprintf("0x%08X", b.Address)),
			zap.Int("length", b.Length),
			zap.Int("members", len(b.Members)))
		sections = append(sections, image.Section{Address: b.Address, Data: data})
	}
	img, err := image.New(sections, opts...)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("upload completed", zap.Int("blocks", len(plan)), zap.Int("bytes", blocks.Covered(plan)))
	return img, plan, nil
}
