// Package command talks to a running calibration API server.
package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/imroc/req"

	"github.com/tosih/a2l-calreader/pkg/blocks"
	"github.com/tosih/a2l-calreader/pkg/calibration"
	"github.com/tosih/a2l-calreader/pkg/config"
	"github.com/tosih/a2l-calreader/pkg/image"
	"github.com/tosih/a2l-calreader/pkg/models"
	"github.com/tosih/a2l-calreader/pkg/store"
	"github.com/tosih/a2l-calreader/pkg/web"
)

type ApiClient struct {
	*config.Config
	ApiPrefix string
}

var _ image.Device = &ApiClient{}

func NewApiClient(cfg *config.Config) *ApiClient {
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: fmt.Sprintf("http://%s/api", cfg.Remote.Addr()),
	}
}

func (c *ApiClient) get(ctx context.Context, path string) (*req.Resp, error) {
	r, err := req.Get(c.ApiPrefix+path, ctx)
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != 200 {
		return nil, errors.New(r.Response().Status)
	}
	return r, nil
}

// CurrentPass returns the summary of the pass the server decoded
func (c *ApiClient) CurrentPass(ctx context.Context) (*calibration.Summary, error) {
	r, err := c.get(ctx, "/passes/current")
	if err != nil {
		return nil, err
	}
	summary := &calibration.Summary{}
	if err := r.ToJSON(summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// Parameters returns the parameters of one category in decode order
func (c *ApiClient) Parameters(ctx context.Context, category string) ([]models.Parameter, error) {
	r, err := c.get(ctx, fmt.Sprintf("/parameters/%s", category))
	if err != nil {
		return nil, err
	}
	var raw []json.RawMessage
	if err := r.ToJSON(&raw); err != nil {
		return nil, err
	}
	out := make([]models.Parameter, 0, len(raw))
	for _, data := range raw {
		p, err := store.Unmarshal(category, data)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Parameter returns one parameter
func (c *ApiClient) Parameter(ctx context.Context, category, name string) (models.Parameter, error) {
	r, err := c.get(ctx, fmt.Sprintf("/parameters/%s/%s", category, name))
	if err != nil {
		return nil, err
	}
	data, err := r.ToBytes()
	if err != nil {
		return nil, err
	}
	return store.Unmarshal(category, data)
}

// Store fetches every category of the remote pass
func (c *ApiClient) Store(ctx context.Context) (*store.Store, error) {
	out := store.New()
	for _, category := range models.StoreCategories {
		params, err := c.Parameters(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", category, err)
		}
		for _, p := range params {
			if err := out.Put(p); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Blocks returns the upload plan of the remote pass
func (c *ApiClient) Blocks(ctx context.Context) ([]blocks.Block, error) {
	r, err := c.get(ctx, "/blocks")
	if err != nil {
		return nil, err
	}
	var plan []blocks.Block
	if err := r.ToJSON(&plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// EPK returns the EPROM identifier check of the remote image
func (c *ApiClient) EPK(ctx context.Context) (*web.EPKResponse, error) {
	r, err := c.get(ctx, "/epk")
	if err != nil {
		return nil, err
	}
	epk := &web.EPKResponse{}
	if err := r.ToJSON(epk); err != nil {
		return nil, err
	}
	return epk, nil
}

// Read fetches raw memory of the remote image, so a served image can act as
// the device of an upload. Long reads are split into MaxMemoryRead requests.
func (c *ApiClient) Read(ctx context.Context, addr uint32, length int) ([]byte, error) {
	out := make([]byte, 0, length)
	for len(out) < length {
		n := min(length-len(out), web.MaxMemoryRead)
		at := addr + uint32(len(out))
		r, err := c.get(ctx, fmt.Sprintf("/memory/0x%x/%d", at, n))
		if err != nil {
			return nil, models.ErrIoRead{Address: at, Length: n, Err: err}
		}
		data, err := r.ToBytes()
		if err != nil {
			return nil, models.ErrIoRead{Address: at, Length: n, Err: err}
		}
		if len(data) != n {
			return nil, models.ErrIoRead{Address: at, Length: n, Err: fmt.Errorf("short read of %d bytes", len(data))}
		}
		out = append(out, data...)
	}
	return out, nil
}
