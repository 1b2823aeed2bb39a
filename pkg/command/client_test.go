package command

import (
	"context"
	"errors"
	"net"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tosih/a2l-calreader/pkg/calibration"
	"github.com/tosih/a2l-calreader/pkg/config"
	"github.com/tosih/a2l-calreader/pkg/image"
	"github.com/tosih/a2l-calreader/pkg/models"
	"github.com/tosih/a2l-calreader/pkg/symbols"
	"github.com/tosih/a2l-calreader/pkg/web"
)

const database = `
mod_par:
  epk: "EPK1"
  addr_epk: 0x0100
record_layouts:
  - name: RL.AXIS
    components:
      - {position: 1, kind: noAxisPts, axis: x, datatype: UBYTE}
      - {position: 2, kind: axisPts, axis: x, datatype: UBYTE}
  - name: RL.VALUE
    components:
      - {position: 1, kind: fncValues, datatype: UWORD}
axis_pts:
  - name: A_SPD
    address: 0x0200
    record_layout: RL.AXIS
    max_axis_points: 4
characteristics:
  - name: V_LIMIT
    type: VALUE
    address: 0x0300
    record_layout: RL.VALUE
`

func serve(t *testing.T) (*ApiClient, *web.Server, *symbols.Model) {
	t.Helper()
	model, err := symbols.Parse([]byte(database))
	if err != nil {
		t.Fatal(err)
	}
	img, err := image.New([]image.Section{
		{Address: 0x0100, Data: []byte("EPK1")},
		{Address: 0x0200, Data: []byte{3, 10, 20, 30, 0}},
		{Address: 0x0300, Data: []byte{0x01, 0x02}},
	})
	if err != nil {
		t.Fatal(err)
	}
	res, err := calibration.NewPass(model, img).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	plan, err := calibration.Plan(model)
	if err != nil {
		t.Fatal(err)
	}
	srv := web.NewServer(&config.ServerConfig{}, model, img, res, plan, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	addr := ts.Listener.Addr().(*net.TCPAddr)
	cfg := config.NewDefaultConfig()
	cfg.Remote = &config.ServerConfig{Address: addr.IP.String(), Port: addr.Port}
	return NewApiClient(cfg), srv, model
}

func TestApiClient_Pass(t *testing.T) {
	c, srv, _ := serve(t)
	ctx := context.Background()

	summary, err := c.CurrentPass(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(srv.Pass.Summary().Counts, summary.Counts); diff != "" {
		t.Errorf("counts (-want +got):\n%s", diff)
	}

	epk, err := c.EPK(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if epk.Status != calibration.EPKMatch || epk.Found != "EPK1" {
		t.Errorf("epk = %+v", epk)
	}

	plan, err := c.Blocks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(srv.Plan, plan); diff != "" {
		t.Errorf("blocks (-want +got):\n%s", diff)
	}
}

func TestApiClient_Parameters(t *testing.T) {
	c, _, _ := serve(t)
	ctx := context.Background()

	p, err := c.Parameter(ctx, models.CategoryAxisPts, "A_SPD")
	if err != nil {
		t.Fatal(err)
	}
	ap, ok := p.(*models.AxisPts)
	if !ok {
		t.Fatalf("Parameter() = %T", p)
	}
	if diff := cmp.Diff([]float64{10, 20, 30}, ap.RawValues); diff != "" {
		t.Errorf("A_SPD (-want +got):\n%s", diff)
	}

	remote, err := c.Store(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if remote.Total() != 2 {
		t.Errorf("Total() = %d", remote.Total())
	}

	if _, err := c.Parameter(ctx, models.CategoryValue, "MISSING"); err == nil {
		t.Error("expected error")
	}
}

func TestApiClient_Upload(t *testing.T) {
	c, srv, model := serve(t)
	ctx := context.Background()

	img, plan, err := calibration.Upload(ctx, c, model, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan) != len(srv.Plan) {
		t.Errorf("plan = %v", plan)
	}
	res, err := calibration.NewPass(model, img).Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := res.Store.MarshalJSON()
	want, _ := srv.Pass.Store.MarshalJSON()
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Errorf("uploaded store (-want +got):\n%s", diff)
	}

	var ioErr models.ErrIoRead
	if _, err := c.Read(ctx, 0x9000, 2); !errors.As(err, &ioErr) || ioErr.Address != 0x9000 {
		t.Errorf("Read() error = %v", err)
	}
}
