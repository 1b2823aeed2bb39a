package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tosih/a2l-calreader/pkg/blocks"
	"github.com/tosih/a2l-calreader/pkg/snapshot"
)

const database = `
mod_par:
  epk: "EPK1"
  addr_epk: 0x1000
compu_methods:
  - name: CM.GAIN
    conversion_type: LINEAR
    unit: "%"
    coeffs_linear: {a: 2, b: 0}
record_layouts:
  - name: RL.VALUE
    components:
      - {position: 1, kind: fncValues, datatype: UBYTE}
characteristics:
  - name: V_GAIN
    type: VALUE
    address: 0x1004
    record_layout: RL.VALUE
    conversion: CM.GAIN
`

type workspace struct {
	dir     string
	config  string
	symbols string
	image   string
	db      string
}

func setup(t *testing.T) workspace {
	t.Helper()
	dir := t.TempDir()
	w := workspace{
		dir:     dir,
		config:  filepath.Join(dir, "config"),
		symbols: filepath.Join(dir, "ecu.yaml"),
		image:   filepath.Join(dir, "ecu.bin"),
		db:      filepath.Join(dir, "snapshots.db"),
	}
	files := map[string][]byte{
		w.symbols: []byte(database),
		w.image:   append([]byte("EPK1"), 21),
		w.config:  []byte("logLevel: error\nsnapshotDB: " + w.db + "\nimage:\n  baseAddress: 4096\n"),
	}
	for name, data := range files {
		if err := os.WriteFile(name, data, 0644); err != nil {
			t.Fatal(err)
		}
	}
	return w
}

func run(t *testing.T, w workspace, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", w.config}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDecode_JSON(t *testing.T) {
	w := setup(t)
	out, err := run(t, w, "decode", "--json", "--symbols", w.symbols, "--image", w.image)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var res struct {
		EPK        string `json:"epk"`
		Parameters map[string]map[string]struct {
			Name           string `json:"name"`
			ConvertedValue struct {
				Value float64 `json:"value"`
			} `json:"convertedValue"`
		} `json:"parameters"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("not JSON: %v\n%s", err, out)
	}
	if res.EPK != "match" {
		t.Errorf("epk = %s", res.EPK)
	}
	if got := res.Parameters["VALUE"]["V_GAIN"].ConvertedValue.Value; got != 42 {
		t.Errorf("V_GAIN = %v", got)
	}
}

func TestDecode_MissingInputs(t *testing.T) {
	w := setup(t)
	if _, err := run(t, w, "decode"); err == nil {
		t.Error("expected error without symbols")
	}
	if _, err := run(t, w, "decode", "--symbols", w.symbols); err == nil {
		t.Error("expected error without image")
	}
	if _, err := run(t, w, "--log-level", "verbose", "plan", "--symbols", w.symbols); err == nil {
		t.Error("expected error for unknown log level")
	}
}

func TestPlan_JSON(t *testing.T) {
	w := setup(t)
	out, err := run(t, w, "plan", "--json", "--symbols", w.symbols)
	if err != nil {
		t.Fatal(err)
	}
	var plan []blocks.Block
	if err := json.Unmarshal([]byte(out), &plan); err != nil {
		t.Fatal(err)
	}
	want := []blocks.Block{{
		Address: 0x1000,
		Length:  5,
		Members: []blocks.Member{{Name: "EPK", Offset: 0, Length: 4}, {Name: "V_GAIN", Offset: 4, Length: 1}},
	}}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("plan (-want +got):\n%s", diff)
	}
}

func TestDecode_Save(t *testing.T) {
	w := setup(t)
	if _, err := run(t, w, "decode", "--json", "--save", "--symbols", w.symbols, "--image", w.image); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, w, "snapshot", "list", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var passes []snapshot.Info
	if err := json.Unmarshal([]byte(out), &passes); err != nil {
		t.Fatal(err)
	}
	if len(passes) != 1 || passes[0].Image != w.image || passes[0].Counts["VALUE"] != 1 {
		t.Errorf("passes = %+v", passes)
	}

	out, err = run(t, w, "compare", "--json", "--changed-only", "--snapshot", passes[0].ID,
		"--symbols", w.symbols, "--image", w.image)
	if err != nil {
		t.Fatal(err)
	}
	if out != "null\n" {
		t.Errorf("changes = %s", out)
	}
}

func TestConfigInit(t *testing.T) {
	w := setup(t)
	if _, err := run(t, w, "config", "init"); err == nil {
		t.Error("expected error for existing config")
	}
	w.config = filepath.Join(w.dir, "new", "config")
	if _, err := run(t, w, "config", "init"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(w.config); err != nil {
		t.Error(err)
	}
}
