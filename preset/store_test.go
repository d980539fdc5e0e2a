package preset

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cwbudde/algo-upscale/enhance"
	"github.com/cwbudde/algo-upscale/upscale"
)

func TestLoadAppliesFields(t *testing.T) {
	dir := t.TempDir()
	content := `{
  "intensity": 1.8,
  "harmonics_boost": 0.5,
  "noise_reduction": 0.1,
  "dynamic_boost": 1.4,
  "clarity_enhance": false,
  "frame_size": 1024,
  "hop_length": 512,
  "enhancers": [
    {"name": "harmonic", "params": {"boost": 0.6}},
    {"name": "widener"}
  ]
}`
	if err := os.WriteFile(filepath.Join(dir, "warm.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}

	f, err := NewStore(dir).Load("warm")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	params := upscale.NewDefaultParams()
	if err := Apply(&params, f); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if params.Intensity != 1.8 || params.HarmonicsBoost != 0.5 {
		t.Fatalf("spectral fields mismatch: %+v", params)
	}
	if params.NoiseReduction != 0.1 || params.DynamicBoost != 1.4 {
		t.Fatalf("noise/dynamic fields mismatch: %+v", params)
	}
	if params.ClarityEnhance {
		t.Fatalf("clarity_enhance=false not applied")
	}
	if params.FrameSize != 1024 || params.HopLength != 512 {
		t.Fatalf("frame fields mismatch: %+v", params)
	}
	if len(params.Enhancers) != 2 || params.Enhancers[0].Name != "harmonic" {
		t.Fatalf("enhancers mismatch: %+v", params.Enhancers)
	}
	if params.Enhancers[0].Params["boost"] != 0.6 {
		t.Fatalf("enhancer params mismatch: %+v", params.Enhancers[0])
	}
}

func TestApplyKeepsAbsentFields(t *testing.T) {
	params := upscale.NewDefaultParams()
	params.NoiseReduction = 0.7
	boost := 0.9
	if err := Apply(&params, &File{HarmonicsBoost: &boost}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if params.HarmonicsBoost != 0.9 {
		t.Fatalf("present field not applied: %f", params.HarmonicsBoost)
	}
	if params.NoiseReduction != 0.7 {
		t.Fatalf("absent field overwritten: %f", params.NoiseReduction)
	}
	if params.Intensity != upscale.DefaultIntensity {
		t.Fatalf("absent field overwritten: %f", params.Intensity)
	}
}

func TestApplyRejectsInvalidRanges(t *testing.T) {
	cases := []struct {
		name string
		file File
	}{
		{"intensity", File{Intensity: floatPtr(0)}},
		{"harmonics_boost", File{HarmonicsBoost: floatPtr(-0.1)}},
		{"noise_reduction", File{NoiseReduction: floatPtr(-1)}},
		{"dynamic_boost", File{DynamicBoost: floatPtr(-0.5)}},
		{"frame_size", File{FrameSize: intPtr(0)}},
		{"hop_length", File{HopLength: intPtr(-4)}},
	}
	for _, tc := range cases {
		params := upscale.NewDefaultParams()
		if err := Apply(&params, &tc.file); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	params := upscale.NewDefaultParams()
	params.Intensity = 2.0
	params.ClarityEnhance = false
	params.Enhancers = []enhance.Setting{
		{Name: "exciter", Params: map[string]float64{"amount": 0.4}},
	}

	path, err := store.Save("bright", FromParams(params))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("saved file missing: %v", err)
	}

	f, err := store.Load("bright")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, err := ToParams(f)
	if err != nil {
		t.Fatalf("ToParams: %v", err)
	}
	if !reflect.DeepEqual(got, params) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", got, params)
	}
}

func TestLoadMissingPreset(t *testing.T) {
	_, err := NewStore(t.TempDir()).Load("absent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListSortsAndStripsExtension(t *testing.T) {
	store := NewStore(t.TempDir())
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if _, err := store.Save(name, FromParams(upscale.NewDefaultParams())); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
	}
	if err := os.WriteFile(filepath.Join(store.Dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write stray file: %v", err)
	}

	names, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("names mismatch: got=%v want=%v", names, want)
	}
}

func TestListMissingDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope"))
	names, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected empty list, got %v", names)
	}
}

func TestDeleteReportsExistence(t *testing.T) {
	store := NewStore(t.TempDir())
	if _, err := store.Save("gone", FromParams(upscale.NewDefaultParams())); err != nil {
		t.Fatalf("Save: %v", err)
	}
	existed, err := store.Delete("gone")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !existed {
		t.Fatalf("expected existed=true")
	}
	existed, err = store.Delete("gone")
	if err != nil {
		t.Fatalf("Delete second time: %v", err)
	}
	if existed {
		t.Fatalf("expected existed=false for missing preset")
	}
}

func TestInstantiateValidatesParams(t *testing.T) {
	f := FromParams(upscale.NewDefaultParams())
	f.Enhancers = []enhance.Setting{{Name: "widener"}}
	up, err := Instantiate(f)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if up == nil {
		t.Fatalf("nil upscaler")
	}

	bad := FromParams(upscale.NewDefaultParams())
	bad.FrameSize = intPtr(1000)
	if _, err := Instantiate(bad); err == nil {
		t.Fatalf("expected error for non power of two frame size")
	}
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }
