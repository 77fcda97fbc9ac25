package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/meadow/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v", om, err)
	}
	// Nil manager methods are no-ops
	if err := om.WriteTierChange(TierChange{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWrites(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager error: %v", err)
	}

	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := om.WriteTierChange(TierChange{Frame: int64(i), From: "high", To: "medium", Reason: ReasonLag}); err != nil {
			t.Fatalf("WriteTierChange: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		if err := om.WriteFrame(FrameSample{Frame: int64(i), FrameMS: 16.5 + float64(i)}); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "tiers.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "frame,from,to,reason") {
		t.Errorf("tiers.csv has unexpected content:\n%s", data)
	}

	frames, err := ReadFrames(filepath.Join(dir, "frames.csv"))
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if len(frames) != 3 || frames[2].FrameMS != 18.5 {
		t.Errorf("frames = %+v", frames)
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}
