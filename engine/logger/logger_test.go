package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModuleNameAppearsInOutput(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stderr)
	SetLevel(Info)

	New("raytracer").Infof("frame %d", 3)

	assert.Contains(t, buf.String(), "[raytracer]")
	assert.Contains(t, buf.String(), "frame 3")
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stderr)
	SetLevel(Warning)
	defer SetLevel(Info)

	l := New("viewer")
	l.Info("hidden")
	l.Warning("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, Debug, ParseLevel("DEBUG"))
	assert.Equal(t, Warning, ParseLevel("warn"))
	assert.Equal(t, Info, ParseLevel("bogus"))
}
