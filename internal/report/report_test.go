package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/core"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestNewDistribution(t *testing.T) {
	c, err := NewDistribution(map[string]int{"Work": 2, "Finance": 1, "Health": 1, "Empty": 0})
	require.NoError(t, err)

	assert.Equal(t, DistributionTitle, c.Title)
	require.Len(t, c.Slices, 3)
	assert.Equal(t, "Work", c.Slices[0].Label)
	assert.InDelta(t, 50.0, c.Slices[0].Percent, 0.001)
	assert.Equal(t, "Finance", c.Slices[1].Label)
	assert.Equal(t, "Health", c.Slices[2].Label)
}

func TestNewDistributionNoData(t *testing.T) {
	_, err := NewDistribution(map[string]int{})
	assert.ErrorIs(t, err, ErrNoData)

	_, err = NewDistribution(map[string]int{"Work": 0})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestChartRenderPNG(t *testing.T) {
	c, err := NewDistribution(map[string]int{"Work": 3, "Finance": 1})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.Render(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestPlotSavesToPath(t *testing.T) {
	p := NewPlotter(zap.NewNop())
	p.openFile = func(string) error {
		t.Fatal("viewer must not open when saving")
		return nil
	}
	path := filepath.Join(t.TempDir(), "chart.png")

	_, err := p.Plot(map[string]int{"Work": 1}, path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestPlotWithoutDisplayReturnsChart(t *testing.T) {
	p := NewPlotter(zap.NewNop())
	p.hasDisplay = func() bool { return false }
	p.openFile = func(string) error {
		t.Fatal("viewer must not open without a display")
		return nil
	}

	c, err := p.Plot(map[string]int{"Work": 1, "Tickets": 1}, "")

	require.NoError(t, err)
	assert.Len(t, c.Slices, 2)
}

func TestPlotOpensViewerWithDisplay(t *testing.T) {
	p := NewPlotter(zap.NewNop())
	p.hasDisplay = func() bool { return true }
	var opened string
	p.openFile = func(path string) error {
		opened = path
		return nil
	}

	_, err := p.Plot(map[string]int{"Work": 1}, "")
	require.NoError(t, err)
	defer os.Remove(opened)

	require.NotEmpty(t, opened)
	_, err = os.Stat(opened)
	assert.NoError(t, err)
}

func TestPlotNoData(t *testing.T) {
	_, err := NewPlotter(zap.NewNop()).Plot(nil, "")
	assert.ErrorIs(t, err, ErrNoData)
}

func rankedSample() []*core.Email {
	return []*core.Email{
		{Subject: core.StringPtr("Re: project update"), Sender: core.StringPtr("alice@co.com"),
			Category: core.StringPtr("Work"), Priority: core.IntPtr(6), ActionRequired: true},
		{Sender: core.StringPtr("bob@co.com"), ActionRequired: true},
	}
}

func TestPrintActionList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintActionList(&buf, rankedSample()))

	out := buf.String()
	assert.Contains(t, out, "Emails requiring action")
	assert.Contains(t, out, "1.")
	assert.Contains(t, out, "Re: project update")
	assert.Contains(t, out, "priority 6")
	assert.Contains(t, out, "alice@co.com")
	assert.Contains(t, out, "(no subject)")
	assert.Contains(t, out, core.UncategorizedLabel)
}

func TestPrintActionListEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintActionList(&buf, nil))
	assert.Equal(t, "No emails require action.\n", buf.String())
}

func TestFormatActionList(t *testing.T) {
	text := FormatActionList(rankedSample())

	assert.Contains(t, text, "1. [priority 6] Re: project update\n   from alice@co.com, category Work\n")
	assert.Contains(t, text, "2. [priority ?] (no subject)\n   from bob@co.com, category Uncategorized\n")
}

func TestPrintSummary(t *testing.T) {
	emails := rankedSample()
	var buf bytes.Buffer

	require.NoError(t, PrintSummary(&buf, core.Summarize(emails)))

	assert.Contains(t, buf.String(), "Total mails: 2")
	assert.Contains(t, buf.String(), "Work")
}
