package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sort"

	"github.com/wcharczuk/go-chart/v2"
	"go.uber.org/zap"
)

// ErrNoData is returned when there is nothing to plot
var ErrNoData = errors.New("no categorized emails to plot")

// DistributionTitle is the title of the category pie chart
const DistributionTitle = "Distribution of Emails Across Categories"

const chartSize = 800

// Slice is one category in the distribution
type Slice struct {
	Label   string
	Count   int
	Percent float64
}

// Chart is a rendered-on-demand category pie chart
type Chart struct {
	Title  string
	Slices []Slice
}

// NewDistribution builds the chart for category counts, largest first
func NewDistribution(counts map[string]int) (*Chart, error) {
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return nil, ErrNoData
	}

	slices := make([]Slice, 0, len(counts))
	for label, n := range counts {
		if n <= 0 {
			continue
		}
		slices = append(slices, Slice{
			Label:   label,
			Count:   n,
			Percent: float64(n) * 100 / float64(total),
		})
	}
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Count != slices[j].Count {
			return slices[i].Count > slices[j].Count
		}
		return slices[i].Label < slices[j].Label
	})

	return &Chart{Title: DistributionTitle, Slices: slices}, nil
}

// Render writes the chart as PNG
func (c *Chart) Render(w io.Writer) error {
	values := make([]chart.Value, len(c.Slices))
	for i, s := range c.Slices {
		values[i] = chart.Value{
			Value: float64(s.Count),
			Label: fmt.Sprintf("%s (%.1f%%)", s.Label, s.Percent),
		}
	}

	pie := chart.PieChart{
		Title:  c.Title,
		Width:  chartSize,
		Height: chartSize,
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// Save writes the chart as a PNG file at path
func (c *Chart) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	if err := c.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Plotter renders the distribution chart and shows it when a display is available
type Plotter struct {
	logger     *zap.Logger
	hasDisplay func() bool
	openFile   func(path string) error
}

// NewPlotter creates a plotter that opens charts with the platform viewer
func NewPlotter(logger *zap.Logger) *Plotter {
	return &Plotter{
		logger:     logger,
		hasDisplay: displayAvailable,
		openFile:   openWithViewer,
	}
}

// Plot builds the chart for counts. With savePath the PNG is written there.
// Otherwise it goes to a temporary file handed to the viewer, and only when
// a display is available. The chart is returned either way.
func (p *Plotter) Plot(counts map[string]int, savePath string) (*Chart, error) {
	c, err := NewDistribution(counts)
	if err != nil {
		return nil, err
	}

	if savePath != "" {
		if err := c.Save(savePath); err != nil {
			return nil, err
		}
		p.logger.Info("Saved category chart", zap.String("path", savePath))
		return c, nil
	}

	if !p.hasDisplay() {
		p.logger.Info("No display available, chart not shown; use --save-path to write it to a file")
		return c, nil
	}

	f, err := os.CreateTemp("", "email-categories-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary chart file: %w", err)
	}
	path := f.Name()
	if err := c.Render(f); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to write temporary chart file: %w", err)
	}

	if err := p.openFile(path); err != nil {
		p.logger.Warn("Failed to open chart viewer", zap.String("path", path), zap.Error(err))
	}
	return c, nil
}

func displayAvailable() bool {
	switch runtime.GOOS {
	case "darwin", "windows":
		return true
	default:
		return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
	}
}

func openWithViewer(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
