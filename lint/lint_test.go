package lint

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnolang/tealer/internal"
	"github.com/gnolang/tealer/internal/detectors"
	tt "github.com/gnolang/tealer/internal/types"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Run(filePath string) (*internal.Report, error) {
	args := m.Called(filePath)
	report, _ := args.Get(0).(*internal.Report)
	return report, args.Error(1)
}

func (m *mockEngine) RunSource(name string, source []byte) (*internal.Report, error) {
	args := m.Called(name, source)
	report, _ := args.Get(0).(*internal.Report)
	return report, args.Error(1)
}

func (m *mockEngine) IgnoreDetector(name string) {
	m.Called(name)
}

func createTempFiles(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	var paths []string
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("int 1\nreturn\n"), 0o644))
		paths = append(paths, path)
	}
	return paths
}

func TestProcessFile(t *testing.T) {
	t.Parallel()
	expected := &internal.Report{Filename: "test.teal"}
	engine := new(mockEngine)
	engine.On("Run", "test.teal").Return(expected, nil)

	report, err := ProcessFile(engine, "test.teal")
	assert.NoError(t, err)
	assert.Same(t, expected, report)
	engine.AssertExpectations(t)
}

func TestProcessSource(t *testing.T) {
	t.Parallel()
	src := []byte("int 1\nreturn\n")
	expected := &internal.Report{Filename: "mem.teal"}
	engine := new(mockEngine)
	engine.On("RunSource", "mem.teal", src).Return(expected, nil)

	report, err := ProcessSource(engine, "mem.teal", src)
	assert.NoError(t, err)
	assert.Same(t, expected, report)
	engine.AssertExpectations(t)
}

func TestProcessPath(t *testing.T) {
	t.Parallel()
	logger, _ := zap.NewDevelopment()
	dir := t.TempDir()
	paths := createTempFiles(t, dir, "a.teal", "b.teal", "notes.txt")

	engine := new(mockEngine)
	engine.On("Run", paths[0]).Return(&internal.Report{Filename: paths[0]}, nil)
	engine.On("Run", paths[1]).Return(&internal.Report{Filename: paths[1]}, nil)

	var progress bytes.Buffer
	reports, err := ProcessPath(context.Background(), logger, engine, dir, ProcessFile, WithProgress(&progress))
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, paths[0], reports[0].Filename)
	assert.Equal(t, paths[1], reports[1].Filename)
	assert.NotEmpty(t, progress.String())
	engine.AssertExpectations(t)
	engine.AssertNotCalled(t, "Run", paths[2])
}

func TestProcessFilesContinuesAfterError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	paths := createTempFiles(t, dir, "a.teal", "b.teal")
	missing := filepath.Join(dir, "missing.teal")
	failure := errors.New("boom")

	engine := new(mockEngine)
	engine.On("Run", paths[0]).Return(nil, failure)
	engine.On("Run", paths[1]).Return(&internal.Report{Filename: paths[1]}, nil)

	reports, err := ProcessFiles(context.Background(), nil, engine, []string{paths[0], missing, paths[1]}, ProcessFile)
	require.Error(t, err)
	assert.ErrorIs(t, err, failure)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), missing)
	require.Len(t, reports, 1)
	assert.Equal(t, paths[1], reports[0].Filename)
	engine.AssertExpectations(t)
}

func TestProcessPathContextCancellation(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	createTempFiles(t, dir, "a.teal", "b.teal")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := new(mockEngine)
	reports, err := ProcessFiles(ctx, nil, engine, []string{dir}, ProcessFile)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reports)
	engine.AssertNotCalled(t, "Run", mock.Anything)
}

func TestProcessFilesWithRealEngine(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "dead.teal")
	require.NoError(t, os.WriteFile(path, []byte("int 1\nreturn\nint 2\nerr\n"), 0o644))

	engine := NewFromConfig(Config{NoExport: true})
	reports, err := ProcessFiles(context.Background(), nil, engine, []string{dir}, ProcessFile)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Findings, 1)
	assert.Equal(t, detectors.DeadCodeName, reports[0].Findings[0].Detector)
}

func TestLoadConfigYAML(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tealer.yaml")
	content := `name: mine
detectors:
  deadCode:
    off: true
export_dir: out
min_impact: low
complexity_threshold: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "mine", config.Name)
	assert.True(t, config.Detectors[detectors.DeadCodeName].Off)
	assert.Equal(t, "out", config.ExportDir)
	assert.Equal(t, tt.ImpactLow, config.MinImpact)
	assert.Equal(t, 4, config.ComplexityThreshold)
}

func TestLoadConfigTOML(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tealer.toml")
	content := `name = "mine"
no_export = true
min_impact = "Medium"

[detectors.highComplexity]
off = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "mine", config.Name)
	assert.True(t, config.NoExport)
	assert.Equal(t, tt.ImpactMedium, config.MinImpact)
	assert.True(t, config.Detectors[detectors.HighComplexityName].Off)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("min_impact: catastrophic\n"), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)
}

func TestWriteConfigRoundTrip(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"c.yaml", "c.toml"} {
		path := filepath.Join(t.TempDir(), name)
		config := DefaultConfig()
		config.Detectors[detectors.DeadCodeName] = DetectorConfig{Off: true}
		config.MinImpact = tt.ImpactOptimization

		require.NoError(t, WriteConfig(path, config), name)
		loaded, err := LoadConfig(path)
		require.NoError(t, err, name)
		assert.Equal(t, config, loaded, name)
	}
}

func TestNewAppliesConfig(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tealer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("detectors:\n  deadCode:\n    off: true\n"), 0o644))

	engine, err := New(path)
	require.NoError(t, err)
	for _, d := range engine.Detectors() {
		assert.NotEqual(t, detectors.DeadCodeName, d.Name)
	}

	_, err = New(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
