package downloader

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ductran27/LIS-landsurface-toolkit/common"
	"github.com/ductran27/LIS-landsurface-toolkit/interface/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider serves every granule except those listed in failing
type fakeProvider struct {
	name    string
	failing map[string]error

	mu      sync.Mutex
	fetched []string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Fetch(ctx context.Context, granule common.Granule, localDir string, opts provider.FetchOptions) (string, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, granule.Name)
	f.mu.Unlock()
	if err, ok := f.failing[granule.Name]; ok {
		return "", err
	}
	return filepath.Join(localDir, granule.Name), nil
}

func testGranules(n int) []common.Granule {
	granules := make([]common.Granule, n)
	for i := range n {
		granules[i] = common.Granule{Name: fmt.Sprintf("granule%d.hdf", i), DownloadURL: "https://example.com"}
	}
	return granules
}

func TestFetchGranules(t *testing.T) {
	fake := &fakeProvider{name: "fake"}
	granules := testGranules(3)

	result, err := FetchGranules(context.Background(), []provider.FileProvider{fake}, granules, "/data", Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/granule0.hdf", "/data/granule1.hdf", "/data/granule2.hdf"}, result.Paths)
	assert.Empty(t, result.Failures)
}

func TestFetchGranulesPartialFailure(t *testing.T) {
	fake := &fakeProvider{name: "fake", failing: map[string]error{
		"granule1.hdf": provider.ErrDownload{URL: "https://example.com", Err: fmt.Errorf("boom")},
	}}
	granules := testGranules(3)

	result, err := FetchGranules(context.Background(), []provider.FileProvider{fake}, granules, "/data", Options{})
	require.NoError(t, err)
	// The failed granule is recorded and the others are still fetched
	assert.Equal(t, []string{"/data/granule0.hdf", "/data/granule2.hdf"}, result.Paths)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "granule1.hdf", result.Failures[0].Granule.Name)
	assert.NotEmpty(t, result.Failures[0].Message)
	assert.Len(t, fake.fetched, 3)
}

func TestFetchGranulesAbortOnError(t *testing.T) {
	fake := &fakeProvider{name: "fake", failing: map[string]error{
		"granule0.hdf": provider.ErrDownload{URL: "https://example.com", Err: fmt.Errorf("boom")},
	}}

	_, err := FetchGranules(context.Background(), []provider.FileProvider{fake}, testGranules(3), "/data", Options{AbortOnError: true})
	assert.Error(t, err)
}

func TestFetchGranulesConcurrent(t *testing.T) {
	fake := &fakeProvider{name: "fake"}
	granules := testGranules(10)

	result, err := FetchGranules(context.Background(), []provider.FileProvider{fake}, granules, "/data", Options{Concurrency: 3})
	require.NoError(t, err)
	// Paths come back in search order regardless of completion order
	require.Len(t, result.Paths, 10)
	for i, path := range result.Paths {
		assert.Equal(t, fmt.Sprintf("/data/granule%d.hdf", i), path)
	}
}

func TestFetchGranulesProviderFallback(t *testing.T) {
	// The first provider cannot serve granule1, the second one can
	first := &fakeProvider{name: "first", failing: map[string]error{
		"granule1.hdf": provider.ErrGranuleNotFound{Granule: "granule1.hdf"},
	}}
	second := &fakeProvider{name: "second"}
	granules := testGranules(2)

	result, err := FetchGranules(context.Background(), []provider.FileProvider{first, second}, granules, "/data", Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/granule0.hdf", "/data/granule1.hdf"}, result.Paths)
	assert.Empty(t, result.Failures)
	// The second provider is only asked for the granule the first one missed
	assert.Equal(t, []string{"granule1.hdf"}, second.fetched)
}

func TestFetchGranulesNoProvider(t *testing.T) {
	_, err := FetchGranules(context.Background(), nil, testGranules(1), "/data", Options{})
	assert.Error(t, err)
}
