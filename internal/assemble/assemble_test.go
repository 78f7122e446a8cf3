// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lambelambe/pkg/types"
)

func writePNG(t *testing.T, path string, w, h int, transparent bool) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: uint8(x), G: uint8(y), B: 120, A: 255}
			if transparent && x < w/2 {
				c.A = 0
			}
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, nil))
}

func testConfig(dir string) types.AssemblyConfig {
	return types.AssemblyConfig{
		CacheDir:   filepath.Join(dir, "profile_pictures"),
		OutputPath: filepath.Join(dir, "out", "lambelambe.pdf"),
		Verify:     true,
	}
}

var fixedNow = func() time.Time { return time.Date(2025, 10, 7, 2, 8, 13, 0, time.UTC) }

func TestAssemble(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	require.NoError(t, os.MkdirAll(cfg.CacheDir, 0o755))

	writePNG(t, filepath.Join(cfg.CacheDir, "Rami Ayyad.png"), 120, 160, true)
	writeJPEG(t, filepath.Join(cfg.CacheDir, "Mona Al-Sayed.jpg"), 300, 100)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.CacheDir, "Corrupt Image.jpg"), []byte("not a jpeg"), 0o644))

	records := []types.Journalist{
		{Name: "Rami Ayyad", Date: "October 7, 2023", Affiliation: "Al-Aqsa TV, Palestine Today", Location: "Gaza", Circumstances: "Crossfire", Row: 2},
		{Name: "No Photo Person", Date: "November 1, 2023", Row: 3},
		{Name: "Corrupt Image", Affiliation: "Freelance", Row: 4},
		{Name: "Mona Al-Sayed", Date: "December 2, 2023", Row: 5},
		{Name: "Jos\u00e9 Nu\u00f1ez", Row: 6},
	}

	var buf bytes.Buffer
	result, err := Assemble(context.Background(), Deps{Now: fixedNow}, records, cfg, &buf)
	require.NoError(t, err)

	require.Len(t, result.Pages, len(records))
	for i, p := range result.Pages {
		assert.Equal(t, records[i].Name, p.Name, "page %d out of order", i)
		assert.Equal(t, records[i].Row, p.Row)
	}
	assert.Equal(t, 2, result.WithImage)
	assert.Equal(t, 2, result.Exact)
	assert.Equal(t, 0, result.Matched)
	assert.Equal(t, 3, result.NoImage)

	assert.Equal(t, types.SourceExact, result.Pages[0].Source)
	assert.Equal(t, filepath.Join(cfg.CacheDir, "Rami Ayyad.png"), result.Pages[0].Image)
	assert.Equal(t, types.SourceNone, result.Pages[2].Source, "corrupt image degrades to text")

	n, err := CountPages(cfg.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, len(records), n)

	out := buf.String()
	assert.Contains(t, out, "[5/5] Adding page for")
	assert.Contains(t, out, "Error adding image for Corrupt Image")
	assert.Contains(t, out, "Pages with images: 2/5")
}

func TestAssembleNoImagesAtAll(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)

	records := []types.Journalist{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	result, err := Assemble(context.Background(), Deps{Now: fixedNow}, records, cfg, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.NoImage)

	n, err := CountPages(cfg.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

type stubFinder map[string]string

func (s stubFinder) Find(name string) (string, types.ImageSource, error) {
	if name == "Lookup Error" {
		return "", types.SourceNone, errors.New("confirmer closed")
	}
	if p, ok := s[name]; ok {
		return p, types.SourceMatched, nil
	}
	return "", types.SourceNone, nil
}

func TestAssembleWithFinder(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	require.NoError(t, os.MkdirAll(cfg.CacheDir, 0o755))
	img := filepath.Join(cfg.CacheDir, "Rami Ayad.png")
	writePNG(t, img, 40, 40, false)

	records := []types.Journalist{{Name: "Rami Ayyad"}, {Name: "Lookup Error"}}
	result, err := Assemble(context.Background(), Deps{Finder: stubFinder{"Rami Ayyad": img}, Now: fixedNow}, records, cfg, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 1, result.NoImage)
	assert.Equal(t, img, result.Pages[0].Image)
}

func TestAssembleTruncatesOverflowingText(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	require.NoError(t, os.MkdirAll(cfg.CacheDir, 0o755))
	writePNG(t, filepath.Join(cfg.CacheDir, "Long.png"), 50, 50, false)

	long := strings.Repeat("a long account of the circumstances ", 200)
	records := []types.Journalist{{Name: "Long", Circumstances: long}}

	result, err := Assemble(context.Background(), Deps{Now: fixedNow}, records, cfg, &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, result.Pages, 1)
	assert.True(t, result.Pages[0].Truncated)
	assert.Equal(t, types.SourceNone, result.Pages[0].Source, "no room left for the photo")
}

func TestAssembleErrors(t *testing.T) {
	t.Run("no records", func(t *testing.T) {
		_, err := Assemble(context.Background(), Deps{}, nil, testConfig(t.TempDir()), &bytes.Buffer{})
		assert.ErrorIs(t, err, ErrNoRecords)
	})

	t.Run("unwritable output", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

		cfg := testConfig(dir)
		cfg.OutputPath = filepath.Join(blocker, "out.pdf")
		_, err := Assemble(context.Background(), Deps{}, []types.Journalist{{Name: "A"}}, cfg, &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		cfg := testConfig(t.TempDir())
		_, err := Assemble(ctx, Deps{}, []types.Journalist{{Name: "A"}}, cfg, &bytes.Buffer{})
		assert.ErrorIs(t, err, context.Canceled)
		_, statErr := os.Stat(cfg.OutputPath)
		assert.True(t, os.IsNotExist(statErr), "no partial document is written")
	})

	t.Run("missing font file", func(t *testing.T) {
		cfg := testConfig(t.TempDir())
		cfg.FontFile = filepath.Join(t.TempDir(), "missing.ttf")
		_, err := Assemble(context.Background(), Deps{}, []types.Journalist{{Name: "A"}}, cfg, &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestLoadPhoto(t *testing.T) {
	dir := t.TempDir()

	small := filepath.Join(dir, "small.png")
	writePNG(t, small, 30, 20, true)
	p, err := loadPhoto(small)
	require.NoError(t, err)
	assert.Equal(t, 30, p.width)
	assert.Equal(t, 20, p.height)
	_, err = jpeg.Decode(bytes.NewReader(p.data))
	assert.NoError(t, err, "re-encoded as JPEG")

	big := filepath.Join(dir, "big.jpg")
	writeJPEG(t, big, 3200, 800)
	p, err = loadPhoto(big)
	require.NoError(t, err)
	assert.Equal(t, maxPixels, p.width)
	assert.Equal(t, 400, p.height)

	_, err = loadPhoto(filepath.Join(dir, "absent.jpg"))
	assert.Error(t, err)
}
