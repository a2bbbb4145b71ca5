package dataset

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, body := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(body)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func zipArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	files := map[string]string{
		"lfw/Aaron_Peirsol/Aaron_Peirsol_0001.jpg": "a",
		"lfw/Aaron_Peirsol/Aaron_Peirsol_0002.jpg": "b",
	}

	tests := []struct {
		name    string
		archive string
		data    []byte
	}{
		{name: "tgz", archive: "lfw.tgz", data: tarGz(t, files)},
		{name: "tar.gz", archive: "lfw.tar.gz", data: tarGz(t, files)},
		{name: "zip", archive: "lfw.zip", data: zipArchive(t, files)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			archive := filepath.Join(dir, tt.archive)
			require.NoError(t, os.WriteFile(archive, tt.data, 0o600))

			dest := filepath.Join(dir, "out")
			require.NoError(t, Extract(archive, dest))

			got, err := os.ReadFile(filepath.Join(dest, "lfw", "Aaron_Peirsol", "Aaron_Peirsol_0002.jpg"))
			require.NoError(t, err)
			assert.Equal(t, "b", string(got))
		})
	}
}

func TestExtract_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()

	for name, data := range map[string][]byte{
		"evil.tgz": tarGz(t, map[string]string{"../escape.txt": "x"}),
		"evil.zip": zipArchive(t, map[string]string{"../../escape.txt": "x"}),
	} {
		archive := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(archive, data, 0o600))

		err := Extract(archive, filepath.Join(dir, "out"))
		assert.ErrorIs(t, err, ErrUnsafePath, name)
	}

	_, err := os.Stat(filepath.Join(dir, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtract_Unsupported(t *testing.T) {
	err := Extract("dataset.rar", t.TempDir())
	assert.ErrorIs(t, err, ErrUnsupportedArchive)
}

func TestSafeJoin(t *testing.T) {
	dest := filepath.Join("tmp", "root")

	tests := []struct {
		name    string
		wantErr bool
	}{
		{name: "lfw/a.jpg"},
		{name: "./lfw/../lfw/a.jpg"},
		{name: "../a.jpg", wantErr: true},
		{name: "lfw/../../a.jpg", wantErr: true},
		{name: "/etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		_, err := safeJoin(dest, tt.name)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnsafePath, tt.name)
		} else {
			assert.NoError(t, err, tt.name)
		}
	}
}

func TestDownloader_Download(t *testing.T) {
	archive := tarGz(t, map[string]string{"lfw/Ann/Ann_0001.jpg": "img"})

	mux := http.NewServeMux()
	mux.HandleFunc("/broken/lfw.tgz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/mirror/lfw.tgz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	})
	mux.HandleFunc("/pairs.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("10\t300\n"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	root := t.TempDir()
	c, err := NewCatalog(root, []Dataset{{
		Name:      "lfw",
		PairsFile: "lfw/pairs.txt",
		ImagesDir: "lfw",
		Format:    "lfw",
		Mirrors:   []string{server.URL + "/broken/lfw.tgz", server.URL + "/mirror/lfw.tgz"},
		PairsURL:  server.URL + "/pairs.txt",
	}})
	require.NoError(t, err)

	ds, err := c.Get("lfw")
	require.NoError(t, err)

	require.NoError(t, NewDownloader(discardLogger(), nil).Download(context.Background(), c, ds))

	img, err := os.ReadFile(filepath.Join(root, "lfw", "Ann", "Ann_0001.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(img))

	pairsTxt, err := os.ReadFile(ds.PairsFile)
	require.NoError(t, err)
	assert.Equal(t, "10\t300\n", string(pairsTxt))

	st, err := Check(ds)
	require.NoError(t, err)
	assert.True(t, st.Present)
	assert.True(t, st.PairsFound)
	assert.Equal(t, 2, st.Files)
}

func TestDownloader_AllMirrorsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "lfw.tgz")
	_, err := NewDownloader(discardLogger(), nil).FetchFirst(context.Background(),
		[]string{server.URL + "/a", server.URL + "/b"}, dest)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllMirrorsFailed)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownloader_NoMirrors(t *testing.T) {
	c, err := NewCatalog(t.TempDir(), []Dataset{{Name: "calfw"}})
	require.NoError(t, err)
	ds, _ := c.Get("calfw")

	err = NewDownloader(discardLogger(), nil).Download(context.Background(), c, ds)
	assert.ErrorContains(t, err, "no download mirrors")
}
