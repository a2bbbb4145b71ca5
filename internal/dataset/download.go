package dataset

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
)

var (
	ErrAllMirrorsFailed   = errors.New("all mirrors failed")
	ErrUnsupportedArchive = errors.New("unsupported archive type")
	ErrUnsafePath         = errors.New("archive entry escapes destination")
)

// Downloader fetches dataset archives and pair files
type Downloader struct {
	httpClient *http.Client
	logger     *slog.Logger
	progress   io.Writer
}

// NewDownloader creates a downloader. Progress bars are drawn on progress;
// nil disables them.
func NewDownloader(logger *slog.Logger, progress io.Writer) *Downloader {
	if progress == nil {
		progress = io.Discard
	}
	return &Downloader{
		httpClient: &http.Client{Timeout: 30 * time.Minute},
		logger:     logger,
		progress:   progress,
	}
}

// Download fetches the dataset archive from the first working mirror,
// extracts it under the catalogue root and fetches the pairs file.
func (d *Downloader) Download(ctx context.Context, c *Catalog, ds Dataset) error {
	if len(ds.Mirrors) == 0 {
		return fmt.Errorf("dataset %s has no download mirrors", ds.Name)
	}

	if err := os.MkdirAll(c.Root, 0o755); err != nil {
		return fmt.Errorf("create dataset root: %w", err)
	}

	archive, err := d.FetchFirst(ctx, ds.Mirrors, filepath.Join(c.Root, ds.Name+archiveExt(ds.Mirrors[0])))
	if err != nil {
		return fmt.Errorf("download %s: %w", ds.Name, err)
	}

	d.logger.Info("extracting archive", slog.String("archive", archive), slog.String("dest", c.Root))
	if err := Extract(archive, c.Root); err != nil {
		return fmt.Errorf("extract %s: %w", ds.Name, err)
	}

	if ds.PairsURL != "" {
		if err := os.MkdirAll(filepath.Dir(ds.PairsFile), 0o755); err != nil {
			return fmt.Errorf("create pairs dir: %w", err)
		}
		if err := d.Fetch(ctx, ds.PairsURL, ds.PairsFile); err != nil {
			return fmt.Errorf("download %s pairs: %w", ds.Name, err)
		}
	}

	return nil
}

// FetchFirst tries each url in order and returns the path written
func (d *Downloader) FetchFirst(ctx context.Context, urls []string, dest string) (string, error) {
	var errs []error
	for _, u := range urls {
		err := d.Fetch(ctx, u, dest)
		if err == nil {
			return dest, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		d.logger.Warn("mirror failed", slog.String("url", u), slog.Any("error", err))
		errs = append(errs, err)
	}
	return "", fmt.Errorf("%w: %w", ErrAllMirrorsFailed, errors.Join(errs...))
}

// Fetch downloads url to dest through a temporary file
func (d *Downloader) Fetch(ctx context.Context, url, dest string) error {
	d.logger.Info("downloading", slog.String("url", url), slog.String("dest", dest))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	bar := progressbar.NewOptions64(resp.ContentLength,
		progressbar.OptionSetDescription(filepath.Base(dest)),
		progressbar.OptionSetWriter(d.progress),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)

	_, err = io.Copy(io.MultiWriter(tmp, bar), resp.Body)
	_ = bar.Finish()
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("move download into place: %w", err)
	}
	return nil
}

func archiveExt(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"):
		return ".tar.gz"
	case strings.HasSuffix(lower, ".zip"):
		return ".zip"
	default:
		return ".tgz"
	}
}

// Extract unpacks a .tgz, .tar.gz or .zip archive into dest. Entries that
// would land outside dest are rejected.
func Extract(archive, dest string) error {
	lower := strings.ToLower(archive)
	switch {
	case strings.HasSuffix(lower, ".tgz"), strings.HasSuffix(lower, ".tar.gz"):
		return extractTarGz(archive, dest)
	case strings.HasSuffix(lower, ".zip"):
		return extractZip(archive, dest)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedArchive, filepath.Base(archive))
	}
}

// safeJoin resolves name under dest and refuses anything that escapes it
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

func extractTarGz(archive, dest string) error {
	f, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("read gzip: %w", err)
	}
	defer func() {
		_ = gz.Close()
	}()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar: %w", err)
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create dir: %w", err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr); err != nil {
				return err
			}
		default:
			// links and devices are not part of any supported dataset
		}
	}
}

func extractZip(archive, dest string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer func() {
		_ = zr.Close()
	}()

	for _, zf := range zr.File {
		target, err := safeJoin(dest, zf.Name)
		if err != nil {
			return err
		}

		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create dir: %w", err)
			}
			continue
		}

		rc, err := zf.Open()
		if err != nil {
			return fmt.Errorf("open %s: %w", zf.Name, err)
		}
		err = writeFile(target, rc)
		_ = rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func writeFile(target string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	return out.Close()
}
