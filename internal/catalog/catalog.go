// Package catalog keeps a local TLE catalog file in sync with CelesTrak.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cavaliergopher/grab/v3"

	"github.com/signalsfoundry/orbit-frames/internal/logging"
	"github.com/signalsfoundry/orbit-frames/tle"
)

// DefaultURL serves every active satellite in three-line TLE form.
const DefaultURL = "https://celestrak.org/NORAD/elements/gp.php?GROUP=active&FORMAT=tle"

const userAgent = "orbit-frames-catalog/1.0"

var (
	// ErrEmptyCatalog is returned when a download decodes to no records.
	// The existing catalog is left untouched.
	ErrEmptyCatalog = errors.New("catalog: download contains no usable TLE records")
	// ErrDownload wraps transport and HTTP status failures.
	ErrDownload = errors.New("catalog: download failed")
)

// Recorder receives update outcomes. observability.CatalogCollector
// implements it.
type Recorder interface {
	ObserveDownload(d time.Duration)
	RecordUpdate(result string, records int, at time.Time)
}

// Updater downloads a catalog, validates it and installs it at Path,
// keeping the previous file at BackupPath.
type Updater struct {
	URL        string
	Path       string
	BackupPath string

	Client  *grab.Client
	Parser  *tle.Parser
	Log     logging.Logger
	Metrics Recorder
	Now     func() time.Time
}

// Summary describes an installed catalog.
type Summary struct {
	Records   int
	Failures  int
	Bytes     int64
	BackedUp  bool
	UpdatedAt time.Time
}

// Update performs one refresh.
func (u *Updater) Update(ctx context.Context) (Summary, error) {
	ctx, log := logging.WithBatchLogger(ctx, u.Log)
	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	url := u.URL
	if url == "" {
		url = DefaultURL
	}

	log.Info(ctx, "downloading catalog", logging.String("url", url))
	start := time.Now()
	data, err := u.download(ctx, url)
	u.observeDownload(time.Since(start))
	if err != nil {
		u.record("download_error", 0, time.Time{})
		return Summary{}, err
	}

	parser := u.Parser
	if parser == nil {
		parser = tle.NewParser(tle.WithLogger(log))
	}
	res, err := parser.ParseReader(ctx, bytes.NewReader(data))
	if err != nil {
		u.record("rejected", 0, time.Time{})
		return Summary{}, fmt.Errorf("catalog: %w", err)
	}
	if len(res.Records) == 0 {
		u.record("rejected", 0, time.Time{})
		return Summary{}, ErrEmptyCatalog
	}

	sum := Summary{
		Records:   len(res.Records),
		Failures:  len(res.Failures),
		Bytes:     int64(len(data)),
		UpdatedAt: now().UTC(),
	}

	if u.BackupPath != "" {
		backedUp, err := copyIfExists(u.Path, u.BackupPath)
		if err != nil {
			u.record("write_error", 0, time.Time{})
			return Summary{}, fmt.Errorf("catalog: backup: %w", err)
		}
		if backedUp {
			log.Info(ctx, "backed up previous catalog", logging.String("path", u.BackupPath))
		}
		sum.BackedUp = backedUp
	}

	contents := header(url, sum) + string(data)
	if err := writeAtomic(u.Path, []byte(contents)); err != nil {
		u.record("write_error", 0, time.Time{})
		return Summary{}, fmt.Errorf("catalog: write: %w", err)
	}

	u.record("ok", sum.Records, sum.UpdatedAt)
	log.Info(ctx, "catalog updated",
		logging.String("path", u.Path),
		logging.Int("records", sum.Records),
		logging.Int("skipped", sum.Failures),
	)
	return sum, nil
}

func (u *Updater) download(ctx context.Context, url string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "catalog-download-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer os.RemoveAll(dir)

	req, err := grab.NewRequest(filepath.Join(dir, "catalog.tle"), url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	req = req.WithContext(ctx)
	req.HTTPRequest.Header.Set("Accept", "text/plain")

	client := u.Client
	if client == nil {
		client = grab.NewClient()
		client.UserAgent = userAgent
	}
	resp := client.Do(req)
	if err := resp.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	data, err := os.ReadFile(resp.Filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	return data, nil
}

func (u *Updater) observeDownload(d time.Duration) {
	if u.Metrics != nil {
		u.Metrics.ObserveDownload(d)
	}
}

func (u *Updater) record(result string, records int, at time.Time) {
	if u.Metrics != nil {
		u.Metrics.RecordUpdate(result, records, at)
	}
}

// header renders the comment block written above the raw data. The
// parser skips these lines.
func header(url string, sum Summary) string {
	var b strings.Builder
	b.WriteString("# Satellite Catalog - Active Satellites\n")
	fmt.Fprintf(&b, "# Updated: %s\n", sum.UpdatedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "# Source: %s\n", url)
	b.WriteString("# Format: TLE (Two-Line Elements)\n")
	fmt.Fprintf(&b, "# Satellites: %d\n\n", sum.Records)
	return b.String()
}

func copyIfExists(src, dst string) (bool, error) {
	data, err := os.ReadFile(src)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, writeAtomic(dst, data)
}

// writeAtomic writes data next to path and renames it into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load decodes a catalog file.
func Load(ctx context.Context, parser *tle.Parser, path string) (tle.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return tle.Result{}, fmt.Errorf("catalog: %w", err)
	}
	defer f.Close()
	if parser == nil {
		parser = tle.NewParser()
	}
	return parser.ParseReader(ctx, f)
}
