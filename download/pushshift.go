package download

// Monthly submission dumps are named RS_YYYY-MM with one of a few compression
// suffixes depending on the archive era. The downloader tries each suffix in
// turn and keeps whatever the archive still serves.
import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"github.com/hollowlog/reddit-harvester/logger"
)

var dumpExtensions = []string{".zst", ".xz", ".gz"}

type Downloader struct {
	DataDir string
	BaseURL string
	client  *http.Client
}

func NewDownloader(dataDir, baseURL string) (*Downloader, error) {
	if err := os.MkdirAll(dataDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create dump directory: %w", err)
	}
	return &Downloader{
		DataDir: dataDir,
		BaseURL: baseURL,
		client:  &http.Client{},
	}, nil
}

// AvailableMonths lists the YYYY-MM dump names covering the lookback window,
// newest first, using 30-day months like the timeframe cutoff.
func AvailableMonths(monthsBack int) []string {
	return monthsBefore(time.Now(), monthsBack)
}

func monthsBefore(now time.Time, monthsBack int) []string {
	months := make([]string, 0, monthsBack)
	for i := 0; i < monthsBack; i++ {
		target := now.Add(-time.Duration(i) * 30 * 24 * time.Hour)
		months = append(months, target.Format("2006-01"))
	}
	return months
}

// DownloadMonth fetches one month's dump, trying each known compression
// suffix. An already-downloaded file is reused as-is; downloads are not
// resumable.
func (d *Downloader) DownloadMonth(month string) (string, error) {
	for _, ext := range dumpExtensions {
		filename := fmt.Sprintf("RS_%s.json%s", month, ext)
		localPath := filepath.Join(d.DataDir, filename)

		if info, err := os.Stat(localPath); err == nil {
			logger.Logger.Printf("File already exists: %s (%s)", localPath, humanize.Bytes(uint64(info.Size())))
			return localPath, nil
		}

		url := d.BaseURL + filename
		if err := d.downloadFile(url, localPath); err != nil {
			logger.Logger.Printf("Failed to download %s: %v", url, err)
			continue
		}
		return localPath, nil
	}

	return "", fmt.Errorf("could not download dump for month %s", month)
}

func (d *Downloader) downloadFile(url, localPath string) error {
	logger.Logger.Printf("Downloading %s", url)

	resp, err := d.client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status code %d", resp.StatusCode)
	}

	out, err := os.Create(localPath)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions64(resp.ContentLength,
		progressbar.OptionSetDescription(filepath.Base(localPath)),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(65*time.Millisecond),
	)

	_, err = io.Copy(io.MultiWriter(out, bar), resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// No partial files: a failed transfer should not look downloaded
		// on the next run.
		os.Remove(localPath)
		return err
	}

	logger.Logger.Printf("Downloaded %s", localPath)
	return nil
}
