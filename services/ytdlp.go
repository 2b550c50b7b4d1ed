// Package services integrates with yt-dlp, the external extraction and
// download collaborator. Probing and downloading both shell out to the
// binary and read its JSON output; the selector-string grammar belongs to
// yt-dlp, this package only ever asks for "best audio", "best video at an
// exact height merged with best audio", or "generic best".
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mediaBot/config"
)

// Kind selects between the two deliverable flavors.
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

const (
	probeTimeout    = 2 * time.Minute
	downloadTimeout = 10 * time.Minute
)

// FormatInfo is one stream variant reported by yt-dlp. Only Height matters
// for menu building; the rest is kept for logging.
type FormatInfo struct {
	ID       string  `json:"format_id"`
	Ext      string  `json:"ext"`
	Height   int     `json:"height"`
	VCodec   string  `json:"vcodec"`
	ACodec   string  `json:"acodec"`
	Filesize float64 `json:"filesize"`
}

// MediaInfo is the metadata for one piece of media, resolved per request and
// discarded once the menu is sent. A later download re-resolves everything
// from the content identifier.
type MediaInfo struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Thumbnail string       `json:"thumbnail"`
	Duration  float64      `json:"duration"`
	Formats   []FormatInfo `json:"formats"`
}

// DownloadRequest is reconstructed entirely from a button payload.
type DownloadRequest struct {
	Kind    Kind
	VideoID string
	Height  int // video only
}

// DownloadResult points at the produced local file. The caller owns the file
// and must delete it once the upload has been attempted.
type DownloadResult struct {
	Path  string
	Title string
}

// downloadInfo is the JSON yt-dlp prints after a download run.
type downloadInfo struct {
	MediaInfo
	Ext                string `json:"ext"`
	RequestedDownloads []struct {
		Filepath string `json:"filepath"`
	} `json:"requested_downloads"`
}

// WatchURL reconstructs the canonical URL for a content identifier. Button
// payloads carry only the identifier, never the original link.
func WatchURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
}

// YtDlpService wraps the yt-dlp binary.
type YtDlpService struct {
	binary      string
	downloadDir string
	proxy       *config.ProxyConfig
	log         zerolog.Logger
}

func NewYtDlpService(downloadDir string, proxy *config.ProxyConfig, log zerolog.Logger) *YtDlpService {
	return &YtDlpService{
		binary:      findYtDlp(),
		downloadDir: downloadDir,
		proxy:       proxy,
		log:         log.With().Str("component", "ytdlp").Logger(),
	}
}

func findYtDlp() string {
	if _, err := exec.LookPath("/usr/local/bin/yt-dlp"); err == nil {
		return "/usr/local/bin/yt-dlp"
	}
	return "yt-dlp"
}

// CheckBinary verifies that yt-dlp is actually runnable. Called once at
// startup; a missing binary is a fatal misconfiguration.
func (s *YtDlpService) CheckBinary() error {
	if _, err := exec.LookPath(s.binary); err != nil {
		return fmt.Errorf("yt-dlp not found: %w", err)
	}
	return nil
}

// Probe resolves metadata for a URL without downloading any media bytes.
func (s *YtDlpService) Probe(ctx context.Context, url string) (*MediaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	args := []string{
		"--dump-single-json",
		"--no-playlist",
		"--no-warnings",
		"--quiet",
	}
	args = append(args, s.proxy.YtDlpArgs()...)
	args = append(args, url)

	out, err := s.run(ctx, args)
	if err != nil {
		return nil, err
	}

	info, err := parseMediaInfo(out)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("id", info.ID).Str("title", info.Title).
		Int("formats", len(info.Formats)).Msg("probed link")
	return info, nil
}

// Download fetches the selected format and returns the produced file. File
// names are deterministic per {id, height} so concurrent downloads of
// different selections never collide.
func (s *YtDlpService) Download(ctx context.Context, req DownloadRequest) (*DownloadResult, error) {
	if err := os.MkdirAll(s.downloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}

	args, err := s.downloadArgs(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	out, err := s.run(ctx, args)
	if err != nil {
		return nil, err
	}

	var info downloadInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("parse download result: %w", err)
	}

	path := s.resultPath(req, &info)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("downloaded file not found: %w", err)
	}

	title := info.Title
	if title == "" {
		if req.Kind == KindAudio {
			title = "Audio"
		} else {
			title = "Video"
		}
	}

	s.log.Info().Str("id", req.VideoID).Str("kind", string(req.Kind)).
		Str("path", path).Msg("download finished")
	return &DownloadResult{Path: path, Title: title}, nil
}

// downloadArgs builds the yt-dlp invocation for a request. Audio asks for the
// best audio-only stream transcoded to mp3 at 192 kbit/s; video asks for the
// best stream at the exact offered height merged with best audio into mp4,
// falling back to yt-dlp's generic best selection when no stream matches.
func (s *YtDlpService) downloadArgs(req DownloadRequest) ([]string, error) {
	args := []string{
		"--dump-single-json",
		"--no-simulate",
		"--no-playlist",
		"--no-warnings",
		"--quiet",
		"--force-overwrites",
	}

	switch req.Kind {
	case KindAudio:
		args = append(args,
			"--format", "bestaudio/best",
			"--extract-audio",
			"--audio-format", "mp3",
			"--audio-quality", "192K",
			"--output", filepath.Join(s.downloadDir, "%(id)s.%(ext)s"),
		)
	case KindVideo:
		selector := fmt.Sprintf("bestvideo[height=%d]+bestaudio/best[height=%d]/best", req.Height, req.Height)
		args = append(args,
			"--format", selector,
			"--merge-output-format", "mp4",
			"--output", filepath.Join(s.downloadDir, fmt.Sprintf("%%(id)s_%d.%%(ext)s", req.Height)),
		)
	default:
		return nil, fmt.Errorf("unknown download kind %q", req.Kind)
	}

	args = append(args, s.proxy.YtDlpArgs()...)
	args = append(args, WatchURL(req.VideoID))
	return args, nil
}

// resultPath locates the produced file. yt-dlp normally reports it under
// requested_downloads; when that is absent the expected name is rebuilt from
// the output template. The audio branch assumes the mp3 post-processor ran
// and rewrites the extension accordingly, which can disagree with the real
// file for exotic sources.
func (s *YtDlpService) resultPath(req DownloadRequest, info *downloadInfo) string {
	if len(info.RequestedDownloads) > 0 && info.RequestedDownloads[0].Filepath != "" {
		return info.RequestedDownloads[0].Filepath
	}

	id := info.ID
	if id == "" {
		id = req.VideoID
	}

	if req.Kind == KindAudio {
		return filepath.Join(s.downloadDir, id+".mp3")
	}

	ext := info.Ext
	if ext == "" {
		ext = "mp4"
	}
	return filepath.Join(s.downloadDir, fmt.Sprintf("%s_%d.%s", id, req.Height, ext))
}

func (s *YtDlpService) run(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, s.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.log.Debug().Strs("args", args).Msg("running yt-dlp")
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("yt-dlp timed out")
		}
		msg := lastLine(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("yt-dlp: %s", msg)
	}

	return stdout.Bytes(), nil
}

func parseMediaInfo(data []byte) (*MediaInfo, error) {
	var info MediaInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	if info.ID == "" {
		return nil, fmt.Errorf("metadata has no content id")
	}
	if info.Title == "" {
		info.Title = "Unknown Title"
	}
	return &info, nil
}

// lastLine picks the final non-empty line, which is where yt-dlp puts the
// actual error.
func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
