package subsource

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/glefebvre/cinevo/internal/config"
	"github.com/glefebvre/cinevo/internal/errors"
	"github.com/glefebvre/cinevo/internal/logger"
	"github.com/glefebvre/cinevo/internal/subtitle"
)

// Loader finds, downloads and parses subtitle tracks
type Loader struct {
	finder      Finder
	httpClient  *http.Client
	defaultLang string

	mu     sync.Mutex
	tracks map[string]*subtitle.Track
	logger *logger.Logger
}

// NewLoader creates a loader over finder
func NewLoader(finder Finder, defaultLang string, timeout time.Duration) *Loader {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if defaultLang == "" {
		defaultLang = "ar"
	}
	return &Loader{
		finder:      finder,
		httpClient:  &http.Client{Timeout: timeout},
		defaultLang: defaultLang,
		tracks:      make(map[string]*subtitle.Track),
		logger:      logger.AppLogger(),
	}
}

// NewLoaderFromConfig wires OpenSubtitles then SubDL, skipping services
// without an API key
func NewLoaderFromConfig(cfg config.SubtitlesConfig) *Loader {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	var finders []Finder
	if cfg.OpenSubtitlesAPIKey != "" {
		finders = append(finders, NewOpenSubtitles(ClientConfig{APIKey: cfg.OpenSubtitlesAPIKey, Timeout: timeout}))
	}
	if cfg.SubDLAPIKey != "" {
		finders = append(finders, NewSubDL(ClientConfig{APIKey: cfg.SubDLAPIKey, Timeout: timeout}))
	}

	return NewLoader(NewChain(finders...), cfg.DefaultLanguage, timeout)
}

// Load returns the subtitle track for an external id in lang. Tracks are
// kept after the first successful load.
func (l *Loader) Load(ctx context.Context, externalID, title, lang string) (*subtitle.Track, error) {
	if lang == "" {
		lang = l.defaultLang
	}
	lang = strings.ToLower(lang)
	key := externalID + "|" + title + "|" + lang

	l.mu.Lock()
	if track, ok := l.tracks[key]; ok {
		l.mu.Unlock()
		return track, nil
	}
	l.mu.Unlock()

	q := Query{ExternalID: externalID, Title: title, Language: lang}
	url, err := l.finder.Find(ctx, q)
	if err != nil {
		return nil, err
	}

	content, err := l.Download(ctx, url)
	if err != nil {
		return nil, err
	}

	track := subtitle.NewTrack(lang, content)
	if len(track.Cues) == 0 {
		l.logger.WithFields(map[string]interface{}{
			"external_id": externalID,
			"language":    lang,
			"url":         url,
		}).WarnContext(ctx, "subtitle file has no cues")
		return nil, notFound(q)
	}

	l.mu.Lock()
	l.tracks[key] = track
	l.mu.Unlock()

	l.logger.WithFields(map[string]interface{}{
		"external_id": externalID,
		"language":    lang,
		"cues":        len(track.Cues),
	}).InfoContext(ctx, "subtitle track loaded")

	return track, nil
}

// Download fetches a subtitle file. Zip archives are unpacked and the first
// .vtt or .srt entry is returned.
func (l *Loader) Download(ctx context.Context, url string) (string, error) {
	body, err := get(ctx, l.httpClient, "subtitle-download", url, nil)
	if err != nil {
		return "", err
	}

	if !bytes.HasPrefix(body, []byte("PK\x03\x04")) {
		return string(body), nil
	}
	return fromArchive(body)
}

func fromArchive(body []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", errors.ParseError("invalid subtitle archive", err)
	}

	for _, f := range zr.File {
		ext := strings.ToLower(path.Ext(f.Name))
		if ext != ".vtt" && ext != ".srt" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", errors.ParseError("failed to open archive entry", err)
		}
		data, err := io.ReadAll(io.LimitReader(rc, maxResponseSize))
		rc.Close()
		if err != nil {
			return "", errors.ParseError("failed to read archive entry", err)
		}
		return string(data), nil
	}
	return "", errors.New(errors.CodeMalformedData, "subtitle archive has no subtitle file")
}
