package level

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/marble-maze/internal/logger"
)

// DefaultSource is the level document read when nothing else is configured.
const DefaultSource = "./level_data.json"

// maxDocumentSize bounds how much of a level document is read.
const maxDocumentSize = 4 << 20

// ErrUnsupportedFormat is returned for documents that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported level format")

// Options tunes a single load attempt.
type Options struct {
	Timeout time.Duration
	Client  *http.Client // nil uses http.DefaultClient
}

// Load reads and parses the level document at source, which is either a file
// path or an http(s) URL. It makes exactly one attempt.
func Load(ctx context.Context, source string, opts Options) (*Descriptor, error) {
	if source == "" {
		source = DefaultSource
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var (
		data []byte
		name string
		err  error
	)
	if isURL(source) {
		data, name, err = fetch(ctx, source, opts.Client)
	} else {
		name = source
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("reading level %s: %w", source, err)
	}

	d, err := Parse(data, path.Ext(strings.ToLower(name)))
	if err != nil {
		return nil, fmt.Errorf("parsing level %s: %w", source, err)
	}
	return d, nil
}

// LoadOrDefault is Load that never fails: any error is logged and an empty
// descriptor (all defaults) is returned.
func LoadOrDefault(ctx context.Context, source string, opts Options) *Descriptor {
	d, err := Load(ctx, source, opts)
	if err != nil {
		logger.Warn("level document unavailable, using built-in level",
			zap.String("source", source),
			zap.Error(err),
		)
		return &Descriptor{}
	}
	logger.Info("level document loaded",
		zap.String("source", source),
		zap.Bool("ball", d.Ball != nil),
		zap.Bool("bottom", d.Bottom != nil),
		zap.Int("holes", len(d.Holes)),
		zap.Int("walls", len(d.Walls)),
	)
	return d
}

// Parse decodes a level document. ext selects the format (".json", ".yaml",
// ".yml"); an empty ext is treated as JSON. A leading UTF-8 byte order mark
// is ignored.
func Parse(data []byte, ext string) (*Descriptor, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	var d Descriptor
	switch ext {
	case ".json", "":
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}
	return &d, nil
}

var utf8BOM = []byte("\xef\xbb\xbf")

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// fetch performs one uncached GET and returns the body and the URL path.
func fetch(ctx context.Context, source string, client *http.Client) ([]byte, string, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, "", err
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Cache-Control", "no-store, no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, "", err
	}
	return data, u.Path, nil
}
