package downloader

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"goWayback/internal/config"
)

// ErrUnavailable — транспортная ошибка или пустой ответ
var ErrUnavailable = errors.New("resource unavailable")

type BodyKind int

const (
	KindText BodyKind = iota
	KindBinary
)

// Body — либо декодированный текст, либо сырые байты (картинки)
type Body struct {
	Kind BodyKind
	Text string
	Data []byte
}

type Downloader struct {
	client    *http.Client
	userAgent string
	log       *zap.Logger
}

func NewDownloader(cfg *config.Config, log *zap.Logger) *Downloader {
	ua := os.Getenv("USERAGENT")
	if ua == "" {
		ua = cfg.UserAgent
	}
	return &Downloader{
		client: &http.Client{
			Timeout: 60 * time.Second,
			// gzip от архива разбираем сами, по заголовку ответа
			Transport: &http.Transport{DisableCompression: true},
		},
		userAgent: ua,
		log:       log,
	}
}

// Fetch скачивает replay-URL и возвращает тело как текст или байты
func (d *Downloader) Fetch(rawURL string) (Body, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return Body{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return Body{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			d.log.Warn("error closing response body", zap.Error(cerr))
		}
	}()
	if resp.StatusCode >= 400 {
		return Body{}, fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "image") {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return Body{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if len(data) == 0 {
			return Body{}, fmt.Errorf("%w: empty body", ErrUnavailable)
		}
		return Body{Kind: KindBinary, Data: data}, nil
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return Body{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		defer func() {
			if cerr := gz.Close(); cerr != nil {
				d.log.Warn("error closing gzip reader", zap.Error(cerr))
			}
		}()
		reader = gz
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return Body{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(data) == 0 {
		return Body{}, fmt.Errorf("%w: empty body", ErrUnavailable)
	}
	return Body{Kind: KindText, Text: string(data)}, nil
}
