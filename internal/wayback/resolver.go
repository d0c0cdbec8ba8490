package wayback

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"goWayback/internal/config"
)

// ErrNoSnapshot — в архиве нет пригодного снапшота для пути
var ErrNoSnapshot = errors.New("no snapshot available")

// Resolver спрашивает у wayback availability API ближайший к опорной дате
// снапшот страницы. https://archive.org/help/wayback_api.php
type Resolver struct {
	client *http.Client
	cfg    *config.Config
	log    *zap.Logger
}

func NewResolver(cfg *config.Config, log *zap.Logger) *Resolver {
	return &Resolver{
		client: &http.Client{Timeout: 30 * time.Second},
		cfg:    cfg,
		log:    log,
	}
}

type closestSnapshot struct {
	Available bool   `json:"available"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
}

type availabilityResponse struct {
	ArchivedSnapshots struct {
		Closest *closestSnapshot `json:"closest"`
	} `json:"archived_snapshots"`
}

// Resolve возвращает replay-URL снапшота или ErrNoSnapshot.
// urlSuffix дописывается к запрашиваемому адресу (например "?do=edit")
func (r *Resolver) Resolve(path string, urlSuffix string) (string, error) {
	q := url.Values{}
	q.Set("timestamp", r.cfg.Timestamp)
	q.Set("url", r.cfg.BaseURL+"/"+path+urlSuffix)

	resp, err := r.client.Get(r.cfg.AvailabilityURL + "?" + q.Encode())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoSnapshot, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			r.log.Warn("error closing response body", zap.Error(cerr))
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: availability HTTP %d", ErrNoSnapshot, resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoSnapshot, err)
	}
	var a availabilityResponse
	if err := json.Unmarshal(b, &a); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoSnapshot, err)
	}

	closest := a.ArchivedSnapshots.Closest
	if closest == nil || !closest.Available || closest.Status != "200" {
		return "", ErrNoSnapshot
	}
	if ts, err := time.Parse("20060102150405", closest.Timestamp); err == nil {
		r.log.Info("snapshot resolved", zap.String("path", path), zap.Time("timestamp", ts))
	}
	return insertID(closest.URL), nil
}

// insertID помечает сегмент таймстампа маркером id_ —
// архив тогда отдаёт страницу как есть, без своей обвязки
func insertID(replayURL string) string {
	parts := strings.Split(replayURL, "/")
	if len(parts) < 5 {
		return replayURL
	}
	parts[4] += "id_"
	return strings.Join(parts, "/")
}
