package mirror

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"goWayback/internal/config"
	"goWayback/internal/downloader"
)

// Writer кладёт выгруженные страницы в дерево, повторяющее пути вики
type Writer struct {
	root string
	log  *zap.Logger
}

func NewWriter(cfg *config.Config, log *zap.Logger) *Writer {
	return &Writer{root: cfg.OutDir, log: log}
}

func (w *Writer) Root() string { return w.root }

// PathFor переводит логический путь вики в путь на диске
func (w *Writer) PathFor(logical string, fileSuffix string) string {
	if fileSuffix != "" {
		logical = logical + "." + fileSuffix
	}
	return filepath.Join(w.root, filepath.FromSlash(logical))
}

// Exists — страница (или что угодно по этому пути) уже на диске
func (w *Writer) Exists(logical string, fileSuffix string) bool {
	_, err := os.Lstat(w.PathFor(logical, fileSuffix))
	return err == nil
}

// renameIfCollision: родительский каталог уже занят файлом —
// переносим файл в "_<имя>" уровнем выше, содержимое не теряем
func (w *Writer) renameIfCollision(local string) error {
	parent := filepath.Dir(local)
	info, err := os.Stat(parent)
	if err != nil || info.IsDir() {
		return nil
	}
	moved := filepath.Join(filepath.Dir(parent), "_"+filepath.Base(parent))
	w.log.Warn("parent is already a file, renaming",
		zap.String("file", parent), zap.String("to", moved))
	return os.Rename(parent, moved)
}

func (w *Writer) Write(local string, body downloader.Body) error {
	if err := w.renameIfCollision(local); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(local), 0755); err != nil {
		return err
	}
	switch body.Kind {
	case downloader.KindText:
		return os.WriteFile(local, []byte(body.Text), 0644)
	case downloader.KindBinary:
		return os.WriteFile(local, body.Data, 0644)
	default:
		return fmt.Errorf("unknown body kind %d", body.Kind)
	}
}

// LinkIndex создаёт в корне симлинк index.html на стартовую страницу
func (w *Writer) LinkIndex(target string) error {
	link := filepath.Join(w.root, "index.html")
	if _, err := os.Lstat(link); err == nil {
		return nil
	}
	rel, err := filepath.Rel(w.root, target)
	if err != nil {
		rel = target
	}
	return os.Symlink(rel, link)
}
