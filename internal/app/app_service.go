package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"goWayback/internal/config"
	"goWayback/internal/downloader"
	"goWayback/internal/mirror"
	"goWayback/internal/parser"
	"goWayback/internal/wayback"
)

const (
	editSuffix = "?do=edit"
	mdSuffix   = "md"
)

// Exporter гоняет экспорт до сходимости: пока у выгруженных страниц
// находятся ссылки на ещё не выгруженные — выгружаем и сканируем заново
type Exporter struct {
	cfg      *config.Config
	log      *zap.Logger
	resolver *wayback.Resolver
	fetcher  *downloader.Downloader
	writer   *mirror.Writer
}

func NewExporter(cfg *config.Config, log *zap.Logger, resolver *wayback.Resolver,
	fetcher *downloader.Downloader, writer *mirror.Writer) *Exporter {
	return &Exporter{
		cfg:      cfg,
		log:      log,
		resolver: resolver,
		fetcher:  fetcher,
		writer:   writer,
	}
}

// Run выгружает сначала html-граф, затем граф вики-разметки
func (e *Exporter) Run() error {
	if err := e.runHTML(); err != nil {
		return err
	}
	return e.runMD()
}

// exportPath: снапшот -> тело -> файл. Возвращает путь записанного файла
func (e *Exporter) exportPath(path, urlSuffix, fileSuffix string) (string, error) {
	replayURL, err := e.resolver.Resolve(path, urlSuffix)
	if err != nil {
		return "", err
	}
	body, err := e.fetcher.Fetch(replayURL)
	if err != nil {
		return "", err
	}
	if fileSuffix == mdSuffix && body.Kind == downloader.KindText {
		// страница редактирования: оставляем только разметку из textarea
		text, err := parser.EditText(body.Text)
		if err != nil {
			return "", err
		}
		body = downloader.Body{Kind: downloader.KindText, Text: text}
	}
	local := e.writer.PathFor(path, fileSuffix)
	if err := e.writer.Write(local, body); err != nil {
		return "", err
	}
	return local, nil
}

func (e *Exporter) runHTML() error {
	if err := e.commentOutPageTools(); err != nil {
		return err
	}
	if !e.writer.Exists(e.cfg.StartPage, "") {
		if _, err := e.exportPath(e.cfg.StartPage, "", ""); err != nil {
			if !IsUnavailable(err) {
				return err
			}
			e.log.Error("start page unavailable", zap.Error(err))
		}
	}
	if e.writer.Exists(e.cfg.StartPage, "") {
		if err := e.writer.LinkIndex(e.writer.PathFor(e.cfg.StartPage, "")); err != nil {
			return err
		}
	}
	for pass := 1; ; pass++ {
		frontier, err := e.htmlFrontier()
		if err != nil {
			return err
		}
		if len(frontier) == 0 {
			e.log.Info("html graph converged", zap.Int("passes", pass-1))
			return nil
		}
		if pass > e.cfg.HTML.MaxPasses {
			e.log.Warn("pass ceiling reached before convergence",
				zap.Int("ceiling", e.cfg.HTML.MaxPasses), zap.Int("frontier", len(frontier)))
			return nil
		}
		e.log.Info("will export", zap.Int("pass", pass), zap.Strings("paths", frontier))
		for _, p := range frontier {
			if _, err := e.exportPath(p, "", ""); err != nil {
				if !IsUnavailable(err) {
					return err
				}
				e.log.Error("skip", zap.String("path", p), zap.Error(err))
			}
			time.Sleep(time.Duration(e.cfg.HTML.DelaySeconds) * time.Second)
		}
	}
}

func (e *Exporter) runMD() error {
	if !e.writer.Exists(e.cfg.StartPage, mdSuffix) {
		if _, err := e.exportPath(e.cfg.StartPage, editSuffix, mdSuffix); err != nil {
			if !IsUnavailable(err) {
				return err
			}
			e.log.Error("start page markup unavailable", zap.Error(err))
		}
	}
	for pass := 1; ; pass++ {
		frontier, err := e.mdFrontier()
		if err != nil {
			return err
		}
		if len(frontier) == 0 {
			e.log.Info("markup graph converged", zap.Int("passes", pass-1))
			return nil
		}
		if pass > e.cfg.MD.MaxPasses {
			e.log.Warn("pass ceiling reached before convergence",
				zap.Int("ceiling", e.cfg.MD.MaxPasses), zap.Int("frontier", len(frontier)))
			return nil
		}
		e.log.Info("will export", zap.Int("pass", pass), zap.Strings("paths", frontier))
		for _, p := range frontier {
			if _, err := e.exportPath(p, editSuffix, mdSuffix); err != nil {
				if !IsUnavailable(err) {
					return err
				}
				e.log.Error("skip", zap.String("path", p), zap.Error(err))
			}
			time.Sleep(time.Duration(e.cfg.MD.DelaySeconds) * time.Second)
		}
	}
}

// htmlFrontier: ссылки из всех выгруженных html-страниц, которых ещё нет
// на диске. Мёртвые ссылки и собственный каталог экспорта не считаются
func (e *Exporter) htmlFrontier() ([]string, error) {
	files, err := e.structuralNodes()
	if err != nil {
		return nil, err
	}
	var frontier []string
	seen := make(map[string]struct{})
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		links, err := parser.Links(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		for p := range links {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			if strings.HasPrefix(p, e.cfg.ExportDir) {
				continue
			}
			if slices.Contains(e.cfg.HTML.DeadLinks, p) {
				continue
			}
			if e.writer.Exists(p, "") {
				continue
			}
			frontier = append(frontier, p)
		}
	}
	sort.Strings(frontier)
	return frontier, nil
}

func (e *Exporter) mdFrontier() ([]string, error) {
	files, err := e.markupNodes()
	if err != nil {
		return nil, err
	}
	var frontier []string
	seen := make(map[string]struct{})
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		for p := range parser.Refs(string(data)) {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			if slices.Contains(e.cfg.MD.DeadLinks, p) {
				continue
			}
			if e.writer.Exists(p, mdSuffix) {
				continue
			}
			frontier = append(frontier, p)
		}
	}
	sort.Strings(frontier)
	return frontier, nil
}

// structuralNodes — все файлы дерева без расширения (html-страницы)
func (e *Exporter) structuralNodes() ([]string, error) {
	var files []string
	err := filepath.WalkDir(e.writer.Root(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if filepath.Ext(d.Name()) == "" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (e *Exporter) markupNodes() ([]string, error) {
	var files []string
	err := filepath.WalkDir(e.writer.Root(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), "."+mdSuffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// commentOutPageTools глушит в замороженном зеркале живое меню страницы:
// маркеры блока переписываются так, что блок оказывается внутри
// html-комментария, но его содержимое сохраняется
func (e *Exporter) commentOutPageTools() error {
	files, err := e.structuralNodes()
	if err != nil {
		return err
	}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		lines := strings.SplitAfter(string(data), "\n")
		open := slices.Index(lines, "<!-- page-tools -->\n")
		if open == -1 {
			continue
		}
		closing := slices.Index(lines, "<!-- /page-tools -->\n")
		if closing == -1 {
			e.log.Warn("page-tools block is not closed", zap.String("file", f))
			continue
		}
		e.log.Info("removing page-tools", zap.String("file", f))
		lines[open] = "<!-- page-tools\n"
		lines[closing] = "/page-tools -->\n"
		if err := os.WriteFile(f, []byte(strings.Join(lines, "")), 0644); err != nil {
			return err
		}
	}
	return nil
}

// IsUnavailable — ошибка уровня "пропустить страницу", а не всего прогона
func IsUnavailable(err error) bool {
	return errors.Is(err, wayback.ErrNoSnapshot) || errors.Is(err, downloader.ErrUnavailable)
}
