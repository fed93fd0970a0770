package email

import (
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
)

const templateExt = ".html"

// TemplateManager хранит разобранные HTML-шаблоны писем по имени файла без расширения.
type TemplateManager struct {
	mu  sync.RWMutex
	set map[string]*template.Template
}

func NewTemplateManager() *TemplateManager {
	return &TemplateManager{set: make(map[string]*template.Template)}
}

func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mu.RLock()
	tpl, ok := tm.set[templateName]
	tm.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var sb strings.Builder
	if err := tpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s: %w", templateName, err)
	}
	return sb.String(), nil
}

// AddTemplate заменяет шаблон с тем же именем
func (tm *TemplateManager) AddTemplate(name string, body string) error {
	tpl, err := template.New(name).Parse(body)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}

	tm.mu.Lock()
	tm.set[name] = tpl
	tm.mu.Unlock()
	return nil
}

// LoadTemplates загружает *.html из директории на диске
func (tm *TemplateManager) LoadTemplates(dirPath string) error {
	if _, err := os.Stat(dirPath); err != nil {
		return fmt.Errorf("templates dir: %w", err)
	}
	return tm.LoadFS(os.DirFS(dirPath))
}

// LoadFS загружает *.html из произвольной файловой системы (в т.ч. embed)
func (tm *TemplateManager) LoadFS(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != templateExt {
			return nil
		}

		body, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		return tm.AddTemplate(strings.TrimSuffix(path.Base(p), templateExt), string(body))
	})
}

// TemplateNames - отсортированный список загруженных шаблонов
func (tm *TemplateManager) TemplateNames() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	names := make([]string, 0, len(tm.set))
	for name := range tm.set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
