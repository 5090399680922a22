// Package view renders the embedded html/template pages inside the shared layout.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/diewo77/go-board/auth"
	"github.com/diewo77/go-board/i18n"
	"github.com/dustin/go-humanize"
)

//go:embed templates
var files embed.FS

// FlashFunc returns and clears the pending flash notice for a request.
type FlashFunc func(w http.ResponseWriter, r *http.Request) (kind, msg string, ok bool)

var (
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}

	resolverMu   sync.RWMutex
	langResolver = func(r *http.Request) string {
		if r == nil {
			return i18n.DefaultLang
		}
		return i18n.LangFromContext(r.Context())
	}
	flashResolver FlashFunc
)

// SetLangResolver allows the host app to provide a custom language resolver.
func SetLangResolver(f func(*http.Request) string) {
	if f != nil {
		resolverMu.Lock()
		langResolver = f
		resolverMu.Unlock()
	}
}

// SetFlashResolver installs the flash channel read on every render.
func SetFlashResolver(f FlashFunc) {
	resolverMu.Lock()
	flashResolver = f
	resolverMu.Unlock()
}

func resolvers() (func(*http.Request) string, FlashFunc) {
	resolverMu.RLock()
	defer resolverMu.RUnlock()
	return langResolver, flashResolver
}

// Funcs returns the template helpers bound to r. r may be nil while parsing.
func Funcs(r *http.Request) template.FuncMap {
	lr, _ := resolvers()
	lang := lr(r)
	return template.FuncMap{
		"t":    func(code string) string { return i18n.T(lang, code) },
		"lang": func() string { return lang },
		"year": func() int { return time.Now().Year() },
		"ago":  func(t time.Time) string { return humanize.Time(t) },
		"add":  func(a, b int) int { return a + b },
		"date": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format(time.DateOnly)
		},
		// dict creates a map from key-value pairs for passing to sub-templates.
		// Usage: {{ template "partial" (dict "Key1" val1 "Key2" val2) }}
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

// parse returns the cached layout+page template set for name.
func parse(name string) (*template.Template, error) {
	tplCache.RLock()
	t, ok := tplCache.m[name]
	tplCache.RUnlock()
	if ok {
		return t, nil
	}
	t, err := template.New("layout.html").Funcs(Funcs(nil)).ParseFS(files,
		"templates/layout.html",
		"templates/partials/*.html",
		"templates/"+name,
	)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	tplCache.Lock()
	tplCache.m[name] = t
	tplCache.Unlock()
	return t, nil
}

// Render executes page name with status 200.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	return RenderStatus(w, r, http.StatusOK, name, data)
}

// RenderStatus executes page name inside the layout and writes it with status.
// Nothing is written if execution fails.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) error {
	base, err := parse(name)
	if err != nil {
		return err
	}
	t, err := base.Clone()
	if err != nil {
		return err
	}
	t.Funcs(Funcs(r))

	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["IsLoggedIn"]; !exists {
		_, loggedIn := auth.UserIDFromContext(r.Context())
		data["IsLoggedIn"] = loggedIn
	}
	if _, exists := data["Flash"]; !exists {
		if _, flash := resolvers(); flash != nil {
			if kind, msg, ok := flash(w, r); ok {
				data["Flash"] = map[string]string{"Kind": kind, "Message": msg}
			}
		}
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

// ResetForTests clears the template cache.
func ResetForTests() {
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
}
