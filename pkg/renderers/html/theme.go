package html

import (
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// StylesheetAssetKey names the stylesheet entry in a theme manifest.
const StylesheetAssetKey = "smartforms.stylesheet"

// ThemeConfigFromSelection flattens a go-theme selection: variant tokens and
// assets override the manifest's own.
func ThemeConfigFromSelection(sel *theme.Selection) (*theme.RendererConfig, error) {
	if sel == nil || sel.Manifest == nil {
		return nil, fmt.Errorf("html: theme selection has no manifest")
	}
	manifest := sel.Manifest

	tokens := make(map[string]string, len(manifest.Tokens))
	for key, value := range manifest.Tokens {
		tokens[key] = value
	}
	files := make(map[string]string, len(manifest.Assets.Files))
	for key, value := range manifest.Assets.Files {
		files[key] = value
	}
	partials := make(map[string]string, len(manifest.Templates))
	for key, value := range manifest.Templates {
		partials[key] = value
	}
	if variant, ok := manifest.Variants[sel.Variant]; ok {
		for key, value := range variant.Tokens {
			tokens[key] = value
		}
		for key, value := range variant.Assets.Files {
			files[key] = value
		}
		for key, value := range variant.Templates {
			partials[key] = value
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	prefix := strings.TrimSuffix(manifest.Assets.Prefix, "/")
	name := sel.Theme
	if name == "" {
		name = manifest.Name
	}
	return &theme.RendererConfig{
		Theme:    name,
		Variant:  sel.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			if prefix == "" {
				return file
			}
			return prefix + "/" + strings.TrimPrefix(file, "/")
		},
	}, nil
}

type themeView struct {
	Name       string `json:"name"`
	Variant    string `json:"variant"`
	Style      string `json:"style"`
	Stylesheet string `json:"stylesheet"`
}

func buildThemeView(cfg *theme.RendererConfig) themeView {
	if cfg == nil {
		return themeView{}
	}
	view := themeView{
		Name:    cfg.Theme,
		Variant: cfg.Variant,
		Style:   cssVarsStyle(cfg.CSSVars),
	}
	if cfg.AssetURL != nil {
		view.Stylesheet = cfg.AssetURL(StylesheetAssetKey)
	}
	return view
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteByte(';')
	}
	return b.String()
}
