package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var mainExts = []string{".toml", ".json", ".yaml", ".yml"}

func trimExt(path string) string {
	ext := filepath.Ext(path)
	for _, e := range mainExts {
		if ext == e {
			return strings.TrimSuffix(path, ext)
		}
	}
	return path
}

// mainFiles returns the existing main config files for base.
func mainFiles(base string) []string {
	var out []string
	for _, ext := range mainExts {
		p := base + ext
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			out = append(out, p)
		}
	}
	return out
}

// readTree merges the main files for base, then appends includes until no
// unseen include remains. Include paths are relative to the main config's
// directory.
func readTree(base string) (map[string]any, []string, error) {
	files := mainFiles(base)
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no config file found at %s.{toml,json,yaml,yml}", base)
	}

	root := map[string]any{}
	for _, f := range files {
		doc, err := readFile(f)
		if err != nil {
			return nil, nil, err
		}
		mergeInto(root, doc, false)
	}

	dir := filepath.Dir(base)
	seen := map[string]bool{}
	for _, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			seen[abs] = true
		}
	}
	for {
		includes, err := includePaths(root, dir)
		if err != nil {
			return nil, nil, err
		}
		var fresh []string
		for _, p := range includes {
			if !seen[p] {
				fresh = append(fresh, p)
				seen[p] = true
			}
		}
		if len(fresh) == 0 {
			break
		}
		for _, p := range fresh {
			doc, err := readFile(p)
			if err != nil {
				return nil, nil, err
			}
			mergeInto(root, doc, true)
			files = append(files, p)
		}
	}
	return root, files, nil
}

func includePaths(root map[string]any, dir string) ([]string, error) {
	raw, ok := root["include"]
	if !ok {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("include: expected a list of paths, got %T", raw)
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("include: expected a path, got %T", v)
		}
		p := os.ExpandEnv(s)
		if strings.HasPrefix(p, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				p = filepath.Join(home, p[2:])
			}
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		resolved, err := filepath.EvalSymlinks(p)
		if err != nil {
			return nil, fmt.Errorf("include %s: %w", s, err)
		}
		abs, err := filepath.Abs(resolved)
		if err != nil {
			return nil, fmt.Errorf("include %s: %w", s, err)
		}
		out = append(out, abs)
	}
	return out, nil
}

// readFile decodes a config file by extension and normalizes it to the
// shapes encoding/json produces.
func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var doc map[string]any
	switch ext := filepath.Ext(path); ext {
	case ".toml":
		err = toml.Unmarshal(data, &doc)
	case ".json":
		err = json.Unmarshal(data, &doc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	case "":
		return nil, fmt.Errorf("%s: no file extension, cannot infer file format", path)
	default:
		return nil, fmt.Errorf("%s: unsupported file extension: %s", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return normalizeDoc(doc)
}

func normalizeDoc(doc map[string]any) (map[string]any, error) {
	if doc == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// mergeInto folds src into dst. Tables merge recursively and scalars are
// replaced. Arrays are replaced, or concatenated when appendArrays is set.
func mergeInto(dst, src map[string]any, appendArrays bool) {
	for k, sv := range src {
		dv, ok := dst[k]
		if !ok {
			dst[k] = sv
			continue
		}
		switch s := sv.(type) {
		case map[string]any:
			if d, ok := dv.(map[string]any); ok {
				mergeInto(d, s, appendArrays)
				continue
			}
		case []any:
			if d, ok := dv.([]any); ok && appendArrays {
				dst[k] = append(append([]any(nil), d...), s...)
				continue
			}
		}
		dst[k] = sv
	}
}
