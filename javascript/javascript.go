package javascript

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/pkg/errors"
)

// AssetDir is the directory, below the site base, assets are served from.
const AssetDir = "assets"

// Target is one bundle entry. Either Source (a file on disk) or Contents
// must be set; Contents is bundled as Ext (".js" or ".css").
type Target struct {
	Name     string
	Source   string
	Contents string
	Ext      string
}

// Asset is an emitted, content hashed file.
type Asset struct {
	Target   string
	Path     string // relative to the site base, e.g. assets/theme_X1Y2.js
	Contents []byte
	IsMap    bool
}

func (t Target) ext() string {
	if t.Ext != "" {
		return t.Ext
	}
	if t.Source != "" {
		if strings.EqualFold(filepath.Ext(t.Source), ".css") {
			return ".css"
		}
	}
	return ".js"
}

// Compile bundles and minifies every target in memory.
func Compile(targets []Target) ([]Asset, error) {
	var emitted []Asset
	for _, target := range targets {
		assets, err := compileTarget(target)
		if err != nil {
			return nil, errors.Wrapf(err, "compiling %s", target.Name)
		}
		emitted = append(emitted, assets...)
	}

	sort.SliceStable(emitted, func(i, j int) bool { return emitted[i].Path < emitted[j].Path })
	return emitted, nil
}

func compileTarget(target Target) ([]Asset, error) {
	ext := target.ext()
	opts := api.BuildOptions{
		Bundle:            true,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		Engines: []api.Engine{
			{Name: api.EngineChrome, Version: "100"},
			{Name: api.EngineFirefox, Version: "100"},
			{Name: api.EngineSafari, Version: "15"},
			{Name: api.EngineEdge, Version: "100"},
		},
		Write:   false,
		Outfile: path.Join(AssetDir, target.Name+ext),
	}
	if ext == ".js" {
		opts.Sourcemap = api.SourceMapExternal
	}

	switch {
	case target.Source != "":
		opts.EntryPoints = []string{target.Source}
	case target.Contents != "":
		loader := api.LoaderJS
		if ext == ".css" {
			loader = api.LoaderCSS
		}
		opts.Stdin = &api.StdinOptions{
			Contents:   target.Contents,
			Sourcefile: target.Name + ext,
			Loader:     loader,
		}
	default:
		return nil, errors.New("target has neither source nor contents")
	}

	result := api.Build(opts)
	if len(result.Errors) > 0 {
		msg := result.Errors[0].Text
		if loc := result.Errors[0].Location; loc != nil {
			msg = fmt.Sprintf("%s:%d: %s", loc.File, loc.Line, msg)
		}
		return nil, errors.Errorf("esbuild: %s", msg)
	}

	// Regular files first so each map can reuse its source file's hash.
	var regularFiles, mapFiles []api.OutputFile
	for _, out := range result.OutputFiles {
		if strings.EqualFold(filepath.Ext(out.Path), ".map") {
			mapFiles = append(mapFiles, out)
		} else {
			regularFiles = append(regularFiles, out)
		}
	}
	sortedFiles := append(regularFiles, mapFiles...)

	srcToHash := make(map[string]string)
	var assets []Asset
	for _, out := range sortedFiles {
		base := filepath.Base(out.Path)
		ext := base[strings.Index(base, "."):]
		isMap := strings.HasSuffix(ext, ".map")
		fileNameWithoutExt := base[:len(base)-len(ext)]

		var hash string
		if isMap {
			hash = srcToHash[fileNameWithoutExt]
			if hash == "" {
				return nil, errors.Errorf("source map %s can not find hash for its source file", fileNameWithoutExt)
			}
		} else {
			hash = strings.ReplaceAll(out.Hash, "/", "")
			srcToHash[fileNameWithoutExt] = hash
		}

		name := fmt.Sprintf("%s_%s%s", fileNameWithoutExt, hash, ext)
		contents := out.Contents
		if !isMap && ext == ".js" && len(mapFiles) > 0 {
			contents = append(append([]byte{}, contents...), []byte("//# sourceMappingURL="+name+".map")...)
		}

		assets = append(assets, Asset{
			Target:   target.Name,
			Path:     path.Join(AssetDir, name),
			Contents: contents,
			IsMap:    isMap,
		})
	}

	return assets, nil
}
