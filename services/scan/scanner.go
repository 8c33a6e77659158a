// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// =============================================================================
// FileSet
// =============================================================================

// FileSet is the result of one scan.
type FileSet struct {
	// TypeScript holds .ts sources under the subtree.
	TypeScript []string `json:"typescript"`

	// JavaScript holds .js sources under the subtree.
	JavaScript []string `json:"javascript"`

	// Manifests holds package.json paths, shallowest first.
	Manifests []string `json:"manifests"`
}

// Sources returns TypeScript files followed by JavaScript files.
//
// This combined order is what the lint and analysis stages consume.
func (fs FileSet) Sources() []string {
	out := make([]string, 0, len(fs.TypeScript)+len(fs.JavaScript))
	out = append(out, fs.TypeScript...)
	out = append(out, fs.JavaScript...)
	return out
}

// Total returns the number of files across all three lists.
func (fs FileSet) Total() int {
	return len(fs.TypeScript) + len(fs.JavaScript) + len(fs.Manifests)
}

// Manifest returns the first manifest, if any.
func (fs FileSet) Manifest() (string, bool) {
	if len(fs.Manifests) == 0 {
		return "", false
	}
	return fs.Manifests[0], true
}

// =============================================================================
// Options
// =============================================================================

// Options configures a Scanner.
type Options struct {
	// TypeScriptGlob matches TypeScript sources relative to the root.
	TypeScriptGlob string

	// JavaScriptGlob matches JavaScript sources relative to the root.
	JavaScriptGlob string

	// ManifestGlob matches dependency manifests relative to the root.
	ManifestGlob string

	// Subtree limits source files to <root>/<Subtree>. Empty means no limit.
	Subtree string

	// ExcludeDirs drops any match with one of these path components.
	ExcludeDirs []string

	// RespectGitignore drops paths ignored by <root>/.gitignore.
	RespectGitignore bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		TypeScriptGlob: "**/*.ts",
		JavaScriptGlob: "**/*.js",
		ManifestGlob:   "**/package.json",
		Subtree:        "src",
	}
}

// =============================================================================
// Scanner
// =============================================================================

// Scanner discovers project files.
type Scanner struct {
	opts Options
}

// New creates a Scanner. Empty glob fields fall back to the defaults.
func New(opts Options) *Scanner {
	def := DefaultOptions()
	if opts.TypeScriptGlob == "" {
		opts.TypeScriptGlob = def.TypeScriptGlob
	}
	if opts.JavaScriptGlob == "" {
		opts.JavaScriptGlob = def.JavaScriptGlob
	}
	if opts.ManifestGlob == "" {
		opts.ManifestGlob = def.ManifestGlob
	}
	return &Scanner{opts: opts}
}

// Scan walks root and returns the discovered files.
//
// Description:
//
//	Runs the three globs against root, skipping anything under a
//	dot-directory, restricts the source lists to the configured subtree,
//	and sorts every list. Finding nothing is not an error.
//
// Inputs:
//
//	ctx - Checked between globs.
//	root - Project directory. Returned paths are root joined with the
//	       relative match, so a relative root yields relative paths.
//
// Outputs:
//
//	FileSet - The discovered files.
//	error - ErrInvalidRoot, ErrInvalidPattern, or ctx.Err().
func (s *Scanner) Scan(ctx context.Context, root string) (FileSet, error) {
	info, err := os.Stat(root)
	if err != nil {
		return FileSet{}, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return FileSet{}, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, root)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return FileSet{}, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}

	var ignore gitignore.GitIgnore
	if s.opts.RespectGitignore {
		ignore = loadGitignore(absRoot)
	}

	fsys := os.DirFS(root)
	glob := func(pattern string) ([]string, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPattern, pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}

		out := make([]string, 0, len(matches))
		for _, m := range matches {
			if hidden(m) || s.excluded(m) {
				continue
			}
			if ignore != nil {
				if match := ignore.Relative(m, false); match != nil && match.Ignore() {
					continue
				}
			}
			out = append(out, filepath.Join(root, filepath.FromSlash(m)))
		}
		return out, nil
	}

	ts, err := glob(s.opts.TypeScriptGlob)
	if err != nil {
		return FileSet{}, err
	}
	js, err := glob(s.opts.JavaScriptGlob)
	if err != nil {
		return FileSet{}, err
	}
	manifests, err := glob(s.opts.ManifestGlob)
	if err != nil {
		return FileSet{}, err
	}

	ts = s.inSubtree(absRoot, ts)
	js = s.inSubtree(absRoot, js)
	sort.Strings(ts)
	sort.Strings(js)
	sortByDepth(manifests)

	return FileSet{
		TypeScript: ts,
		JavaScript: js,
		Manifests:  manifests,
	}, nil
}

// hidden reports whether any component of rel (slash-separated) starts
// with a dot. Dot-directories hold caches and tool state, never sources.
func hidden(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// excluded reports whether rel (slash-separated) passes through an
// excluded directory.
func (s *Scanner) excluded(rel string) bool {
	if len(s.opts.ExcludeDirs) == 0 {
		return false
	}
	parts := strings.Split(rel, "/")
	for _, part := range parts[:len(parts)-1] {
		for _, dir := range s.opts.ExcludeDirs {
			if part == dir {
				return true
			}
		}
	}
	return false
}

// inSubtree keeps paths whose absolute form begins with absRoot/Subtree.
// The match is a plain prefix, so "src" also admits "srcgen/".
func (s *Scanner) inSubtree(absRoot string, paths []string) []string {
	if s.opts.Subtree == "" {
		return paths
	}
	prefix := filepath.Join(absRoot, s.opts.Subtree)

	out := paths[:0]
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if strings.HasPrefix(abs, prefix) {
			out = append(out, p)
		}
	}
	return out
}

// sortByDepth orders paths by separator count, then lexically.
func sortByDepth(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		di := strings.Count(paths[i], string(filepath.Separator))
		dj := strings.Count(paths[j], string(filepath.Separator))
		if di != dj {
			return di < dj
		}
		return paths[i] < paths[j]
	})
}

func loadGitignore(absRoot string) gitignore.GitIgnore {
	f, err := os.Open(filepath.Join(absRoot, ".gitignore"))
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, absRoot, nil)
}
