// Package scaffold turns an architecture plan into a starter repository:
// a tree listing, a path->content file map, and an in-memory zip of it.
package scaffold

import (
	"regexp"
	"sort"
	"strings"

	"archplan/internal/types"
)

var slugRe = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// Options select the optional parts of a generated repository.
type Options struct {
	ProjectSlug          string
	IncludeDocker        bool
	IncludeGithubActions bool
}

// NormalizeSlug reduces a repo slug to letters/digits/underscore. Path
// separators are replaced first so a hostile slug cannot traverse out of the
// archive root.
func NormalizeSlug(slug string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = "generated_project"
	}
	slug = strings.ReplaceAll(slug, "/", "_")
	slug = strings.ReplaceAll(slug, `\`, "_")
	slug = slugRe.ReplaceAllString(slug, "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		return "generated_project"
	}
	return slug
}

// Generate renders the scaffold for a plan. The returned tree lists folders
// (with trailing slash) followed by files, both sorted.
func Generate(plan types.ArchitecturePlan, opts Options) (tree []string, files map[string]string) {
	slug := NormalizeSlug(opts.ProjectSlug)
	files = map[string]string{}

	p := func(rel string) string {
		rel = strings.TrimLeft(strings.ReplaceAll(rel, `\`, "/"), "/")
		return slug + "/" + rel
	}

	files[p("README.md")] = renderReadme(plan, slug)
	files[p("requirements.txt")] = renderRequirements()
	files[p(".gitignore")] = renderGitignore()
	files[p(".env.example")] = renderEnvExample()

	files[p("app/__init__.py")] = ""
	files[p("app/main.py")] = renderMain()
	files[p("app/api/__init__.py")] = ""
	files[p("app/services/__init__.py")] = ""
	files[p("app/models/__init__.py")] = ""

	if opts.IncludeDocker {
		files[p("Dockerfile")] = renderDockerfile()
		files[p("docker-compose.yml")] = renderDockerCompose()
	}
	if opts.IncludeGithubActions {
		files[p(".github/workflows/ci.yml")] = renderCIWorkflow()
	}

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	tree = append(foldersFromPaths(paths), paths...)
	return tree, files
}

// foldersFromPaths synthesizes folder entries so the tree reads like a repo
// listing (myproj/, myproj/app/, ...).
func foldersFromPaths(paths []string) []string {
	set := map[string]struct{}{}
	for _, p := range paths {
		p = strings.Trim(strings.ReplaceAll(p, `\`, "/"), "/")
		if p == "" {
			continue
		}
		parts := strings.Split(p, "/")
		for i := 1; i < len(parts); i++ {
			set[strings.Join(parts[:i], "/")+"/"] = struct{}{}
		}
	}
	folders := make([]string, 0, len(set))
	for f := range set {
		folders = append(folders, f)
	}
	sort.Strings(folders)
	return folders
}
