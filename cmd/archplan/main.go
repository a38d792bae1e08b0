package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"archplan/internal/config"
	"archplan/internal/diagram"
	"archplan/internal/llm"
	"archplan/internal/planner"
	"archplan/internal/scaffold"
	"archplan/internal/types"
	"archplan/internal/util/jsonutil"
)

// One-shot planning run: idea in, plan.json + diagram.mmd + scaffold zip out.
func main() {
	ideaPath := flag.String("idea", "", "path to an idea JSON file")
	name := flag.String("name", "", "project name (ignored with --idea)")
	description := flag.String("description", "", "project description")
	domain := flag.String("domain", "other", "project domain")
	scale := flag.String("scale", "prototype", "target scale")
	diagramType := flag.String("diagram", diagram.TypeFlow, "diagram type: flow or component")
	slug := flag.String("slug", "", "scaffold project slug (defaults to the idea name)")
	outDir := flag.String("out", "out", "output directory")
	withDocker := flag.Bool("docker", false, "include Dockerfile and docker-compose.yml")
	withCI := flag.Bool("ci", false, "include a GitHub Actions workflow")
	flag.Parse()

	_ = godotenv.Load()

	idea, err := loadIdea(*ideaPath, *name, *description, *domain, *scale)
	if err != nil {
		log.Fatal(err)
	}
	if missing := idea.Validate(); missing != "" {
		log.Fatal(missing)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	client, err := newLLMClient(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()
	log.Printf("planning %q with %s", idea.Name, client.Name())

	plan, err := planner.New(client).Plan(ctx, idea)
	if err != nil {
		log.Fatal(err)
	}
	writeJSON(*outDir, "plan.json", plan)

	mermaid := diagram.Build(plan, *diagramType, idea.Name)
	writeFile(*outDir, "diagram.mmd", []byte(mermaid))

	projectSlug := *slug
	if projectSlug == "" {
		projectSlug = idea.Name
	}
	_, files := scaffold.Generate(plan, scaffold.Options{
		ProjectSlug:          projectSlug,
		IncludeDocker:        *withDocker,
		IncludeGithubActions: *withCI,
	})
	zipData, err := scaffold.BuildZip(files)
	if err != nil {
		log.Fatal(err)
	}
	writeFile(*outDir, scaffold.NormalizeSlug(projectSlug)+"_scaffold.zip", zipData)

	log.Printf("wrote plan, diagram, and scaffold to %s", *outDir)
}

func loadIdea(path, name, description, domain, scale string) (types.ProjectIdea, error) {
	if path == "" {
		return types.ProjectIdea{
			Name:        name,
			Description: description,
			Domain:      domain,
			Scale:       scale,
		}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ProjectIdea{}, err
	}
	var idea types.ProjectIdea
	if err := json.Unmarshal(data, &idea); err != nil {
		return types.ProjectIdea{}, err
	}
	return idea, nil
}

func newLLMClient(ctx context.Context) (llm.Client, error) {
	cfg := config.LoadLLM()
	switch cfg.Provider {
	case "gemini":
		return llm.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	case "groq":
		return llm.NewGroqClient(cfg.APIKey, cfg.Model)
	case "ollama":
		return llm.NewOllamaClient(cfg.BaseURL, cfg.Model), nil
	default:
		return llm.NewFakeClient(""), nil
	}
}

func writeJSON(dir, name string, v any) {
	data, err := jsonutil.MarshalNoEscapeIndent(v, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	writeFile(dir, name, append(data, '\n'))
}

func writeFile(dir, name string, data []byte) {
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		log.Fatal(err)
	}
}
