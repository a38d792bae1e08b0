package scaffold

import (
	"fmt"
	"strings"
	"time"

	"archplan/internal/types"
)

func safeTitle(plan types.ArchitecturePlan) string {
	if len(plan.Components) > 0 && plan.Components[0].Name != "" {
		return plan.Components[0].Name + " Project"
	}
	return "Generated Project"
}

func mdBullets(items []string, empty string) string {
	if len(items) == 0 {
		return "- " + empty
	}
	out := make([]string, len(items))
	for i, x := range items {
		out[i] = "- " + x
	}
	return strings.Join(out, "\n")
}

func renderReadme(plan types.ArchitecturePlan, slug string) string {
	var comps []string
	for _, c := range plan.Components {
		line := fmt.Sprintf("- **%s**: %s", c.Name, c.Role)
		if len(c.Technologies) > 0 {
			line += " (Tech: " + strings.Join(c.Technologies, ", ") + ")"
		}
		comps = append(comps, strings.TrimRight(line, " "))
	}
	bullets := "- (No components provided)"
	if len(comps) > 0 {
		bullets = strings.Join(comps, "\n")
	}

	deployment := plan.Deployment.String()
	if deployment == "" {
		deployment = "(not specified)"
	}
	scaling := plan.Scaling
	if scaling == "" {
		scaling = "(not specified)"
	}

	return fmt.Sprintf(`# %s

%s

## Overview
This repository was generated from an AI-produced architecture plan.

## Architecture Components
%s

## Deployment
%s

## Scaling
%s

## Security Notes
%s

## Run Locally
`+"```bash"+`
python -m venv .venv
pip install -r requirements.txt
uvicorn app.main:app --reload
`+"```"+`

## API Docs
- Swagger: http://127.0.0.1:8000/docs

Generated on %sZ
`, slug, safeTitle(plan), bullets, deployment, scaling,
		mdBullets(plan.Security, "None provided"),
		time.Now().UTC().Format("2006-01-02T15:04:05"))
}

func renderMain() string {
	return `from __future__ import annotations

from fastapi import FastAPI

app = FastAPI(title="Generated API", version="0.1.0")


@app.get("/health")
def health():
    return {"status": "ok"}
`
}

func renderRequirements() string {
	return `fastapi>=0.110
uvicorn[standard]>=0.27
pydantic>=2.0
`
}

func renderGitignore() string {
	return `.venv/
__pycache__/
*.pyc
.DS_Store
.env
`
}

func renderEnvExample() string {
	return `# Example environment variables
APP_ENV=local
`
}

func renderDockerfile() string {
	return `FROM python:3.12-slim

WORKDIR /app
COPY requirements.txt /app/requirements.txt
RUN pip install --no-cache-dir -r /app/requirements.txt

COPY app /app/app

EXPOSE 8000
CMD ["uvicorn", "app.main:app", "--host", "0.0.0.0", "--port", "8000"]
`
}

func renderDockerCompose() string {
	return `services:
  api:
    build: .
    ports:
      - "8000:8000"
`
}

func renderCIWorkflow() string {
	return `name: CI
on: [push]
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - uses: actions/setup-python@v5
        with:
          python-version: '3.12'
      - run: pip install -r requirements.txt
`
}
