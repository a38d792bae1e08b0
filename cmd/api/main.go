package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"archplan/internal/artifact"
	"archplan/internal/config"
	"archplan/internal/llm"
	"archplan/internal/planner"
	"archplan/internal/runstore"
	"archplan/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		errLog := zerolog.New(os.Stderr)
		errLog.Fatal().Err(err).Msg("load config")
	}

	log := newLogger(cfg.Env)

	client, err := newLLMClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init llm client")
	}
	defer client.Close()
	log.Info().Str("model", client.Name()).Msg("llm client ready")

	runs := runstore.NewFromDSN(cfg.RunStoreDSN, cfg.PlanCacheSize)
	defer runs.Close()

	var artifacts *artifact.S3Store
	if cfg.Artifact.Enabled {
		artifacts, err = artifact.NewS3Store(artifact.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		})
		if err != nil {
			log.Warn().Err(err).Msg("artifact store disabled")
			artifacts = nil
		}
	}

	h := server.NewHandler(planner.New(client), runs, artifacts, cfg.PlanCacheSize, log)
	srv := server.New(cfg.Port, server.NewMux(h), log)

	go func() {
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exiting")
}

func newLogger(env string) zerolog.Logger {
	if strings.EqualFold(env, "local") {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func newLLMClient(cfg *config.Config) (llm.Client, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		return llm.NewGeminiClient(context.Background(), cfg.LLM.APIKey, cfg.LLM.Model)
	case "groq":
		return llm.NewGroqClient(cfg.LLM.APIKey, cfg.LLM.Model)
	case "ollama":
		return llm.NewOllamaClient(cfg.LLM.BaseURL, cfg.LLM.Model), nil
	default:
		return llm.NewFakeClient(""), nil
	}
}
