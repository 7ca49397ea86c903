package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"chat-orchestrator/internal/adapter/bedrock"
	"chat-orchestrator/internal/adapter/chat_http"
	"chat-orchestrator/internal/domain"
	"chat-orchestrator/internal/infra/config"
	"chat-orchestrator/internal/infra/logger"
	"chat-orchestrator/internal/usecase"
)

func main() {
	// 1. Load Config
	cfg := config.Load()

	// 2. Initialize Logger
	log := logger.NewWithOTel(cfg.OTelEnabled)
	slog.SetDefault(log)

	// 3. Initialize Provider Clients
	// A failure here leaves the gateways nil: the server still starts and
	// serves /health, while chat and search report the uninitialized client.
	var retriever domain.KnowledgeRetriever
	var llm domain.CompletionClient
	awsCfg, err := bedrock.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		log.Error("failed to initialize AWS clients, serving degraded", "error", err)
	} else {
		retriever = bedrock.NewKnowledgeBaseGateway(bedrockagentruntime.NewFromConfig(awsCfg), cfg.KnowledgeBaseID)
		llm = bedrock.NewRuntimeGateway(bedrockruntime.NewFromConfig(awsCfg), cfg.ModelID)
		log.Info("AWS clients initialized", "region", cfg.AWSRegion, "model", cfg.ModelID)
	}

	// 4. Initialize Usecases
	retrieveUsecase := usecase.NewRetrieveKnowledgeUsecase(retriever)
	composer := usecase.NewPromptComposer(usecase.DefaultSystemInstruction)
	chatUsecase := usecase.NewChatTurnUsecase(retrieveUsecase, composer, llm)

	// 5. Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				level = slog.LevelError
			}
			log.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimitRPS))))

	// 6. Register Handlers
	handler := chat_http.NewHandler(chatUsecase, retrieveUsecase)
	handler.Register(e)

	// 7. Start Server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info("Starting server", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	// 8. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}
