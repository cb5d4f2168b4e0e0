package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"support-connector/internal/config"
	"support-connector/internal/domain/entities"
	Iservices "support-connector/internal/domain/interfaces/services"
	"support-connector/internal/infra/handlers"
	"support-connector/internal/infra/logger"
	"support-connector/internal/infra/provider"
	"support-connector/internal/infra/repository"
	"support-connector/internal/infra/routes"
	"support-connector/internal/infra/services"
	"support-connector/internal/middleware"
	client "support-connector/internal/pkg"
	"time"

	"github.com/gorilla/mux"
)

func main() {
	config.LoadEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	log := logger.NewLogger(ctx, true)

	mongoClient := client.MongoClient()
	ticketsDB := mongoClient.Database("SupportTickets")

	redisClient := client.RedisClient()

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware(log))

	ticketRepo := repository.NewMongoRepository[entities.TicketRecord](ticketsDB)

	checkpointTTL := config.GetEnvDurationDefault("CHECKPOINT_TTL", 24*time.Hour)
	sharedCheckpoints := repository.NewRedisCheckpointRepository(redisClient, checkpointTTL)
	localCheckpoints := repository.NewMemoryCheckpointRepository()
	checkpointStore := repository.NewCheckpointStore(log, sharedCheckpoints, localCheckpoints)

	httpClient := &http.Client{Timeout: 30 * time.Second}

	knowledgeProvider := provider.NewHttpKnowledgeProvider(log, httpClient)
	ticketingProvider := provider.NewHttpTicketingProvider(log, httpClient)

	knowledgeSvc := services.NewKnowledgeService(log, knowledgeProvider)
	var callerHistorySvc Iservices.ICallerHistoryService = services.NewCallerHistoryService(ticketRepo, log)
	var queryAISvc Iservices.IQueryAIService = services.NewQueryAIService(log, httpClient)
	var decisionSvc Iservices.IDecisionService = services.NewDecisionService()

	ticketSvc := services.NewTicketService(log, ticketRepo, ticketingProvider)
	ticketSvc.StartSyncWorker(ctx)

	var conversationSvc Iservices.IConversationService = services.NewConversationService(
		log,
		checkpointStore,
		knowledgeSvc,
		callerHistorySvc,
		queryAISvc,
		decisionSvc,
		ticketSvc,
	)

	httpHandlers := handlers.NewHttpHandlers(log, conversationSvc, ticketSvc, checkpointStore, knowledgeSvc)

	routes := routes.NewRoutes(router, httpHandlers)
	routes.Init()

	port := config.GetEnv("PORT")
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	go func() {
		log.Info(fmt.Sprintf("Server is running on port %s", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(fmt.Sprintf("Error running HTTP server: %s", err))
			os.Exit(1)
		}
	}()

	<-stop
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	} else {
		log.Info("Server stopped gracefully.")
	}
}
