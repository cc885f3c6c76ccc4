// @title           PersonaRAG API
// @version         1.0
// @description     Persona chat grounded in scripture, with asynchronous document ingestion.

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/data/store"
	"github.com/akolanti/PersonaRAG/internal/domain/jobModel"
	"github.com/akolanti/PersonaRAG/internal/handlers"
	"github.com/akolanti/PersonaRAG/internal/job"
	"github.com/akolanti/PersonaRAG/internal/mcpServer"
	"github.com/akolanti/PersonaRAG/internal/middleware"
	"github.com/akolanti/PersonaRAG/internal/providers"
	"github.com/akolanti/PersonaRAG/internal/rag"
	"github.com/akolanti/PersonaRAG/internal/rag/ingest"
	"github.com/akolanti/PersonaRAG/internal/rag/intent"
	"github.com/akolanti/PersonaRAG/internal/rag/persona"
	"github.com/akolanti/PersonaRAG/internal/rag/speech"
	"github.com/akolanti/PersonaRAG/internal/server"
	"github.com/akolanti/PersonaRAG/internal/worker"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	settings := config.Load()

	logger_i.Init(settings.Server.Production)
	var logger = logger_i.NewLogger("main")

	flag.StringVar(&listenAddr, "listen-addr", settings.Server.ListenAddr, "server listen address")
	flag.Parse()

	middleware.Init(settings.Server)

	policy, err := persona.Load(settings.Server.PersonaCatalogPath)
	if err != nil {
		logger.Error("Persona catalog could not be loaded", "path", settings.Server.PersonaCatalogPath, "error", err)
		os.Exit(1)
	}

	//init buffered job channel
	jobChannel := make(chan jobModel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	logger.Info("Starting job service")
	service := job.InitJobService(job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          store.NewJobStore(serviceContext, settings.Redis),
	})

	set := providers.Build(serviceContext, settings)
	logger.Debug("Providers", "embedding", set.Embedder.Names(), "generation", set.Generator.Names())

	ingestOpts := ingest.DefaultOptions()
	ingestOpts.Collection = set.Collection
	ingestOpts.Chunk = ingest.ChunkOptions{Size: settings.Retrieval.ChunkSize, Overlap: settings.Retrieval.ChunkOverlap}

	ragService := rag.NewService(rag.Deps{
		Embedder:      set.Embedder,
		Store:         set.Store,
		Generator:     set.Generator,
		Classifier:    intent.NewClassifier(set.Generator, settings.Retrieval.ClassifierMode),
		Policy:        policy,
		Moderator:     set.Moderator,
		Speech:        speech.New(settings.Providers.SpeechProvider),
		Conversations: store.NewConversationStore(serviceContext, settings.Redis),
		Ingester:      ingest.NewPipeline(set.Embedder, set.Store, policy, ingestOpts),
	}, rag.OptionsFrom(settings.Store, settings.Retrieval))

	handlers.InitJobHandler(service)
	handlers.InitChatHandler(handlers.ChatDependencies{
		Rag:        ragService,
		Policy:     policy,
		Store:      set.Store,
		Collection: set.Collection,
		Embedding:  set.Embedder.Names(),
		Generation: set.Generator.Names(),
	})

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	tools := mcpServer.New(set.Embedder, set.Store, policy, set.Collection)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr, tools.Handler())

	<-stopExecution
	logger.Info("Server stopped")
}
