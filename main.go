package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/MarcGrol/sellerbackend/lib/mycrypto"
	"github.com/MarcGrol/sellerbackend/lib/mypubsub"
	"github.com/MarcGrol/sellerbackend/lib/mypublisher"
	"github.com/MarcGrol/sellerbackend/lib/myqueue"
	"github.com/MarcGrol/sellerbackend/lib/mystate"
	"github.com/MarcGrol/sellerbackend/lib/mytime"
	"github.com/MarcGrol/sellerbackend/lib/myuuid"
	"github.com/MarcGrol/sellerbackend/services/mercado"
	"github.com/MarcGrol/sellerbackend/services/mercado/credstore"
	"github.com/MarcGrol/sellerbackend/services/mercado/mercadoclient"
	"github.com/MarcGrol/sellerbackend/services/refresher"
	"github.com/MarcGrol/sellerbackend/services/warmup"
)

func main() {
	c := context.Background()

	// optional: local development settings
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("No .env file loaded: %s", err)
	}

	router := mux.NewRouter()
	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating task queue: %s", err)
	}
	defer queueCleanup()

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, nower)
	if err != nil {
		log.Fatalf("Error creating publisher: %s", err)
	}
	defer publisherCleanup()
	publisher.RegisterEndpoints(c, router)

	encryptor, err := mycrypto.NewFromEnv()
	if err != nil {
		log.Fatalf("Error creating token encryptor: %s", err)
	}

	stateTokener := mystate.New(stateSecretFromEnv(), nower)

	credStore, credStoreCleanup, err := credstore.New(c)
	if err != nil {
		log.Fatalf("Error creating credential store: %s", err)
	}
	defer credStoreCleanup()

	warmupService := warmup.NewService(credStore)
	warmupService.RegisterEndpoints(c, router)

	client := mercadoclient.New(os.Getenv("MELI_APP_ID"), os.Getenv("MELI_APP_SECRET"))

	mercadoService := mercado.NewService(credStore, client, encryptor, stateTokener, publisher, nower, uuider)
	err = mercadoService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering mercado endpoints: %s", err)
	}

	refresherService := refresher.NewService(credStore, mercadoService.GetService(), nower, refresher.IntervalFromEnv())
	err = refresherService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering refresher endpoints: %s", err)
	}

	err = refresherService.Start(c)
	if err != nil {
		log.Fatalf("Error starting refresher: %s", err)
	}
	defer refresherService.Stop(c)

	router.Handle("/metrics", refresher.MetricsHandler()).Methods("GET")

	startWebServerBlocking(router)
}

func stateSecretFromEnv() string {
	secret := os.Getenv("OAUTH_STATE_SECRET")
	if secret == "" {
		if os.Getenv("APP_ENV") == "production" {
			log.Fatalf("OAUTH_STATE_SECRET is mandatory in production")
		}
		secret = "insecure-development-only-state-secret"
	}

	return secret
}

func startWebServerBlocking(router *mux.Router) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigs
		log.Printf("Received signal %s, shutting down", sig)
		_ = server.Shutdown(context.Background())
	}()

	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
