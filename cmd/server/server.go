package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/vilterp/litex/pkg"
)

var configFile = flag.String("config", "", "YAML config file; flags override it")
var port = flag.Int("port", 0, "port to listen on (default 9000)")
var host = flag.String("host", "", "host to listen on (default 0.0.0.0)")
var dataFile = flag.String("data-file", "", "bolt file for snapshots (default litex.data)")

func main() {
	// get cmdline flags
	flag.Parse()

	fmt.Println("litex server")

	config := litex.DefaultConfig()
	if *configFile != "" {
		loaded, err := litex.LoadConfig(*configFile)
		if err != nil {
			log.Fatalln("error loading config:", err)
		}
		config = loaded
	}
	if *port != 0 {
		config.Port = *port
	}
	if *host != "" {
		config.Host = *host
	}
	if *dataFile != "" {
		config.DataFile = *dataFile
	}

	server, err := litex.NewServer(config)
	if err != nil {
		log.Fatalln("failed to start:", err)
	}

	// graceful shutdown on Ctrl-C
	ctrlCChan := make(chan os.Signal, 1)
	signal.Notify(ctrlCChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlCChan
		if err := server.Close(); err != nil {
			log.Println("error closing:", err)
		}
		os.Exit(0)
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("error listening:", err)
	}
}
