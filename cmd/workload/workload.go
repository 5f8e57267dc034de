package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vilterp/litex/pkg"
)

var url = flag.String("url", "ws://localhost:9000/ws", "url of litex server to connect to")
var numClients = flag.Int("numClients", 4, "number of concurrent sessions")
var chainLength = flag.Int("chainLength", 20, "number of implications each check chains through")
var numChecks = flag.Int("numChecks", 1000, "number of checks each session runs")

// chainProgram declares p0..pn with p(i) => p(i+1) for every i.
func chainProgram(n int) string {
	var sb strings.Builder
	for i := 0; i <= n; i++ {
		fmt.Fprintf(&sb, "def p%d(x);\n", i)
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "know if x: p%d(x) {p%d(x)};\n", i, i+1)
	}
	return sb.String()
}

func runSession(idx int) error {
	client, err := litex.NewClient(*url)
	if err != nil {
		return err
	}
	defer client.Close()

	if _, err := client.Run(chainProgram(*chainLength)); err != nil {
		return err
	}
	for check := 0; check < *numChecks; check++ {
		// a fresh singleton each time so stored conclusions don't short-circuit the chain
		start := rand.Intn(*chainLength)
		program := fmt.Sprintf("let a%d: p%d(a%d);\np%d(a%d);", check, start, check, *chainLength, check)
		results, err := client.Run(program)
		if err != nil {
			return err
		}
		if verdict := results[len(results)-1].Verdict; verdict != "true" {
			return errors.Errorf("session %d: check %d: expected true; got %s", idx, check, verdict)
		}
		if check%100 == 0 {
			log.Printf("session %d: %d checks", idx, check)
		}
	}
	return nil
}

func main() {
	flag.Parse()

	var wg sync.WaitGroup
	for i := 0; i < *numClients; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if err := runSession(idx); err != nil {
				log.Fatal(err)
			}
		}(i)
	}
	wg.Wait()
	log.Println("done")
}
