package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"github.com/robertkrimen/isatty"
	"github.com/vilterp/litex/pkg"
)

var url = flag.String("url", "ws://localhost:9000/ws", "URL of litex server to connect to")
var local = flag.Bool("local", false, "run statements in-process instead of on a server")
var configFile = flag.String("config", "", "YAML config file (engine options, history file)")

// backend is where lines typed into the shell get run.
type backend interface {
	Run(program string) ([]*litex.Result, error)
	Command(command string) (string, error)
	Close() error
}

// localBackend runs a session in-process. Snapshot commands are server-only.
type localBackend struct {
	engine  *litex.Engine
	session *litex.Session
}

func (b *localBackend) Run(program string) ([]*litex.Result, error) {
	return b.session.Run(program)
}

func (b *localBackend) Command(command string) (string, error) {
	switch strings.Fields(command)[0] {
	case `\h`:
		return `\h	help` + "\n" + `\env	print the environment`, nil
	case `\env`:
		return b.session.Scope().Format().String(), nil
	}
	return "", errors.Errorf("unknown command in local mode: %s", command)
}

func (b *localBackend) Close() error {
	b.engine.EndSession(b.session)
	return b.engine.Close()
}

func main() {
	// get cmdline flags
	flag.Parse()

	config := litex.DefaultConfig()
	if *configFile != "" {
		loaded, err := litex.LoadConfig(*configFile)
		if err != nil {
			fmt.Println("couldn't load config:", err)
			os.Exit(1)
		}
		config = loaded
	}

	var conn backend
	target := *url
	if *local {
		config.DataFile = ""
		if config.RunRoot == "" {
			config.RunRoot = "."
		}
		engine, err := litex.NewEngine(config)
		if err != nil {
			fmt.Println("couldn't start engine:", err)
			os.Exit(1)
		}
		conn = &localBackend{engine: engine, session: engine.StartSession()}
		target = "local"
	} else {
		client, err := litex.NewClient(*url)
		if err != nil {
			fmt.Println("couldn't connect:", err)
			os.Exit(1)
		}
		conn = client
	}
	defer conn.Close()

	// check if is TTY
	isInputTty := isatty.Check(os.Stdin.Fd())

	if isInputTty {
		fmt.Println("litex shell")
		fmt.Println("\\h for help")
	}

	// initialize readline
	prompt := ""
	if isInputTty {
		prompt = fmt.Sprintf("%s> ", target)
	}
	l, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       config.HistoryFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "bye!",
		HistorySearchFold: true,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()

	for {
		line, readlineErr := l.Readline()
		if readlineErr != nil {
			fmt.Println("bye!")
			return
		}
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		if strings.HasPrefix(line, `\`) {
			ack, err := conn.Command(line)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println(ack)
			continue
		}

		results, err := conn.Run(line)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		if err := litex.WriteResults(os.Stdout, results); err != nil {
			fmt.Println("error:", err)
		}
	}
}
