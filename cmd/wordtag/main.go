// Copyright 2025 The WordTag Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the word tagging server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

WordTag resolves single words into lexical tokens: a part-of-speech tag
plus a decomposition trace when the word was not found directly in the
lexicon tables. It can operate as a MessagePack IPC server for integration
with text processing pipelines, or as a CLI application for testing and
debugging.

The resolver decomposes unknown words by case folding, prefix stripping,
compound-head stripping and suffix rules with tag algebra, all driven by
plain text lexicon tables. Recognizer chains in front of the lexicon catch
numbers, dates, URLs and words glued together by punctuation. Resolved
words feed a bounded phrase tracker that counts n-gram occurrences between
stop boundaries.

# Usage

Start the server with default settings:

	wordtag

Use a custom lexicon directory and enable debug mode:

	wordtag -lexicon /path/to/tables -d

Run in CLI mode for interactive testing:

	wordtag -c -trace

The lexicon directory should contain word tables named core.lex,
names.lex, etc., plus the optional prefixes.lex, compounds.lex and
suffixes.lex rule files. Files are plain tab-separated text and are
re-read when their modification time changes.

# Configuration

Runtime configuration is managed through a TOML file that supports engine
parameters, lexicon settings, recognizer rules and CLI defaults:

	[engine]
	max_ngram = 5
	cache_size = 4096
	stop_tags = ["punct"]

	[lexicon]
	dir = "data"
	tables = ["core", "names"]

	[recognizer]
	rules = ["SPECIALS", "NUM", "SPLIT"]

The config file is automatically created with defaults if it doesn't
exist. Server mode re-checks the lexicon files periodically without
restart.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Resolution
requests are processed synchronously with microsecond timing information
included in responses.

Send a resolution request:

	{"id": "req1", "cmd": "resolve", "w": "unhappiness"}

Receive the token stream with tag and trace:

	{"id": "req1", "s": [{"w": "unhappiness", "t": "s", "d": "unhappy+ness"}], "c": 1, "t": 145}

Run state requests expose statistics and phrase counts:

	{"id": "st1", "cmd": "stats", "which": "unknown"}
	{"id": "ng1", "cmd": "ngrams", "l": 16, "n": true}

# Server Mode

The default mode starts a MessagePack IPC server that processes resolution
requests from stdin and writes responses to stdout. This design enables
integration with editors and annotation pipelines through process
communication.

	srv := server.NewServer(engine, lexicon, config)
	err := srv.Start()

The server automatically handles request parsing, validation, and response
formatting. It includes periodic lexicon reloading for long-running
sessions; logs go to stderr so stdout stays clean for the protocol.

# CLI Mode

CLI mode provides an interactive interface for testing and debugging the
resolver. It reads lines from stdin and displays the resolved tokens with
tags, decomposition traces and stop markers.

	inputHandler := cli.NewInputHandler(engine, lexicon, showTrace, ngramLimit)
	err := inputHandler.Start()

This mode is primarily intended for development and testing new lexicon
tables before deploying to server mode. Meta commands (:stats, :ngrams,
:stop, :restart, :reload) poke at the run state directly.

# Resolution Engine

The core functionality is provided by the lex package, which implements
the decomposition ladder over a lexicon Provider, and the lexicon package,
which loads the text tables into patricia tries.

	lx, err := lexicon.Open("data", lexicon.Options{})
	engine, err := lex.New(lx, lex.Options{})
	token := engine.Resolve("unhappiness")

Recognizer chains compile from config rule names and run in front of the
lexicon inside a cascade; the first member with a definite answer wins.

# Command Line Flags

The following flags control application behavior:

	-lexicon string
	    Directory containing the .lex tables (default "data")
	-config string
	    Path to a custom TOML config file
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-trace
	    Show decomposition traces in CLI output (default from config)
	-ngrams int
	    Number of phrases :ngrams prints (default from config)

The application automatically resolves lexicon and config paths relative
to the executable location, supporting both development and production
deployments.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/arvhem/wordtag/internal/cli"
	"github.com/arvhem/wordtag/internal/logger"
	"github.com/arvhem/wordtag/internal/utils"
	"github.com/arvhem/wordtag/pkg/config"
	"github.com/arvhem/wordtag/pkg/lex"
	"github.com/arvhem/wordtag/pkg/lexicon"
	"github.com/arvhem/wordtag/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.4.0-beta"
	AppName = "wordtag"
	gh      = "https://github.com/arvhem/wordtag"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	// custom Flags
	showVersion := flag.Bool("version", false, "Show current version")
	configFlag := flag.String("config", "", "Path to a custom TOML config file")
	lexiconDir := flag.String("lexicon", defaultConfig.Lexicon.Dir, "Directory containing the .lex tables")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	showTrace := flag.Bool("trace", defaultConfig.CLI.ShowTrace, "Show decomposition traces in CLI output")
	ngramLimit := flag.Int("ngrams", defaultConfig.CLI.NgramLimit, "Number of phrases :ngrams prints")

	flag.Parse()

	if *showVersion {
		vlog := logger.Default("")

		styles := log.DefaultStyles()

		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
			Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})

		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

		vlog.SetStyles(styles)

		vlog.Print("")
		vlog.Print("[ WordTag ] Resolves words into tags, really fast!")
		vlog.Print("", "version", Version)
		vlog.Print("")
		vlog.Print("use -h or --help to see available options")
		vlog.Print("Github Repo", "gh", gh)

		os.Exit(0)
	}

	// Initialize path resolver for robust path handling
	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, configPath, err := config.LoadConfigWithPriority(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if configPath != "" {
		log.Debugf("Using config file: (%s)", configPath)
	}

	// The -lexicon flag wins over the config file only when it was set
	// explicitly.
	dir := appConfig.Lexicon.Dir
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "lexicon" {
			dir = *lexiconDir
		}
	})
	if dir == "" {
		dir = *lexiconDir
	}

	// Pathfinder for the table dir
	resolvedDir, err := pathResolver.GetLexiconDir(dir)
	if err != nil {
		log.Fatalf("Failed to resolve lexicon dir:(%v)", err)
	}

	log.Debugf("Using lexicon dir at: %s", resolvedDir)

	lx, err := lexicon.Open(resolvedDir, appConfig.Lexicon.Options())
	if err != nil {
		log.Fatalf("Failed to open lexicon: %v", err)
	}
	log.Debugf("Loaded %d words from tables %v", lx.WordCount(), lx.Tables())

	if file := appConfig.Recognizer.TLDFile; file != "" {
		tlds, err := readTLDFile(file, resolvedDir)
		if err != nil {
			log.Warnf("TLD list %s not loaded: %v", file, err)
		} else {
			lex.RegisterTLDs(tlds)
			log.Debugf("Registered %d TLDs for the URL recognizer", len(tlds))
		}
	}

	var trace lex.TraceSink
	if *debugMode {
		trace = func(stage, word, note string) {
			log.Debug("resolve", "stage", stage, "word", word, "note", note)
		}
	}

	eng, err := buildEngine(appConfig, lx, trace)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	// CLI would be mainly used for testing and dbg purposes.
	// Any new lexicon tables or rules should be tried in CLI mode first.
	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("CLI info:",
			"showTrace", *showTrace,
			"ngramLimit", *ngramLimit)

		inputHandler := cli.NewInputHandler(eng, lx, *showTrace, *ngramLimit)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(eng, lx, appConfig)

	showStartupInfo(resolvedDir, lx)

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// buildEngine assembles the resolver: a plain lexicon engine, or a
// cascade with the configured recognizer chain in front of it.
func buildEngine(cfg *config.Config, lx *lexicon.Lexicon, trace lex.TraceSink) (lex.Engine, error) {
	opts := cfg.Engine.Options()
	opts.Trace = trace

	specs := cfg.Recognizer.Specs()
	if len(specs) == 0 {
		return lex.New(lx, opts)
	}
	chain, err := lex.NewChain(specs...)
	if err != nil {
		return nil, err
	}
	words, err := lex.New(lx, lex.Options{Trace: trace})
	if err != nil {
		return nil, err
	}
	return lex.NewCascade([]lex.Member{chain, words}, opts)
}

// readTLDFile loads one TLD per line, comments and blanks skipped. A
// relative path is resolved against the lexicon directory.
func readTLDFile(path, lexiconDir string) ([]string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(lexiconDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tlds []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tlds = append(tlds, line)
	}
	return tlds, nil
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(dataDir string, lx *lexicon.Lexicon) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("=========")
	println(" WordTag ")
	println("=========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("lexicon dir: ( %s )", dataDir)
	log.Infof("words loaded: [ %d ]", lx.WordCount())
	log.Info("status: ready")
	println("=========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
