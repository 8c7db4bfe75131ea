// Package cli handles cmd line input and token resolution for DBG and testing various features
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/arvhem/wordtag/internal/utils"
	"github.com/arvhem/wordtag/pkg/lex"
	"github.com/arvhem/wordtag/pkg/lexicon"
	"github.com/arvhem/wordtag/pkg/tok"
	"github.com/charmbracelet/log"
)

// InputHandler reads lines from stdin and resolves them into tagged
// tokens. It accepts flags to control behavior such as trace display
// and the phrase count shown by :ngrams.
type InputHandler struct {
	eng          lex.Engine
	lx           *lexicon.Lexicon
	tk           *tok.Tokenizer
	stops        map[string]struct{}
	showTrace    bool
	ngramLimit   int
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(eng lex.Engine, lx *lexicon.Lexicon, showTrace bool, ngramLimit int) *InputHandler {
	stops := make(map[string]struct{})
	for _, tag := range eng.DeclaredStopTags() {
		stops[tag] = struct{}{}
	}
	return &InputHandler{
		eng:        eng,
		lx:         lx,
		tk:         tok.New(eng, tok.Options{}),
		stops:      stops,
		showTrace:  showTrace,
		ngramLimit: ngramLimit,
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin, and passes
// the trimmed line to handleLine() or, for lines starting with a colon,
// to handleCommand(). Loop terminates if an error occurs while reading
// from stdin
func (h *InputHandler) Start() error {
	log.Print("WordTag CLI [BETA]")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a line and press Enter to see its tokens (Ctrl+C to exit, :help lists commands):")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			h.handleCommand(line)
			continue
		}
		h.handleLine(line)
	}
}

// handleLine resolves one input line into tokens and prints them.
// Also periodically re-checks the lexicon files for changes.
func (h *InputHandler) handleLine(line string) {
	h.requestCount++
	if h.requestCount%50 == 0 {
		if changed, err := h.lx.Reload(); err != nil {
			log.Warnf("Lexicon reload: %v", err)
		} else if changed {
			log.Info("Lexicon files changed, tables reloaded")
		}
	}

	start := time.Now()
	tokens := h.tk.Text(line)
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for %d tokens", elapsed, len(tokens))

	for i, t := range tokens {
		h.printToken(i+1, t)
	}
}

// printToken formats one resolved token: colored surface, then the tag
// with a stop marker and the decomposition trace when they apply.
func (h *InputHandler) printToken(n int, t lex.Token) {
	clWord := fmt.Sprintf("\033[38;5;75m%s\033[0m", t.Surface)
	tag := t.Tag
	if _, ok := h.stops[t.Tag]; ok {
		tag += " [stop]"
	}
	if h.showTrace && t.Trace != "" {
		log.Printf("%2d. %-40s %-12s %s", n, clWord, tag, t.Trace)
		return
	}
	log.Printf("%2d. %-40s %s", n, clWord, tag)
}

// handleCommand runs one meta command against the engine run state.
func (h *InputHandler) handleCommand(cmd string) {
	switch cmd {
	case ":stats":
		log.Printf("lookups: %s  unknown: %s  lexicon words: %s",
			utils.FormatWithCommas(h.eng.Lookups()),
			utils.FormatWithCommas(h.eng.UnknownCount()),
			utils.FormatWithCommas(h.lx.WordCount()))
		h.printCounts("unknown words", h.eng.UnknownWordCounts())
	case ":ngrams":
		counts := h.eng.NormalizeNgrams(nil)
		if len(counts) == 0 {
			log.Warn("No phrases counted yet")
			return
		}
		h.printCounts("phrases", counts)
	case ":stop":
		h.eng.SignalStop()
		log.Print("phrase boundary set")
	case ":restart":
		h.eng.Restart()
		log.Print("run state cleared")
	case ":reload":
		changed, err := h.lx.Reload()
		if err != nil {
			log.Errorf("Reload: %v", err)
			return
		}
		if changed {
			log.Print("lexicon reloaded")
		} else {
			log.Print("lexicon unchanged")
		}
	case ":help":
		log.Print(":stats    run counters and unknown words")
		log.Print(":ngrams   counted phrases, normalized")
		log.Print(":stop     end the current phrase")
		log.Print(":restart  clear counters, cache and phrases")
		log.Print(":reload   re-check lexicon files")
	default:
		log.Errorf("Unknown command: %s", cmd)
	}
}

// printCounts shows the top entries of a frequency map, ranked by tally.
func (h *InputHandler) printCounts(label string, counts map[string]int) {
	ranked := utils.TopCounts(counts, h.ngramLimit)
	if len(ranked) == 0 {
		return
	}
	log.Printf("top %d %s:", len(ranked), label)
	for i, entry := range ranked {
		clKey := fmt.Sprintf("\033[38;5;75m%s\033[0m", entry.Key)
		log.Printf("%2d. %-40s (count: %8s)", i+1, clKey, utils.FormatWithCommas(entry.Count))
	}
}
