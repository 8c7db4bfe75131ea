package server

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/arvhem/wordtag/internal/logger"
	"github.com/arvhem/wordtag/internal/utils"
	"github.com/arvhem/wordtag/pkg/config"
	"github.com/arvhem/wordtag/pkg/lex"
	"github.com/arvhem/wordtag/pkg/lexicon"
	"github.com/arvhem/wordtag/pkg/tok"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for word tagging
type Server struct {
	eng      lex.Engine
	lx       *lexicon.Lexicon
	tk       *tok.Tokenizer
	cfg      *config.Config
	reader   *bufio.Reader
	writer   io.Writer
	log      *log.Logger
	requests int
}

// NewServer creates a new tagging server using stdin/stdout for IPC
func NewServer(eng lex.Engine, lx *lexicon.Lexicon, cfg *config.Config) *Server {
	return newServer(eng, lx, cfg, os.Stdin, os.Stdout)
}

func newServer(eng lex.Engine, lx *lexicon.Lexicon, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	return &Server{
		eng:    eng,
		lx:     lx,
		tk:     tok.New(eng, tok.Options{}),
		cfg:    cfg,
		reader: bufio.NewReader(r),
		writer: w,
		log:    logger.New("ipc"),
	}
}

// Start begins listening for IPC requests
func (s *Server) Start() error {
	s.log.Debug("Starting server loop")

	// Signal that the server is ready
	s.sendResponse(StatusResponse{Status: "ready"})

	dec := msgpack.NewDecoder(s.reader)
	for {
		var req Request
		if err := dec.Decode(&req); err != nil {
			if err == io.EOF {
				return nil
			}
			s.log.Errorf("Decoding request: %v", err)
			return err
		}
		s.handleRequest(req)
	}
}

// handleRequest dispatches one decoded request by command name. Every
// ReloadEvery requests the lexicon mtimes are re-checked first.
func (s *Server) handleRequest(req Request) {
	s.requests++
	if every := s.cfg.Server.ReloadEvery; every > 0 && s.requests%every == 0 {
		s.reloadQuietly()
	}

	switch req.Cmd {
	case "resolve":
		s.handleResolve(req)
	case "text":
		s.handleText(req)
	case "stop":
		s.eng.SignalStop()
		s.sendResponse(StatusResponse{ID: req.ID, Status: "ok"})
	case "restart":
		s.eng.Restart()
		s.sendResponse(StatusResponse{ID: req.ID, Status: "ok"})
	case "stats":
		s.handleStats(req)
	case "ngrams":
		s.handleNgrams(req)
	case "reload":
		s.handleReload(req)
	case "health":
		s.sendResponse(StatusResponse{ID: req.ID, Status: "ok", WordCount: s.lx.WordCount()})
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown command: %s", req.Cmd), 400)
	}
}

// handleResolve processes a single word resolution request.
func (s *Server) handleResolve(req Request) {
	if req.Word == "" {
		s.sendError(req.ID, "Missing 'w' field", 400)
		s.log.Debug("Word is empty in request")
		return
	}

	start := time.Now()
	token := s.eng.Resolve(req.Word)
	elapsed := time.Since(start)

	s.sendResponse(ResolveResponse{
		ID:        req.ID,
		Tokens:    []TokenPayload{payloadFor(token)},
		Count:     1,
		TimeTaken: elapsed.Microseconds(),
	})
}

// handleText runs a whole line through the embedding tokenizer, so one
// request can produce many tokens and move the phrase boundary.
func (s *Server) handleText(req Request) {
	if req.Text == "" {
		s.sendError(req.ID, "Missing 'x' field", 400)
		s.log.Debug("Text is empty in request")
		return
	}

	start := time.Now()
	tokens := s.tk.Text(req.Text)
	elapsed := time.Since(start)

	payloads := make([]TokenPayload, len(tokens))
	for i, t := range tokens {
		payloads[i] = payloadFor(t)
	}
	s.sendResponse(ResolveResponse{
		ID:        req.ID,
		Tokens:    payloads,
		Count:     len(payloads),
		TimeTaken: elapsed.Microseconds(),
	})
}

// handleStats reports the run counters, plus one frequency map when the
// selector asks for it.
func (s *Server) handleStats(req Request) {
	resp := StatsResponse{
		ID:      req.ID,
		Lookups: s.eng.Lookups(),
		Unknown: s.eng.UnknownCount(),
	}
	switch req.Which {
	case "":
	case "words":
		resp.Words = s.eng.WordCounts()
	case "unknown":
		resp.Words = s.eng.UnknownWordCounts()
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown stats selector: %s", req.Which), 400)
		return
	}
	s.sendResponse(resp)
}

// handleNgrams returns phrase counts ranked by tally, capped at the
// requested limit. The normalize flag removes nested double counting
// before ranking.
func (s *Server) handleNgrams(req Request) {
	start := time.Now()
	counts := s.eng.NgramCounts()
	if req.Normalize {
		counts = s.eng.NormalizeNgrams(counts)
	}
	ranked := utils.TopCounts(counts, req.Limit)
	elapsed := time.Since(start)

	entries := make([]NgramEntry, len(ranked))
	for i, ent := range ranked {
		entries[i] = NgramEntry{Phrase: ent.Key, Count: ent.Count}
	}
	s.sendResponse(NgramResponse{
		ID:        req.ID,
		Ngrams:    entries,
		Count:     len(entries),
		TimeTaken: elapsed.Microseconds(),
	})
}

// handleReload re-reads lexicon files whose mtime moved since load.
func (s *Server) handleReload(req Request) {
	changed, err := s.lx.Reload()
	if err != nil {
		s.sendError(req.ID, fmt.Sprintf("Reload failed: %v", err), 500)
		return
	}
	if changed {
		s.log.Debugf("Lexicon reloaded on request %s", req.ID)
	}
	s.sendResponse(StatusResponse{ID: req.ID, Status: "ok", Reloaded: changed})
}

// reloadQuietly runs the periodic mtime re-check between requests.
func (s *Server) reloadQuietly() {
	changed, err := s.lx.Reload()
	if err != nil {
		s.log.Warnf("Periodic lexicon reload: %v", err)
		return
	}
	if changed {
		s.log.Debugf("Lexicon reloaded after %d requests", s.requests)
	}
}

// payloadFor shrinks a token to its wire form.
func payloadFor(t lex.Token) TokenPayload {
	return TokenPayload{
		Word:  t.Surface,
		Tag:   t.Tag,
		Trace: t.Trace,
		Extra: t.Extra,
	}
}

// sendResponse marshals the given response into msgpack and writes it to
// the client, one message after another on the same stream.
func (s *Server) sendResponse(response any) {
	data, err := msgpack.Marshal(response)
	if err != nil {
		s.log.Errorf("Encoding response: %v", err)
		s.sendError("", "Internal server error", 500)
		return
	}
	if _, err := s.writer.Write(data); err != nil {
		s.log.Errorf("Writing response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(RequestError{ID: id, Error: message, Code: code})
}
