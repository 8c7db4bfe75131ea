/*
Package server implements msgpack IPC for word tagging services.

The server package provides a minimal interface for lexical token resolution using msgpack serialization over stdin/stdout.

The protocol uses binary msgpack encoding and supports single word resolution, whole text runs, run statistics, phrase counts, and lexicon lifecycle ops.
Messages are processed synchronously with timing info included in the hot path responses.

# IPC

The server operates on a request response model where clients send structured messages via stdin and receive responses through stdout.
Each message carries an ID field, a command name, and other fields based on the operation type.

Resolution requests use mainly this structure:

	{"id": "req_001", "cmd": "resolve", "w": "unhappiness"}

The server responds with the token stream and timing:

	{"id": "req_001", "s": [{"w": "unhappiness", "t": "s", "d": "unhappy+ness"}], "c": 1, "t": 145}

Whole lines go through the embedding tokenizer instead, so one request can yield many tokens:

	{"id": "req_002", "cmd": "text", "x": "Die Rotation begann am 12.03.2021."}

Run state ops cover statistics, phrase counts and the phrase boundary:

	{"id": "st_001", "cmd": "stats", "which": "unknown"}
	{"id": "ng_001", "cmd": "ngrams", "l": 16, "n": true}
	{"id": "sp_001", "cmd": "stop"}

Lifecycle ops: "restart" clears every per-run accumulator, "reload" re-reads
lexicon files whose mtime changed, "health" reports readiness and word count.

Response structures include status information and error details when an op fails.

The server maintains request counts for periodic lexicon reloading.

# Message Types

Request carries every field any command reads; unused fields stay off the wire.

ResolveResponse handles the resolution hot path for "resolve" and "text".
Responses contain token arrays with tag and decomposition trace, plus timing data.
NgramResponse returns phrase counts ranked by tally, with nested double
counting removed when the normalize flag is set.

StatsResponse and StatusResponse report run counters and lifecycle results
with full field names, matching the management ops they answer.

A "reload" cures unknown words immediately; words already resolved keep
their cached tags until a "restart".

msgpack encoding has ~30 to 50% smaller message sizes compared to JSON.
binary format enables faster parsing and generation, less errors and reducing latency in most cases.
*/
package server

// Request - one IPC request; Cmd selects the operation
type Request struct {
	ID        string `msgpack:"id"`
	Cmd       string `msgpack:"cmd"`
	Word      string `msgpack:"w,omitempty"`     // for "resolve"
	Text      string `msgpack:"x,omitempty"`     // for "text"
	Which     string `msgpack:"which,omitempty"` // for "stats": "words", "unknown"
	Limit     int    `msgpack:"l,omitempty"`     // for "ngrams"
	Normalize bool   `msgpack:"n,omitempty"`     // for "ngrams"
}

// TokenPayload - minimal resolved token
type TokenPayload struct {
	Word  string   `msgpack:"w"`
	Tag   string   `msgpack:"t"`
	Trace string   `msgpack:"d,omitempty"`
	Extra []string `msgpack:"e,omitempty"`
}

// ResolveResponse - token stream response for "resolve" and "text"
type ResolveResponse struct {
	ID        string         `msgpack:"id"`
	Tokens    []TokenPayload `msgpack:"s"`
	Count     int            `msgpack:"c"`
	TimeTaken int64          `msgpack:"t"`
}

// NgramEntry - one counted phrase
type NgramEntry struct {
	Phrase string `msgpack:"p"`
	Count  int    `msgpack:"c"`
}

// NgramResponse - phrase counts ranked by tally
type NgramResponse struct {
	ID        string       `msgpack:"id"`
	Ngrams    []NgramEntry `msgpack:"s"`
	Count     int          `msgpack:"c"`
	TimeTaken int64        `msgpack:"t"`
}

// STATE MESSAGES - run statistics and lifecycle (hot path uses short tags above)

// StatsResponse - run counters, plus one frequency map when a selector asked for it
type StatsResponse struct {
	ID      string         `msgpack:"id"`
	Lookups int            `msgpack:"lookups"`
	Unknown int            `msgpack:"unknown"`
	Words   map[string]int `msgpack:"words,omitempty"`
}

// StatusResponse - lifecycle operation response
type StatusResponse struct {
	ID        string `msgpack:"id,omitempty"`
	Status    string `msgpack:"status"`
	Reloaded  bool   `msgpack:"reloaded,omitempty"`
	WordCount int    `msgpack:"word_count,omitempty"`
}

// RequestError holds basic error information for failed requests
type RequestError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
