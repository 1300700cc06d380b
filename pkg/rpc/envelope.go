package rpc

import "encoding/json"

const (
	jsonrpcVersion  = "2.0"
	protocolVersion = "2025-03-26"
	serverName      = "elasticsearch"
)

// Error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeToolFailure    = -32000
)

// Request is a decoded JSON-RPC envelope. ID is kept raw so it is echoed back
// exactly as the client sent it.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response always carries an id; it is null when the request id is unknown.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is the JSON-RPC error object.
type Error struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    *ErrorData `json:"data,omitempty"`
}

// ErrorData carries tool failure diagnostics. Trace is only filled in verbose mode.
type ErrorData struct {
	Kind  string   `json:"kind"`
	Trace []string `json:"trace,omitempty"`
}

// Notification is a message without an id.
type Notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type initializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      serverInfo     `json:"serverInfo"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type toolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

type callToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type callToolResult struct {
	Name   string `json:"name"`
	Output any    `json:"output"`
}

var nullID = json.RawMessage("null")

func result(id json.RawMessage, v any) *Response {
	return &Response{JSONRPC: jsonrpcVersion, ID: normalizeID(id), Result: v}
}

func errorResponse(id json.RawMessage, code int, msg string) *Response {
	return &Response{
		JSONRPC: jsonrpcVersion,
		ID:      normalizeID(id),
		Error:   &Error{Code: code, Message: msg},
	}
}

func normalizeID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return nullID
	}
	return id
}
