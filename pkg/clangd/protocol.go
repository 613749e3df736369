package clangd

import (
	"encoding/json"
	"fmt"

	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/syntax"
)

// LSP method names.
const (
	methodInitialize  = "initialize"
	methodInitialized = "initialized"
	methodShutdown    = "shutdown"
	methodExit        = "exit"
	methodDidOpen     = "textDocument/didOpen"
	methodDidChange   = "textDocument/didChange"
	methodDidClose    = "textDocument/didClose"
	methodAST         = "textDocument/ast"
	methodCancel      = "$/cancelRequest"
)

// message is any JSON-RPC frame read from the server. The id stays raw
// because servers may use strings for their own requests.
type message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type versionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type textDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type didOpenParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

type contentChange struct {
	Text string `json:"text"`
}

type didChangeParams struct {
	TextDocument   versionedTextDocumentIdentifier `json:"textDocument"`
	ContentChanges []contentChange                 `json:"contentChanges"`
}

type didCloseParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

type astParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Range        document.Range         `json:"range"`
}

type cancelParams struct {
	ID int64 `json:"id"`
}

type initializeParams struct {
	ProcessID    int            `json:"processId"`
	RootURI      string         `json:"rootUri,omitempty"`
	Capabilities map[string]any `json:"capabilities"`
}

// astNode is clangd's ASTNode. Arcana is the raw clang dump and is dropped.
type astNode struct {
	Role     string          `json:"role"`
	Kind     string          `json:"kind"`
	Detail   string          `json:"detail,omitempty"`
	Arcana   string          `json:"arcana,omitempty"`
	Range    *document.Range `json:"range,omitempty"`
	Children []*astNode      `json:"children,omitempty"`
}

func (n *astNode) raw() *syntax.RawNode {
	if n == nil {
		return nil
	}
	out := &syntax.RawNode{Kind: n.Kind, Role: n.Role, Detail: n.Detail, Range: n.Range}
	for _, child := range n.Children {
		out.Children = append(out.Children, child.raw())
	}
	return out
}
