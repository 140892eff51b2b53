// Package rpc exposes a JSON-RPC 2.0 surface used by sibling services to
// fetch or create users without going through the public HTTP API.
package rpc

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"user-backend/internal/classifications"
	"user-backend/internal/shared/server/middleware"
	"user-backend/internal/users"
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// A response carries exactly one of result and error; result is present even
// when null, which is how getUserById reports an unknown user.
type rpcSuccess struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result"`
}

type rpcFailure struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Error   *rpcError `json:"error"`
}

// Server dispatches JSON-RPC methods to the domain services.
type Server struct {
	Users           *users.Service
	Classifications *classifications.Service
}

// NewServer constructs a Server.
func NewServer(usersSvc *users.Service, classificationsSvc *classifications.Service) *Server {
	return &Server{Users: usersSvc, Classifications: classificationsSvc}
}

// Engine builds a dedicated gin engine for the RPC listener.
func (s *Server) Engine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Logging(), middleware.Recovery())
	engine.POST("/rpc", s.Handle)
	return engine
}

// Handle serves a single JSON-RPC call.
func (s *Server) Handle(c *gin.Context) {
	var req rpcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, errorResponse(nil, codeParseError, "parse error"))
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		c.JSON(http.StatusOK, errorResponse(req.ID, codeInvalidRequest, "invalid request"))
		return
	}

	result, rpcErr := s.dispatch(c, req)
	if rpcErr != nil {
		c.JSON(http.StatusOK, rpcFailure{JSONRPC: "2.0", ID: req.ID, Error: rpcErr})
		return
	}
	c.JSON(http.StatusOK, rpcSuccess{JSONRPC: "2.0", ID: req.ID, Result: result})
}

func (s *Server) dispatch(c *gin.Context, req rpcRequest) (any, *rpcError) {
	ctx := c.Request.Context()

	switch req.Method {
	case "getUsersByIds":
		var ids []string
		if err := json.Unmarshal(req.Params, &ids); err != nil {
			return nil, &rpcError{Code: codeInvalidParams, Message: "expected an array of user ids"}
		}
		list, err := s.Users.GetByIDs(ctx, ids)
		if err != nil {
			return nil, &rpcError{Code: codeServerError, Message: err.Error()}
		}
		return list, nil

	case "getUserById":
		id, rpcErr := singleStringParam(req.Params)
		if rpcErr != nil {
			return nil, rpcErr
		}
		user, err := s.Users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, users.ErrNotFound) {
				return nil, nil // null result, not an error
			}
			return nil, &rpcError{Code: codeServerError, Message: err.Error()}
		}
		return user, nil

	case "createUser":
		var params []users.User
		if err := json.Unmarshal(req.Params, &params); err != nil || len(params) != 1 {
			return nil, &rpcError{Code: codeInvalidParams, Message: "expected a single user object"}
		}
		if !users.IsIDValid(params[0].ID) {
			return nil, &rpcError{Code: codeInvalidParams, Message: "user id is invalid"}
		}
		created, err := s.Users.Create(ctx, params[0])
		if err != nil {
			return nil, &rpcError{Code: codeServerError, Message: err.Error()}
		}
		return created, nil

	case "getUserClassifications":
		id, rpcErr := singleStringParam(req.Params)
		if rpcErr != nil {
			return nil, rpcErr
		}
		records, err := s.Classifications.GetUserClassifications(ctx, id)
		if err != nil {
			return nil, &rpcError{Code: codeServerError, Message: err.Error()}
		}
		if records == nil {
			records = []classifications.Classification{}
		}
		return records, nil

	default:
		return nil, &rpcError{Code: codeMethodNotFound, Message: "method not found"}
	}
}

func singleStringParam(params json.RawMessage) (string, *rpcError) {
	var list []string
	if err := json.Unmarshal(params, &list); err != nil || len(list) != 1 || list[0] == "" {
		return "", &rpcError{Code: codeInvalidParams, Message: "expected a single user id"}
	}
	return list[0], nil
}

func errorResponse(id any, code int, message string) rpcFailure {
	return rpcFailure{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}}
}
