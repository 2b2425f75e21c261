package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/schema"
)

// MaxBodyBytes bounds the size of a POST body.
const MaxBodyBytes = 1 << 20

// Request decoding failures. All of them surface to callers as InvalidParameters.
var (
	ErrEmptyQuery        = errors.New("query is required")
	ErrMalformedBody     = errors.New("malformed request body")
	ErrMalformedQuery    = errors.New("malformed query string")
	ErrMalformedVars     = errors.New("variables must be a JSON object")
	ErrUnsupportedMethod = errors.New("unsupported method")
)

// GraphQLRequest is the parsed form of an inbound operation.
type GraphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// queryParams is the GET form; variables arrive as a JSON string.
type queryParams struct {
	Query         string `schema:"query"`
	OperationName string `schema:"operationName"`
	Variables     string `schema:"variables"`
}

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// DecodeGraphQLRequest reads the operation from a POST JSON body or from the
// query string of a GET request.
func DecodeGraphQLRequest(r *http.Request) (GraphQLRequest, error) {
	var req GraphQLRequest
	switch r.Method {
	case http.MethodPost:
		if err := DecodeJSON(r, &req); err != nil {
			return GraphQLRequest{}, err
		}
	case http.MethodGet:
		var params queryParams
		if err := queryDecoder.Decode(&params, r.URL.Query()); err != nil {
			return GraphQLRequest{}, fmt.Errorf("%w: %v", ErrMalformedQuery, err)
		}
		req.Query = params.Query
		req.OperationName = params.OperationName
		if strings.TrimSpace(params.Variables) != "" {
			dec := json.NewDecoder(strings.NewReader(params.Variables))
			dec.UseNumber()
			if err := dec.Decode(&req.Variables); err != nil {
				return GraphQLRequest{}, fmt.Errorf("%w: %v", ErrMalformedVars, err)
			}
		}
	default:
		return GraphQLRequest{}, fmt.Errorf("%w: %s", ErrUnsupportedMethod, r.Method)
	}

	if strings.TrimSpace(req.Query) == "" {
		return GraphQLRequest{}, ErrEmptyQuery
	}
	if req.Variables == nil {
		req.Variables = map[string]any{}
	}
	return req, nil
}

// DecodeJSON decodes the request body into v.
func DecodeJSON(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return nil
}
