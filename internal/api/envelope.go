package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagebound/bookstore-server/internal/http/response"
)

// EnvelopeTransformer wraps every huma response body in response.Envelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case *APIError:
		return response.Fail(body.Code, body.Message, body.Details), nil
	case error:
		return response.Fail(statusCode(status), body.Error(), nil), nil
	}

	env := response.OK(v)
	env.Success = strings.HasPrefix(status, "2")
	return env, nil
}

// statusCode maps a status string such as "404" to its error code.
func statusCode(status string) string {
	n, err := strconv.Atoi(status)
	if err != nil {
		n = http.StatusInternalServerError
	}
	return response.CodeForStatus(n)
}
