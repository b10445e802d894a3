package proxy

import (
	"context"
	"errors"
	"time"

	apihttp "github.com/abdul-hamid-achik/apidoc/packages/http"
)

var errReadOnly = errors.New("proxied exchanges cannot perform requests")

// exchange is one forwarded request and its response, seen by the recorder
// as a session whose last call is already done.
type exchange struct {
	start time.Time
	input []byte

	request  *apihttp.CapturedRequest
	response *apihttp.Response
}

func (e *exchange) Do(context.Context, string, string, any, map[string]string) (*apihttp.Response, error) {
	return nil, errReadOnly
}

func (e *exchange) LastRequest() *apihttp.CapturedRequest {
	return e.request
}

func (e *exchange) LastResponse() *apihttp.Response {
	return e.response
}
