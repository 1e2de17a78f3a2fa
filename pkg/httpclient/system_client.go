package httpclient

import (
	"context"
	"time"

	"github.com/samvad-hq/sysfetch/pkg/sysreq"
)

// SystemClient adapts pkg/sysreq to the httpclient.Client interface. Requests
// are served by whichever command-line client is installed.
type SystemClient struct {
	timeout time.Duration
	log     sysreq.Logger
}

// NewSystemClient creates a SystemClient. A zero timeout means no limit.
func NewSystemClient(timeout time.Duration, log sysreq.Logger) *SystemClient {
	return &SystemClient{timeout: timeout, log: log}
}

// Get fetches url through the resolved client. Headers cannot be forwarded
// and are dropped. The response status is always StatusUnknown.
func (s *SystemClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := sysreq.NewRequest(url).Logger(s.log)
	if s.timeout > 0 {
		req.Timeout(s.timeout)
	}
	if len(headers) > 0 && s.log != nil {
		s.log.DebugObj("system client ignores request headers", "headers", headerNames(headers))
	}

	resp, err := req.SendContext(ctx)
	if err != nil {
		return nil, err
	}
	return &systemResponse{resp: resp}, nil
}

func headerNames(headers map[string]string) []string {
	names := make([]string, 0, len(headers))
	for k := range headers {
		names = append(names, k)
	}
	return names
}

type systemResponse struct {
	resp *sysreq.Response
}

func (r *systemResponse) Body() []byte    { return r.resp.Body }
func (r *systemResponse) StatusCode() int { return StatusUnknown }

// Backend reports which client served the response.
func (r *systemResponse) Backend() sysreq.Backend { return r.resp.Backend }
