package sysreq

import (
	"context"
	"time"
)

// curlExitOperationTimedOut is CURLE_OPERATION_TIMEDOUT.
const curlExitOperationTimedOut = 28

// curlArgs disables globbing (-g) so brackets and braces in the URL are sent
// as written, and follows redirects (-L).
func curlArgs(url string, timeout time.Duration) []string {
	return []string{
		"-g",
		"-m", formatSeconds(timeout),
		"-L",
		url,
	}
}

func fetchCurl(ctx context.Context, run runFunc, url string, timeout time.Duration) ([]byte, error) {
	res, err := run(ctx, Curl.Command(), curlArgs(url, timeout))
	if err != nil {
		return nil, &IOError{Backend: Curl, Err: err}
	}
	if res.success() {
		return res.stdout, nil
	}
	if res.exitCode == curlExitOperationTimedOut {
		return nil, timedOut(Curl)
	}
	return nil, commandFailed(Curl, res)
}
