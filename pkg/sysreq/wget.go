package sysreq

import (
	"context"
	"time"
)

// wgetExitNetworkFailure is wget's exit status for network failures, which is
// what a read or connect timeout produces.
const wgetExitNetworkFailure = 4

func wgetArgs(url string, timeout time.Duration) []string {
	return []string{
		"--timeout=" + formatSeconds(timeout),
		"--tries=1",
		"-qO", "-",
		url,
	}
}

func fetchWget(ctx context.Context, run runFunc, url string, timeout time.Duration) ([]byte, error) {
	res, err := run(ctx, Wget.Command(), wgetArgs(url, timeout))
	if err != nil {
		return nil, &IOError{Backend: Wget, Err: err}
	}
	if res.success() {
		return res.stdout, nil
	}
	if res.exitCode == wgetExitNetworkFailure {
		return nil, timedOut(Wget)
	}
	return nil, commandFailed(Wget, res)
}
