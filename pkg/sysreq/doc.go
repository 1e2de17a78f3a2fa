// Package sysreq performs HTTP GET requests by delegating to a command-line
// HTTP client that is already installed on the host.
//
// No network stack is linked in. The first request probes for wget, curl and
// PowerShell (in that order on Unix-like systems; PowerShell is preferred over
// curl on Windows), caches the first one found for the lifetime of the
// process, and runs it once per request:
//
//	body, err := sysreq.Get("https://example.org/")
//
//	resp, err := sysreq.NewRequest("https://example.org/").
//	    Timeout(5 * time.Second).
//	    Send()
//
// # Security
//
// URLs must use the http or https scheme. The URL is always handed to the
// client as a single element of the process argument vector; no shell is ever
// involved, so `$VAR`, `${VAR}`, backticks and other shell syntax in a URL are
// passed through literally.
//
// # Limitations
//
// HTTP semantics belong to the delegated binary. Redirects, retries and status
// handling are whatever it does; a 404 page returned with exit code 0 is a
// successful response. Bodies are buffered in full.
//
// Timeouts are enforced by the client binary. Without a context there is no
// way to cancel a request early; GetContext and Request.SendContext kill the
// child process when the context ends. A goroutine that stops waiting does not
// guarantee the child is reaped promptly.
//
// Probing happens once. A client installed after the first request is not
// picked up until the process restarts.
package sysreq
