package sysreq

import "context"

// Get fetches url with the installed HTTP client and no timeout.
func Get(url string) ([]byte, error) {
	return GetContext(context.Background(), url)
}

// GetContext is like Get, but kills the client process if ctx ends first.
func GetContext(ctx context.Context, url string) ([]byte, error) {
	resp, err := NewRequest(url).SendContext(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
