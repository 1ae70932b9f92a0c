package bitbucket

import (
	"time"

	"go.abhg.dev/testing/stub"
)

// SetPageSize changes the page size used by iterators
// for the duration of a test.
func SetPageSize(n int) (restore func()) {
	return stub.Value(&_pageSize, n)
}

// SetRetryInitialInterval changes the delay before the first retry
// for the duration of a test.
func SetRetryInitialInterval(d time.Duration) (restore func()) {
	return stub.Value(&_retryInitialInterval, d)
}

var ParseErrors = parseErrors

var HooksPath = hooksPath
