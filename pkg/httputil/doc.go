// Package httputil provides HTTP helpers shared by the catalog clients.
//
// # Retry
//
// [Retry] wraps a request with retries for transient failures. Only errors
// wrapped in [RetryableError] are retried; everything else is returned on
// the first attempt:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// The delay doubles after every failed attempt, and waiting is abandoned as
// soon as ctx is cancelled. A 429 answer whose Retry-After asks for a longer
// pause is honoured up to [MaxRetryAfter].
//
// The jlcsearch client uses a single attempt by default so that a cache miss
// costs exactly one remote request; more attempts are opt-in through the
// [catalog] section of the configuration file.
package httputil
