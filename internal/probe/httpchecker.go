package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"
)

const drainLimit = 64 << 10

type HTTPProber struct {
	Client  *http.Client
	Method  string
	Timeout time.Duration
}

// NewHTTPProber builds a prober with no cookie jar and no client-level
// timeout; the per-request context carries the deadline.
func NewHTTPProber(timeout time.Duration, rt http.RoundTripper) *HTTPProber {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPProber{
		Client:  &http.Client{Transport: rt},
		Method:  http.MethodGet,
		Timeout: timeout,
	}
}

func (h *HTTPProber) Probe(ctx context.Context, target string) Result {
	cctx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(cctx, h.Method, target, nil)
	if err != nil {
		return Result{Success: false, Kind: KindNetwork, Err: err, StartedAt: start}
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("User-Agent", "uptimeboard/1.0")

	resp, err := h.Client.Do(req)
	latency := elapsedMS(start)
	if err != nil {
		kind := classifyError(err)
		if kind == KindCanceled && ctx.Err() == nil {
			kind = KindTimeout
		}
		if kind != KindTimeout && latency >= h.Timeout.Milliseconds() {
			kind = KindTimeout
		}
		return Result{
			Success:   kind == KindAmbiguous,
			LatencyMS: latency,
			Kind:      kind,
			Err:       err,
			StartedAt: start,
		}
	}
	// The status code is deliberately ignored: any response means reachable.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
	_ = resp.Body.Close()

	return Result{Success: true, LatencyMS: latency, StartedAt: start}
}

func elapsedMS(start time.Time) int64 {
	return time.Since(start).Round(time.Millisecond).Milliseconds()
}

func classifyError(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}

	var (
		opErr   *net.OpError
		dnsErr  *net.DNSError
		addrErr *net.AddrError
		certErr *tls.CertificateVerificationError
		uaErr   x509.UnknownAuthorityError
		hostErr x509.HostnameError
		invErr  x509.CertificateInvalidError
		recErr  tls.RecordHeaderError
	)
	switch {
	case errors.As(err, &opErr),
		errors.As(err, &dnsErr),
		errors.As(err, &addrErr),
		errors.As(err, &certErr),
		errors.As(err, &uaErr),
		errors.As(err, &hostErr),
		errors.As(err, &invErr),
		errors.As(err, &recErr),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return KindNetwork
	}
	return KindAmbiguous
}
