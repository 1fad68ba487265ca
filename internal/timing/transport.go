package timing

import (
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptrace"
	"sync"
	"time"
)

// Transport wraps next so that every completed request lands in the buffer.
func (b *Buffer) Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &tracingTransport{next: next, buf: b}
}

type tracingTransport struct {
	next http.RoundTripper
	buf  *Buffer
}

type recorder struct {
	mu    sync.Mutex
	entry Entry
	done  bool
	buf   *Buffer
}

func (r *recorder) mark(f func(e *Entry)) {
	r.mu.Lock()
	f(&r.entry)
	r.mu.Unlock()
}

func (r *recorder) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return
	}
	r.done = true
	r.entry.ResponseEnd = time.Now()
	if r.entry.ResponseStart.IsZero() {
		r.entry.ResponseStart = r.entry.ResponseEnd
	}
	r.buf.Add(r.entry)
}

func (t *tracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := &recorder{buf: t.buf, entry: Entry{Name: req.URL.String(), StartTime: time.Now()}}

	trace := &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) {
			rec.mark(func(e *Entry) { e.DNSStart = time.Now() })
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			rec.mark(func(e *Entry) { e.DNSEnd = time.Now() })
		},
		ConnectStart: func(string, string) {
			rec.mark(func(e *Entry) {
				if e.ConnectStart.IsZero() {
					e.ConnectStart = time.Now()
				}
			})
		},
		ConnectDone: func(string, string, error) {
			rec.mark(func(e *Entry) { e.ConnectEnd = time.Now() })
		},
		TLSHandshakeStart: func() {
			rec.mark(func(e *Entry) { e.SecureConnectStart = time.Now() })
		},
		TLSHandshakeDone: func(tls.ConnectionState, error) {
			rec.mark(func(e *Entry) { e.ConnectEnd = time.Now() })
		},
		GotConn: func(httptrace.GotConnInfo) {
			rec.mark(func(e *Entry) { e.RequestStart = time.Now() })
		},
		GotFirstResponseByte: func() {
			rec.mark(func(e *Entry) { e.ResponseStart = time.Now() })
		},
	}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	resp.Body = &trackedBody{ReadCloser: resp.Body, rec: rec}
	return resp, nil
}

// trackedBody records the end of the response on EOF or Close.
type trackedBody struct {
	io.ReadCloser
	rec *recorder
}

func (b *trackedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err == io.EOF {
		b.rec.finish()
	}
	return n, err
}

func (b *trackedBody) Close() error {
	err := b.ReadCloser.Close()
	b.rec.finish()
	return err
}
