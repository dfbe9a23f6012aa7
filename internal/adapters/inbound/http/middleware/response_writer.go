package middleware

import (
	"net/http"
)

// StatusRecorder remembers the status code and body size written through it.
type StatusRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten uint64
	wroteHeader  bool
}

func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	if rec, ok := w.(*StatusRecorder); ok {
		return rec
	}

	return &StatusRecorder{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (w *StatusRecorder) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}

	w.statusCode = code
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *StatusRecorder) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}

	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += uint64(n)

	return n, err
}

func (w *StatusRecorder) StatusCode() int {
	return w.statusCode
}

func (w *StatusRecorder) BytesWritten() uint64 {
	return w.bytesWritten
}

func (w *StatusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *StatusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
