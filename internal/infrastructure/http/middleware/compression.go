package middleware

import (
	"compress/gzip"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

const brotliLevel = 5

// compressWriter defers choosing headers until the first body write so empty
// responses stay uncompressed.
type compressWriter struct {
	gin.ResponseWriter
	encoding string
	enc      io.WriteCloser
}

func (w *compressWriter) Write(b []byte) (int, error) {
	if w.enc == nil {
		h := w.ResponseWriter.Header()
		h.Del("Content-Length")
		h.Set("Content-Encoding", w.encoding)
		h.Add("Vary", "Accept-Encoding")

		if w.encoding == "br" {
			w.enc = brotli.NewWriterLevel(w.ResponseWriter, brotliLevel)
		} else {
			w.enc = gzip.NewWriter(w.ResponseWriter)
		}
	}
	return w.enc.Write(b)
}

func (w *compressWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *compressWriter) close() error {
	if w.enc == nil {
		return nil
	}
	return w.enc.Close()
}

// Compression encodes responses with brotli, falling back to gzip, when the
// client accepts it. Websocket upgrades pass through untouched.
func (m *Middleware) Compression() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.config.Server.EnableCompression || c.GetHeader("Upgrade") != "" {
			c.Next()
			return
		}

		encoding := negotiateEncoding(c.GetHeader("Accept-Encoding"))
		if encoding == "" {
			c.Next()
			return
		}

		cw := &compressWriter{ResponseWriter: c.Writer, encoding: encoding}
		c.Writer = cw
		defer func() {
			if err := cw.close(); err != nil {
				_ = c.Error(err)
			}
			c.Writer = cw.ResponseWriter
		}()

		c.Next()
	}
}

func negotiateEncoding(accept string) string {
	accept = strings.ToLower(accept)
	switch {
	case strings.Contains(accept, "br"):
		return "br"
	case strings.Contains(accept, "gzip"):
		return "gzip"
	default:
		return ""
	}
}
