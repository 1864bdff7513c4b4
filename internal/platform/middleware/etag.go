package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// bufferedWriter holds the response so its ETag can be computed before
// anything reaches the client.
type bufferedWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *bufferedWriter) Write(b []byte) (int, error) { return w.buf.Write(b) }
func (w *bufferedWriter) WriteHeader(code int)        { w.status = code }

// ETag tags successful GET responses with a strong ETag over the body and
// answers a matching If-None-Match with 304. Dataset responses only change
// when the server restarts with a new snapshot, so maxAge can be generous.
func ETag(maxAge int) echo.MiddlewareFunc {
	cacheControl := fmt.Sprintf("public, max-age=%d", maxAge)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet {
				return next(c)
			}

			res := c.Response()
			orig := res.Writer
			bw := &bufferedWriter{ResponseWriter: orig, status: http.StatusOK}
			res.Writer = bw
			err := next(c)
			res.Writer = orig
			if err != nil {
				// Nothing was flushed; let the error handler write to orig.
				res.Committed = false
				return err
			}

			if bw.status < 300 {
				sum := sha256.Sum256(bw.buf.Bytes())
				etag := `"` + hex.EncodeToString(sum[:16]) + `"`
				res.Header().Set("ETag", etag)
				res.Header().Set("Cache-Control", cacheControl)
				if etagMatch(req.Header.Get("If-None-Match"), etag) {
					orig.WriteHeader(http.StatusNotModified)
					return nil
				}
			}
			orig.WriteHeader(bw.status)
			_, err = orig.Write(bw.buf.Bytes())
			return err
		}
	}
}

// etagMatch handles comma-separated lists, weak validators and "*".
func etagMatch(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	for _, candidate := range strings.Split(header, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == etag {
			return true
		}
	}
	return false
}
