package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
	"github.com/BruksfildServices01/salon-scheduler/internal/idempotency"
)

const (
	HeaderIdempotencyKey   = "Idempotency-Key"
	HeaderIdempotentReplay = "Idempotent-Replayed"

	maxIdempotencyKeyLen = 128
)

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response when a request repeats its
// Idempotency-Key. Requests without the header pass through.
// 5xx, 429, retryable business errors and handler panics release the key
// so the client may retry with it.
func Idempotency(store idempotency.Store, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			httperr.BadRequest(c, "invalid_idempotency_key", httperr.Message("invalid_idempotency_key"))
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			httperr.BadRequest(c, "invalid_request", httperr.Message("invalid_request"))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		scoped := c.Request.Method + " " + c.FullPath() + " " + key
		if pid, ok := c.Get(ContextProviderID); ok {
			scoped = fmt.Sprintf("%s provider=%v", scoped, pid)
		}
		fp := fingerprint(body)
		ctx := c.Request.Context()

		existing, reserved, err := store.Reserve(ctx, scoped, fp)
		if err != nil {
			log.Warn().Err(err).Msg("idempotency store unavailable, continuing without it")
			c.Next()
			return
		}

		if !reserved {
			switch {
			case existing.Fingerprint != fp:
				httperr.BadRequest(c, "idempotency_key_mismatch", httperr.Message("idempotency_key_mismatch"))
			case !existing.Done:
				c.JSON(http.StatusConflict, httperr.HTTPError{
					Code:      "request_in_progress",
					Message:   httperr.Message("request_in_progress"),
					Retryable: true,
				})
			default:
				c.Header(HeaderIdempotentReplay, "true")
				c.Data(existing.Status, "application/json; charset=utf-8", existing.Body)
			}
			c.Abort()
			return
		}

		// finalizing must survive a client that hung up mid-request
		bg := context.WithoutCancel(ctx)
		release := func() {
			if err := store.Release(bg, scoped); err != nil {
				log.Warn().Err(err).Msg("idempotency release failed")
			}
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rec

		finished := false
		defer func() {
			if !finished {
				release()
			}
		}()

		c.Next()
		finished = true

		status := rec.Status()
		if status >= 500 || status == http.StatusTooManyRequests || c.GetBool(httperr.ContextRetryable) {
			release()
			return
		}

		if err := store.Complete(bg, scoped, idempotency.Record{
			Fingerprint: fp,
			Status:      status,
			Body:        rec.body.Bytes(),
		}); err != nil {
			log.Warn().Err(err).Msg("idempotency complete failed")
		}
	}
}

func fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
