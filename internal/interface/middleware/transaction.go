package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"account-service/internal/infrastructure/postgres"
	"account-service/pkg/helpers"
	"account-service/pkg/response"
)

// Beginner opens a transaction. Satisfied by *pgxpool.Pool.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

const ctxAfterCommitKey = "afterCommit"

// AfterCommit defers fn until the request's transaction has committed. Hooks
// never run when the transaction rolls back or the commit fails; a route
// without the transaction middleware never runs them at all.
func AfterCommit(c *gin.Context, fn func()) {
	hooks, _ := c.Get(ctxAfterCommitKey)
	fns, _ := hooks.([]func())
	c.Set(ctxAfterCommitKey, append(fns, fn))
}

func runAfterCommit(c *gin.Context) {
	hooks, _ := c.Get(ctxAfterCommitKey)
	fns, _ := hooks.([]func())
	for _, fn := range fns {
		fn()
	}
}

// bufferedWriter holds status and body in memory until flush. Headers go to
// the real writer's header map, which is only sent on flush.
type bufferedWriter struct {
	gin.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *bufferedWriter) WriteHeader(status int) { w.status = status }

func (w *bufferedWriter) WriteHeaderNow() {}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.buf.WriteString(s)
}

func (w *bufferedWriter) Written() bool {
	return w.status != 0 || w.buf.Len() > 0
}

func (w *bufferedWriter) Size() int { return w.buf.Len() }

func (w *bufferedWriter) Status() int {
	if w.status != 0 {
		return w.status
	}
	return w.ResponseWriter.Status()
}

func (w *bufferedWriter) flush() {
	if w.status != 0 {
		w.ResponseWriter.WriteHeader(w.status)
	}
	if w.buf.Len() > 0 {
		_, _ = w.ResponseWriter.Write(w.buf.Bytes())
	}
}

func (w *bufferedWriter) discard() {
	w.status = 0
	w.buf.Reset()
}

// Transaction binds one database transaction to the request. The handle is
// published into the request context so every repository call targets it
// instead of a shared connection; when the handler chain finishes without a
// recorded error the transaction commits, otherwise it rolls back. The
// deferred rollback is a no-op after commit, which releases the connection
// exactly once on every path, including panics and commit failures.
//
// The handler's response is buffered and only released once the commit
// outcome is known: gin streams writes immediately, and a success the client
// has already seen cannot be taken back when the commit fails. A failed
// commit discards the buffered success and answers 500 instead.
//
// A shared singleton connection would turn one dead connection into a total
// outage and cannot be reasoned about under concurrent requests; one
// transaction per request bounds the blast radius and makes multi-step
// writes atomic.
func Transaction(db Beginner, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		tx, err := db.Begin(ctx)
		if err != nil {
			helpers.LogError(logger, "failed to begin transaction", err, nil)
			response.Error[any](c, http.StatusInternalServerError, "Internal Server Error", nil)
			c.Abort()
			return
		}

		defer func() {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				helpers.LogError(logger, "transaction rollback failed", rbErr, nil)
			}
		}()

		bw := &bufferedWriter{ResponseWriter: c.Writer}
		c.Writer = bw
		// Restored during panic unwinding too, so gin's recovery writes its
		// 500 to the real writer, not the abandoned buffer.
		defer func() { c.Writer = bw.ResponseWriter }()

		c.Request = c.Request.WithContext(postgres.WithTx(ctx, tx))
		c.Next()

		if len(c.Errors) > 0 {
			// Handler reported a failure; the deferred rollback discards any
			// partial writes. The handler's own error response stands.
			bw.flush()
			return
		}

		if err := tx.Commit(ctx); err != nil {
			helpers.LogError(logger, "transaction commit failed", err, nil)
			bw.discard()
			c.Writer = bw.ResponseWriter
			response.Error[any](c, http.StatusInternalServerError, "Internal Server Error", nil)
			return
		}

		runAfterCommit(c)
		bw.flush()
	}
}
