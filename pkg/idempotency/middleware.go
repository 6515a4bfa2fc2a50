package idempotency

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
	"github.com/dmehra2102/commerce-choreography/pkg/httpx"
)

const (
	HeaderKey      = "Idempotency-Key"
	HeaderReplayed = "Idempotent-Replayed"
)

// Middleware guards POST, PUT and PATCH requests that carry an
// Idempotency-Key. Successful and client-error responses are stored; server
// errors release the key so the client can retry.
func Middleware(log *slog.Logger, store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HeaderKey)
			if key == "" || (r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch) {
				next.ServeHTTP(w, r)
				return
			}
			key = r.Method + ":" + r.URL.Path + ":" + key
			ctx := r.Context()

			ok, err := store.Reserve(ctx, key)
			if err != nil {
				log.Warn("idempotency store unavailable, passing through", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				replay(w, r, log, store, key)
				return
			}

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			bg := context.WithoutCancel(ctx)
			if rec.status >= http.StatusInternalServerError {
				if err := store.Release(bg, key); err != nil {
					log.Error("idempotency release failed", "err", err)
				}
				return
			}
			resp := Response{Status: rec.status, ContentType: rec.Header().Get("Content-Type"), Body: rec.body.Bytes()}
			if err := store.Complete(bg, key, resp); err != nil {
				log.Error("idempotency complete failed", "err", err)
			}
		})
	}
}

func replay(w http.ResponseWriter, r *http.Request, log *slog.Logger, store Store, key string) {
	resp, err := store.Lookup(r.Context(), key)
	if err != nil {
		httpx.WriteError(w, r, log, err)
		return
	}
	if resp == nil {
		httpx.WriteError(w, r, log, apperror.InvalidState("a request with this idempotency key is still in progress"))
		return
	}
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.Header().Set(HeaderReplayed, "true")
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
