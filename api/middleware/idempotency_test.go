package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/freightlink-backend/pkg/errors"
)

type fakeStore struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = fmt.Sprint(value)
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

type countingHandler struct {
	calls  int
	status int
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.calls++
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(h.status)
	_, _ = fmt.Fprintf(w, `{"data":{"call":%d}}`, h.calls)
}

func deductRequest(key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/loads/abc/settlement/deduct", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	next := &countingHandler{status: http.StatusOK}
	handler := Idempotency(store, SettlementIdempotencyTTL, nil)(next)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, deductRequest("key-1", `{}`))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, deductRequest("key-1", `{}`))
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, first.Body.String(), second.Body.String())
	require.Equal(t, "application/json", second.Header().Get("Content-Type"))
	require.Equal(t, 1, next.calls)

	for _, ttl := range store.ttls {
		require.Equal(t, SettlementIdempotencyTTL, ttl)
	}
}

func TestIdempotencyRejectsReusedKeyWithDifferentBody(t *testing.T) {
	store := newFakeStore()
	next := &countingHandler{status: http.StatusOK}
	handler := Idempotency(store, 0, nil)(next)

	handler.ServeHTTP(httptest.NewRecorder(), deductRequest("key-1", `{"reason":"a"}`))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, deductRequest("key-1", `{"reason":"b"}`))
	require.Equal(t, http.StatusConflict, resp.Code)
	require.Contains(t, resp.Body.String(), string(pkgerrors.CodeIdempotency))
	require.Equal(t, 1, next.calls)
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	next := &countingHandler{status: http.StatusOK}
	handler := Idempotency(newFakeStore(), 0, nil)(next)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, deductRequest("", `{}`))
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Zero(t, next.calls)
}

func TestIdempotencySkipsServerErrors(t *testing.T) {
	store := newFakeStore()
	next := &countingHandler{status: http.StatusServiceUnavailable}
	handler := Idempotency(store, 0, nil)(next)

	handler.ServeHTTP(httptest.NewRecorder(), deductRequest("key-1", `{}`))
	handler.ServeHTTP(httptest.NewRecorder(), deductRequest("key-1", `{}`))
	require.Equal(t, 2, next.calls)
	require.Empty(t, store.data)
}

func TestIdempotencyScopesKeysPerCaller(t *testing.T) {
	store := newFakeStore()
	next := &countingHandler{status: http.StatusOK}
	handler := Idempotency(store, 0, nil)(next)

	req := deductRequest("key-1", `{}`)
	req = req.WithContext(context.WithValue(req.Context(), ctxUserID, "user-a"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	req = deductRequest("key-1", `{}`)
	req = req.WithContext(context.WithValue(req.Context(), ctxUserID, "user-b"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 2, next.calls)
	require.Len(t, store.data, 2)
}
