package intake

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func post(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/notify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHandleNotify_Accepted(t *testing.T) {
	q := &fakeQueue{}
	r := newFakeRepo()
	srv := NewServer(zap.NewNop(), New(q, r, zap.NewNop()))

	w := post(t, srv, `{"customerId":"c1","notifyEmail":true,"emailConfig":{"email":"a@b.com","content":"hi","sender":"s@b.com"}}`)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"message":"Notification was sent for processing"}`, w.Body.String())
	assert.Len(t, q.jobs, 1)
	assert.Len(t, r.records, 1)
}

func TestHandleNotify_ValidationError(t *testing.T) {
	q := &fakeQueue{}
	r := newFakeRepo()
	srv := NewServer(zap.NewNop(), New(q, r, zap.NewNop()))

	w := post(t, srv, `{"customerId":"c1","notifyEmail":true}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Validation error"}`, w.Body.String())
	assert.Empty(t, q.jobs)
	assert.Empty(t, r.records)
}

func TestHandleNotify_MalformedJSON(t *testing.T) {
	q := &fakeQueue{}
	r := newFakeRepo()
	srv := NewServer(zap.NewNop(), New(q, r, zap.NewNop()))

	w := post(t, srv, `{"customerId":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Validation error"}`, w.Body.String())
	assert.Empty(t, q.jobs)
}

func TestHandleNotify_InternalError(t *testing.T) {
	q := &fakeQueue{err: assert.AnError}
	r := newFakeRepo()
	srv := NewServer(zap.NewNop(), New(q, r, zap.NewNop()))

	w := post(t, srv, `{"customerId":"c1","notifyEmail":true,"emailConfig":{"email":"a@b.com","content":"hi","sender":"s@b.com"}}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal error"}`, w.Body.String())
	require.Empty(t, r.records)
}
