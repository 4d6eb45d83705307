package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/emphub/internal/logging"
	"github.com/dmitrijs2005/emphub/internal/server/storage"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.UnixMilli(1700000000123)

type testEnv struct {
	srv       *Server
	users     *fakeUsers
	employees *fakeEmployees
	blobs     *storage.LocalStore
}

func newTestEnv(t *testing.T, mutate ...func(*Options)) *testEnv {
	t.Helper()
	blobs, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	opts := Options{
		Address:         "127.0.0.1:0",
		UploadURLPrefix: "/uploads",
		MaxUploadSize:   1 << 20,
	}
	for _, m := range mutate {
		m(&opts)
	}

	env := &testEnv{users: newFakeUsers(), employees: newFakeEmployees(), blobs: blobs}
	env.srv = NewServer(opts, logging.Nop{}, env.users, env.employees, blobs, nil, nil)
	env.srv.now = func() time.Time { return fixedNow }
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

type filePart struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, file *filePart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile(file.field, file.name)
		require.NoError(t, err)
		_, err = fw.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, r io.Reader) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(r).Decode(&v))
	return v
}
