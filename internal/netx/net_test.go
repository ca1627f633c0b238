package netx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadToPresignedURL_Success(t *testing.T) {
	var gotMethod, gotCT string
	var gotBody []byte

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotCT = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	err := UploadToPresignedURL(context.Background(), ts.URL+"/journal-attachments/u/1-a.png?X-Amz-Signature=abc", "image/png", []byte("png!"))
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "image/png", gotCT)
	assert.Equal(t, []byte("png!"), gotBody)
}

func TestUploadToPresignedURL_DefaultContentTypeAndNoContent(t *testing.T) {
	var gotCT string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	require.NoError(t, UploadToPresignedURL(context.Background(), ts.URL, "", []byte("x")))
	assert.Equal(t, "application/octet-stream", gotCT)
}

func TestUploadToPresignedURL_Rejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("SignatureDoesNotMatch"))
	}))
	defer ts.Close()

	err := UploadToPresignedURL(context.Background(), ts.URL, "text/plain", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload failed: 403")
	assert.Contains(t, err.Error(), "SignatureDoesNotMatch")
}

func TestUploadToPresignedURL_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()

	err := UploadToPresignedURL(context.Background(), ts.URL, "", []byte("x"))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "upload failed")
}

func TestUploadToPresignedURL_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := UploadToPresignedURL(ctx, ts.URL, "", []byte("x"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUploadToPresignedURL_BadURL(t *testing.T) {
	err := UploadToPresignedURL(context.Background(), "://nope", "", nil)
	require.ErrorContains(t, err, "build upload request")
}
