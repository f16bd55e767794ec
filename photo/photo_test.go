package photo_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/solapur/traffic-reports/photo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// LOCAL STORAGE
// =============================================================================

func TestStorage_Save_KeepsAllowedExtension(t *testing.T) {
	dir := t.TempDir()
	storage := photo.NewStorage(dir)

	photoPath, imageURL, err := storage.Save("SLP-2026-0005", "photo.PNG", []byte("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "uploads/reports/SLP-2026-0005.png", photoPath)
	assert.Equal(t, "/uploads/reports/SLP-2026-0005.png", imageURL)

	data, err := os.ReadFile(filepath.Join(dir, "reports", "SLP-2026-0005.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestStorage_Save_FallsBackToJPG(t *testing.T) {
	storage := photo.NewStorage(t.TempDir())

	photoPath, _, err := storage.Save("SLP-2026-0006", "photo.exe", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/reports/SLP-2026-0006.jpg", photoPath)
}

func TestExtension(t *testing.T) {
	cases := map[string]string{
		"photo.jpg":  ".jpg",
		"photo.JPEG": ".jpeg",
		"photo.PNG":  ".png",
		"photo.gif":  ".gif",
		"photo.webp": ".webp",
		"photo.avif": ".avif",
		"photo.exe":  ".jpg",
		"photo.tiff": ".jpg",
		"photo":      ".jpg",
		"":           ".jpg",
	}
	for name, want := range cases {
		assert.Equal(t, want, photo.Extension(name), "filename %q", name)
	}
}

// =============================================================================
// REMOTE HOSTING
// =============================================================================

func TestHostClient_Unconfigured(t *testing.T) {
	var nilClient *photo.HostClient
	assert.False(t, nilClient.Configured())
	assert.False(t, (&photo.HostClient{}).Configured())

	url, err := (&photo.HostClient{}).Upload(context.Background(), "a.jpg", []byte("x"))
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestHostClient_Upload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "secret", r.FormValue("key"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "a.jpg", header.Filename)

		json.NewEncoder(w).Encode(map[string]string{"url": "https://img.example.com/a.jpg"})
	}))
	defer server.Close()

	client := &photo.HostClient{URL: server.URL, APIKey: "secret"}
	url, err := client.Upload(context.Background(), "a.jpg", []byte("bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/a.jpg", url)
}

func TestHostClient_UploadErrorIsNotFatalShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	client := &photo.HostClient{URL: server.URL}
	url, err := client.Upload(context.Background(), "a.jpg", []byte("bytes"))
	assert.Error(t, err)
	assert.Empty(t, url)
}

func TestHostClient_UploadBase64(t *testing.T) {
	var got []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, _, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		buf := make([]byte, 16)
		n, _ := file.Read(buf)
		got = buf[:n]
		json.NewEncoder(w).Encode(map[string]string{"url": "https://img.example.com/b.jpg"})
	}))
	defer server.Close()

	client := &photo.HostClient{URL: server.URL}
	url, err := client.UploadBase64(context.Background(), "data:image/jpeg;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/b.jpg", url)
	assert.Equal(t, []byte("hello"), got)
}
