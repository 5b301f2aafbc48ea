package drive

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func testAccountJSON(t *testing.T, tokenURL string) *ServiceAccount {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	return &ServiceAccount{
		ClientEmail: "studio@test-project.iam.gserviceaccount.com",
		PrivateKey:  string(keyPEM),
		ProjectID:   "test-project",
		TokenURI:    tokenURL,
	}
}

// tokenHandler serves the OAuth2 JWT-bearer exchange and counts calls.
func tokenHandler(t *testing.T, calls *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "urn:ietf:params:oauth:grant-type:jwt-bearer", r.FormValue("grant_type"))
		require.NotEmpty(t, r.FormValue("assertion"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-token",
			"expires_in":   3600,
		})
	}
}

func newTestClient(t *testing.T, mux *http.ServeMux, tokenCalls *int32) (*Client, *httptest.Server) {
	t.Helper()
	mux.HandleFunc("/token", tokenHandler(t, tokenCalls))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient(testAccountJSON(t, server.URL+"/token"))
	require.NoError(t, err)
	client.baseURL = server.URL + "/drive/v3"
	client.uploadURL = server.URL + "/upload/drive/v3"
	return client, server
}

func TestClientValidatesAccount(t *testing.T) {
	_, err := NewClient(&ServiceAccount{ClientEmail: "x@y"})
	require.Error(t, err)

	_, err = NewClient(&ServiceAccount{
		ClientEmail: "x@y", ProjectID: "p", PrivateKey: "not a pem",
	})
	require.Error(t, err)
}

func TestTokenCachedAcrossRequests(t *testing.T) {
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/drive/v3/files", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{"files": []File{}})
	})
	client, _ := newTestClient(t, mux, &tokenCalls)

	ctx := context.Background()
	_, err := client.ListFiles(ctx, "")
	require.NoError(t, err)
	_, err = client.ListFiles(ctx, "")
	require.NoError(t, err)

	require.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
}

func TestEnsureFolderCreatesWhenMissing(t *testing.T) {
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/drive/v3/files", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			q := r.URL.Query().Get("q")
			require.Contains(t, q, "name='Podcast Studio'")
			require.Contains(t, q, "trashed=false")
			json.NewEncoder(w).Encode(map[string]interface{}{"files": []File{}})
			return
		}
		var metadata map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&metadata))
		require.Equal(t, "Podcast Studio", metadata["name"])
		require.Equal(t, folderMimeType, metadata["mimeType"])
		json.NewEncoder(w).Encode(File{ID: "folder-123", Name: "Podcast Studio"})
	})
	client, _ := newTestClient(t, mux, &tokenCalls)

	id, err := client.EnsureFolder(context.Background(), "Podcast Studio", "")
	require.NoError(t, err)
	require.Equal(t, "folder-123", id)
}

func TestEnsureFolderReusesExisting(t *testing.T) {
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/drive/v3/files", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method, "existing folder must not be recreated")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"files": []File{{ID: "existing-id", Name: "Podcast Studio"}},
		})
	})
	client, _ := newTestClient(t, mux, &tokenCalls)

	id, err := client.EnsureFolder(context.Background(), "Podcast Studio", "")
	require.NoError(t, err)
	require.Equal(t, "existing-id", id)
}

func TestEnsureStudioLayout(t *testing.T) {
	var tokenCalls int32
	created := map[string]string{}
	mux := http.NewServeMux()
	mux.HandleFunc("/drive/v3/files", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(map[string]interface{}{"files": []File{}})
			return
		}
		var metadata map[string]interface{}
		json.NewDecoder(r.Body).Decode(&metadata)
		name := metadata["name"].(string)
		id := "id-" + strings.ReplaceAll(name, " ", "-")
		created[name] = id
		json.NewEncoder(w).Encode(File{ID: id, Name: name})
	})
	client, _ := newTestClient(t, mux, &tokenCalls)

	layout, err := EnsureStudioLayout(context.Background(), client, "Podcast Studio")
	require.NoError(t, err)

	require.Equal(t, created["Podcast Studio"], layout["root"])
	for _, name := range []string{FolderAudio, FolderNotes, FolderTranscripts, FolderDrafts} {
		require.Equal(t, created[name], layout[name], "missing subfolder %s", name)
	}
}

func TestUploadFileMultipart(t *testing.T) {
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/upload/drive/v3/files", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "multipart", r.URL.Query().Get("uploadType"))

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		require.Equal(t, "multipart/related", mediaType)

		reader := multipart.NewReader(r.Body, params["boundary"])

		metaPart, err := reader.NextPart()
		require.NoError(t, err)
		var metadata map[string]interface{}
		require.NoError(t, json.NewDecoder(metaPart).Decode(&metadata))
		require.Equal(t, "episode.wav", metadata["name"])
		require.Equal(t, []interface{}{"audio-folder"}, metadata["parents"])

		mediaPart, err := reader.NextPart()
		require.NoError(t, err)
		require.Equal(t, "audio/wav", mediaPart.Header.Get("Content-Type"))
		data, err := io.ReadAll(mediaPart)
		require.NoError(t, err)
		require.Equal(t, []byte("RIFF-fake-wav"), data)

		json.NewEncoder(w).Encode(File{ID: "uploaded-1", Name: "episode.wav"})
	})
	client, _ := newTestClient(t, mux, &tokenCalls)

	id, err := client.UploadFile(context.Background(), "episode.wav", "audio/wav", []byte("RIFF-fake-wav"), "audio-folder")
	require.NoError(t, err)
	require.Equal(t, "uploaded-1", id)
}

func TestListFilesPagination(t *testing.T) {
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/drive/v3/files", func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Query().Get("q"), "'folder-1' in parents")
		if r.URL.Query().Get("pageToken") == "" {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"nextPageToken": "page-2",
				"files":         []File{{ID: "a", Name: "a.wav"}},
			})
			return
		}
		require.Equal(t, "page-2", r.URL.Query().Get("pageToken"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"files": []File{{ID: "b", Name: "b.wav"}},
		})
	})
	client, _ := newTestClient(t, mux, &tokenCalls)

	files, err := client.ListFiles(context.Background(), "folder-1")
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Equal(t, "a", files[0].ID)
	require.Equal(t, "b", files[1].ID)
}

func TestRetryOnServerError(t *testing.T) {
	var tokenCalls, attempts int32
	mux := http.NewServeMux()
	mux.HandleFunc("/drive/v3/files", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			http.Error(w, "backend hiccup", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"files": []File{{ID: "ok", Name: "ok.wav"}},
		})
	})
	client, _ := newTestClient(t, mux, &tokenCalls)

	files, err := client.ListFiles(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestFileSizeParsedFromString(t *testing.T) {
	var f File
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","name":"a.wav","size":"1024"}`), &f))
	require.Equal(t, int64(1024), f.Size)
}

func TestManagerLifecycle(t *testing.T) {
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/token", tokenHandler(t, &tokenCalls))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	account := testAccountJSON(t, server.URL+"/token")
	accountJSON, err := json.Marshal(account)
	require.NoError(t, err)

	m := NewManager("Podcast Studio")
	require.False(t, m.Status().Connected)
	_, err = m.Client()
	require.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, m.Connect(context.Background(), accountJSON))
	status := m.Status()
	require.True(t, status.Connected)
	require.Equal(t, account.ClientEmail, status.Email)
	require.Equal(t, "test-project", status.ProjectID)

	m.Disconnect()
	require.False(t, m.Status().Connected)
}
