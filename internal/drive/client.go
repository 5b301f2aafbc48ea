package drive

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultBaseURL   = "https://www.googleapis.com/drive/v3"
	defaultUploadURL = "https://www.googleapis.com/upload/drive/v3"
	defaultTokenURL  = "https://oauth2.googleapis.com/token"

	driveScope = "https://www.googleapis.com/auth/drive.file https://www.googleapis.com/auth/drive.metadata.readonly"

	folderMimeType = "application/vnd.google-apps.folder"
)

// ServiceAccount holds the fields we need from a Google Cloud service
// account JSON key file.
type ServiceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	ProjectID   string `json:"project_id"`
	TokenURI    string `json:"token_uri,omitempty"`
}

// Validate checks the required key file fields are present.
func (sa *ServiceAccount) Validate() error {
	if sa.ClientEmail == "" || sa.PrivateKey == "" || sa.ProjectID == "" {
		return fmt.Errorf("service account missing required fields (client_email, private_key, project_id)")
	}
	return nil
}

// File is a Drive file or folder as returned by the files listing.
type File struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MimeType    string `json:"mimeType"`
	Size        int64  `json:"size,string,omitempty"`
	CreatedTime string `json:"createdTime,omitempty"`
}

// IsFolder reports whether the entry is a Drive folder.
func (f *File) IsFolder() bool {
	return f.MimeType == folderMimeType
}

// Client talks to the Google Drive v3 REST API using a service account.
// Tokens are obtained via the OAuth2 JWT-bearer flow and cached until
// shortly before expiry.
type Client struct {
	account    *ServiceAccount
	privateKey *rsa.PrivateKey
	httpClient *http.Client

	baseURL   string
	uploadURL string
	tokenURL  string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient parses the service account's RSA key and returns a client.
func NewClient(account *ServiceAccount) (*Client, error) {
	if err := account.Validate(); err != nil {
		return nil, err
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(account.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}

	tokenURL := defaultTokenURL
	if account.TokenURI != "" {
		tokenURL = account.TokenURI
	}

	return &Client{
		account:    account,
		privateKey: key,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // uploads can be large
		},
		baseURL:   defaultBaseURL,
		uploadURL: defaultUploadURL,
		tokenURL:  tokenURL,
	}, nil
}

// Email returns the service account identity.
func (c *Client) Email() string { return c.account.ClientEmail }

// ProjectID returns the service account's GCP project.
func (c *Client) ProjectID() string { return c.account.ProjectID }

// token returns a valid access token, refreshing when within a minute of
// expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   c.account.ClientEmail,
		"scope": driveScope,
		"aud":   c.tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange failed (status %d): %s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("token exchange returned empty token")
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = now.Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	log.Printf("[drive] authenticated as %s (token valid %ds)", c.account.ClientEmail, tokenResp.ExpiresIn)
	return c.accessToken, nil
}

// Authenticate forces a token exchange now. Used to verify credentials when
// connecting.
func (c *Client) Authenticate(ctx context.Context) error {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()
	_, err := c.token(ctx)
	return err
}

// do sends an authenticated request, retrying once on transient failures
// (network errors, 429, 5xx). The build function must return a fresh request
// each attempt since bodies are consumed.
func (c *Client) do(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			log.Printf("[drive] retrying after transient error: %v", lastErr)
			select {
			case <-time.After(2 * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		token, err := c.token(ctx)
		if err != nil {
			return nil, err
		}
		req, err := build()
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("drive API error (status %d): %s", resp.StatusCode, string(body))
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}

// escapeQueryValue escapes a string for use inside a single-quoted Drive
// query term.
func escapeQueryValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return s
}

// FindFolder returns the ID of a non-trashed folder with the given name, or
// "" when none exists. With parentID set, only direct children match.
func (c *Client) FindFolder(ctx context.Context, name, parentID string) (string, error) {
	query := fmt.Sprintf("name='%s' and mimeType='%s' and trashed=false", escapeQueryValue(name), folderMimeType)
	if parentID != "" {
		query += fmt.Sprintf(" and '%s' in parents", parentID)
	}

	params := url.Values{
		"q":      {query},
		"fields": {"files(id, name)"},
	}
	resp, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, "GET", c.baseURL+"/files?"+params.Encode(), nil)
	})
	if err != nil {
		return "", fmt.Errorf("find folder %q: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("find folder %q (status %d): %s", name, resp.StatusCode, string(body))
	}

	var listResp struct {
		Files []File `json:"files"`
	}
	if err := json.Unmarshal(body, &listResp); err != nil {
		return "", fmt.Errorf("parse folder listing: %w", err)
	}
	if len(listResp.Files) == 0 {
		return "", nil
	}
	return listResp.Files[0].ID, nil
}

// CreateFolder creates a folder and returns its ID.
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	metadata := map[string]interface{}{
		"name":     name,
		"mimeType": folderMimeType,
	}
	if parentID != "" {
		metadata["parents"] = []string{parentID}
	}
	jsonBody, err := json.Marshal(metadata)
	if err != nil {
		return "", err
	}

	resp, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/files", bytes.NewReader(jsonBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("create folder %q (status %d): %s", name, resp.StatusCode, string(body))
	}

	var created File
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("parse create response: %w", err)
	}
	return created.ID, nil
}

// EnsureFolder returns the ID of the named folder, creating it when missing.
func (c *Client) EnsureFolder(ctx context.Context, name, parentID string) (string, error) {
	id, err := c.FindFolder(ctx, name, parentID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	id, err = c.CreateFolder(ctx, name, parentID)
	if err != nil {
		return "", err
	}
	log.Printf("[drive] created folder %q (%s)", name, id)
	return id, nil
}

// UploadFile uploads content with its metadata in a single multipart/related
// request and returns the new file ID.
func (c *Client) UploadFile(ctx context.Context, name, mimeType string, data []byte, folderID string) (string, error) {
	metadata := map[string]interface{}{"name": name}
	if folderID != "" {
		metadata["parents"] = []string{folderID}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	metaPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"application/json; charset=UTF-8"},
	})
	if err != nil {
		return "", err
	}
	if _, err := metaPart.Write(metaJSON); err != nil {
		return "", err
	}

	mediaPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {mimeType},
	})
	if err != nil {
		return "", err
	}
	if _, err := mediaPart.Write(data); err != nil {
		return "", err
	}
	writer.Close()

	contentType := "multipart/related; boundary=" + writer.Boundary()
	payload := buf.Bytes()

	resp, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, "POST", c.uploadURL+"/files?uploadType=multipart", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("upload %q: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload %q (status %d): %s", name, resp.StatusCode, string(body))
	}

	var uploaded File
	if err := json.Unmarshal(body, &uploaded); err != nil {
		return "", fmt.Errorf("parse upload response: %w", err)
	}
	log.Printf("[drive] uploaded %q (%s, %d bytes)", name, uploaded.ID, len(data))
	return uploaded.ID, nil
}

// ListFiles returns the non-trashed files in a folder (or everything visible
// to the service account when folderID is empty), newest first. All pages
// are fetched.
func (c *Client) ListFiles(ctx context.Context, folderID string) ([]File, error) {
	query := "trashed=false"
	if folderID != "" {
		query += fmt.Sprintf(" and '%s' in parents", folderID)
	}

	files := []File{}
	pageToken := ""
	for {
		params := url.Values{
			"q":       {query},
			"fields":  {"nextPageToken, files(id, name, mimeType, createdTime, size)"},
			"orderBy": {"createdTime desc"},
		}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		resp, err := c.do(ctx, func() (*http.Request, error) {
			return http.NewRequestWithContext(ctx, "GET", c.baseURL+"/files?"+params.Encode(), nil)
		})
		if err != nil {
			return nil, fmt.Errorf("list files: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("list files (status %d): %s", resp.StatusCode, string(body))
		}

		var listResp struct {
			NextPageToken string `json:"nextPageToken"`
			Files         []File `json:"files"`
		}
		if err := json.Unmarshal(body, &listResp); err != nil {
			return nil, fmt.Errorf("parse file listing: %w", err)
		}

		files = append(files, listResp.Files...)
		if listResp.NextPageToken == "" {
			return files, nil
		}
		pageToken = listResp.NextPageToken
	}
}
