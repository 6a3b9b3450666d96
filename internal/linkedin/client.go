package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/maheshrc27/linkpost/internal/models"
	"github.com/maheshrc27/linkpost/internal/transfer"
	"golang.org/x/oauth2"
	lioauth "golang.org/x/oauth2/linkedin"
)

const (
	apiBaseURL = "https://api.linkedin.com"

	PersonURNPrefix       = "urn:li:person:"
	OrganizationURNPrefix = "urn:li:organization:"

	maxResponseBytes = 1 << 20
	maxImageBytes    = 10 << 20

	feedImageRecipe = "urn:li:digitalmediaRecipe:feedshare-image"
)

var Scopes = []string{"openid", "profile", "email", "w_member_social"}

type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // seconds
	Expiry       time.Time
}

// Share is the content of a single LinkedIn post. MediaURL, when set, must
// point at an image; it is uploaded to LinkedIn and shown in the post.
type Share struct {
	Author   string
	Text     string
	MediaURL string
}

type Client struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	apiBaseURL string
}

func NewClient(clientID, clientSecret, redirectURI string, timeout time.Duration) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       Scopes,
			Endpoint:     lioauth.Endpoint,
		},
		httpClient: &http.Client{Timeout: timeout},
		apiBaseURL: apiBaseURL,
	}
}

// AuthorURN builds the author reference LinkedIn expects for an account.
func AuthorURN(acc *models.LinkedInAccount) string {
	if acc.AccountType == models.AccountTypeCompany {
		return OrganizationURNPrefix + acc.LinkedInID
	}
	return PersonURNPrefix + acc.LinkedInID
}

func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

func (c *Client) Exchange(ctx context.Context, code string) (*Token, error) {
	if code == "" {
		return nil, &AuthError{Message: "authorization code is empty"}
	}

	tok, err := c.oauth.Exchange(c.oauthContext(ctx), code)
	if err != nil {
		return nil, classifyOAuthError("exchange code", err)
	}

	return toToken(tok, time.Now()), nil
}

// RefreshToken trades a refresh token for a new access token. A single attempt
// is made; the caller decides whether to try again.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*Token, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	src := c.oauth.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, classifyOAuthError("refresh token", err)
	}

	return toToken(tok, time.Now()), nil
}

func (c *Client) UserInfo(ctx context.Context, accessToken string) (*transfer.LinkedInUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+"/v2/userinfo", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "fetch user info", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Op: "read user info", Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &AuthError{Message: "linkedin rejected access token: " + errorMessage(resp.StatusCode, body)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info returned status %d: %s", resp.StatusCode, errorMessage(resp.StatusCode, body))
	}

	var info transfer.LinkedInUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.Sub == "" {
		return nil, errors.New("user info did not include a member id")
	}

	return &info, nil
}

// Publish creates a public post and returns the id LinkedIn assigned to it.
// Calling it twice with the same share creates two posts.
func (c *Client) Publish(ctx context.Context, accessToken string, share Share) (string, error) {
	var post transfer.LinkedInUGCPost
	post.Author = share.Author
	post.LifecycleState = "PUBLISHED"
	post.SpecificContent.ShareContent = transfer.LinkedInShareContent{
		ShareCommentary:    transfer.LinkedInShareText{Text: share.Text},
		ShareMediaCategory: "NONE",
	}
	if share.MediaURL != "" {
		asset, err := c.uploadImage(ctx, accessToken, share.Author, share.MediaURL)
		if err != nil {
			return "", err
		}
		post.SpecificContent.ShareContent.ShareMediaCategory = "IMAGE"
		post.SpecificContent.ShareContent.Media = []transfer.LinkedInShareMedia{
			{Status: "READY", Media: asset},
		}
	}
	post.Visibility.MemberNetworkVisibility = "PUBLIC"

	resp, body, err := c.sendJSON(ctx, http.MethodPost, c.apiBaseURL+"/v2/ugcPosts", accessToken, post, "publish post")
	if err != nil {
		return "", err
	}

	var created transfer.LinkedInUGCPostResponse
	_ = json.Unmarshal(body, &created)

	postID := created.ID
	if postID == "" {
		postID = resp.Header.Get("X-RestLi-Id")
	}
	if postID == "" {
		return "", &PublishError{StatusCode: resp.StatusCode, Message: "response did not include a post id"}
	}

	return postID, nil
}

// uploadImage copies the image at mediaURL into LinkedIn and returns the
// asset urn to reference from a share.
func (c *Client) uploadImage(ctx context.Context, accessToken, owner, mediaURL string) (string, error) {
	image, contentType, err := c.fetchImage(ctx, mediaURL)
	if err != nil {
		return "", err
	}

	var register transfer.LinkedInRegisterUpload
	register.RegisterUploadRequest.Recipes = []string{feedImageRecipe}
	register.RegisterUploadRequest.Owner = owner
	register.RegisterUploadRequest.ServiceRelationships = []transfer.LinkedInServiceRelationship{
		{RelationshipType: "OWNER", Identifier: "urn:li:userGeneratedContent"},
	}

	_, body, err := c.sendJSON(ctx, http.MethodPost, c.apiBaseURL+"/v2/assets?action=registerUpload", accessToken, register, "register image upload")
	if err != nil {
		return "", err
	}

	var registered transfer.LinkedInRegisterUploadResponse
	if err := json.Unmarshal(body, &registered); err != nil {
		return "", fmt.Errorf("failed to decode upload registration: %w", err)
	}
	uploadURL := registered.Value.UploadMechanism.HTTPRequest.UploadURL
	asset := registered.Value.Asset
	if uploadURL == "" || asset == "" {
		return "", &PublishError{StatusCode: http.StatusOK, Message: "upload registration did not include an upload url"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(image))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", contentType)

	if _, _, err := c.send(req, "upload image"); err != nil {
		return "", err
	}

	return asset, nil
}

func (c *Client) fetchImage(ctx context.Context, mediaURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", &TransportError{Op: "fetch image", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &PublishError{StatusCode: resp.StatusCode, Message: "post image is not available: " + http.StatusText(resp.StatusCode)}
	}

	image, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", &TransportError{Op: "fetch image", Err: err}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return image, contentType, nil
}

func (c *Client) sendJSON(ctx context.Context, method, url, accessToken string, payload any, op string) (*http.Response, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	return c.send(req, op)
}

// send performs req and maps a non-2xx answer onto the error taxonomy.
func (c *Client) send(req *http.Request, op string) (*http.Response, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, nil, &TransportError{Op: "read " + op + " response", Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, nil, &AuthError{Message: "linkedin rejected access token: " + errorMessage(resp.StatusCode, body)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &PublishError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
	}

	return resp, body, nil
}

func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func toToken(tok *oauth2.Token, now time.Time) *Token {
	t := &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if !tok.Expiry.IsZero() {
		t.ExpiresIn = int64(tok.Expiry.Sub(now).Round(time.Second) / time.Second)
	}
	return t
}

func classifyOAuthError(op string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.Response != nil && re.Response.StatusCode >= http.StatusInternalServerError {
			return &TransportError{Op: op, Err: err}
		}
		msg := re.ErrorDescription
		if msg == "" {
			msg = re.ErrorCode
		}
		if msg == "" {
			msg = strings.TrimSpace(string(re.Body))
		}
		return &AuthError{Message: op + " rejected: " + msg, Err: err}
	}
	return &TransportError{Op: op, Err: err}
}

func errorMessage(status int, body []byte) string {
	var apiErr transfer.LinkedInErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return http.StatusText(status)
}
