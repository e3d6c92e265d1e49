package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

type GoogleProvider struct {
	Config      *oauth2.Config
	UserInfoURL string
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		UserInfoURL: googleUserInfoURL,
	}
}

func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.Config.AuthCodeURL(state)
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Exchange trades the callback code for a token and fetches the profile.
func (g *GoogleProvider) Exchange(ctx context.Context, code string) (OAuthProfile, error) {
	tok, err := g.Config.Exchange(ctx, code)
	if err != nil {
		return OAuthProfile{}, errors.Wrap(err, "could not exchange oauth code")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.UserInfoURL, nil)
	if err != nil {
		return OAuthProfile{}, err
	}
	resp, err := g.Config.Client(ctx, tok).Do(req)
	if err != nil {
		return OAuthProfile{}, errors.Wrap(err, "could not fetch google profile")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return OAuthProfile{}, errors.Errorf("google userinfo returned %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return OAuthProfile{}, errors.Wrap(err, "could not read google profile")
	}
	var info googleUserInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return OAuthProfile{}, errors.Wrap(err, "could not decode google profile")
	}
	return OAuthProfile{
		Provider:          "google",
		ProviderAccountID: info.Sub,
		Email:             info.Email,
		EmailVerified:     info.EmailVerified,
		Name:              info.Name,
		Image:             info.Picture,
		Raw:               raw,
	}, nil
}
