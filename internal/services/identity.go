package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartview/spark-backend/internal/database"
	"github.com/heartview/spark-backend/internal/models"
)

var (
	// ErrProviderUnavailable means a network call to the identity provider
	// failed. The login attempt is abandoned; no retry.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	// ErrProviderToken means the provider answered but issued no access token.
	ErrProviderToken = errors.New("identity provider did not issue a token")
)

// KakaoBridge exchanges a Kakao authorization code for a local user record.
type KakaoBridge struct {
	clientID     string
	clientSecret string
	redirectURI  string
	tokenURL     string
	profileURL   string
	httpClient   *http.Client
}

func NewKakaoBridge(clientID, clientSecret, redirectURI, tokenURL, profileURL string) *KakaoBridge {
	return &KakaoBridge{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		tokenURL:     tokenURL,
		profileURL:   profileURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

type kakaoTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type kakaoProfileResponse struct {
	ID         int64 `json:"id"`
	Properties struct {
		Nickname     string `json:"nickname"`
		ProfileImage string `json:"profile_image"`
	} `json:"properties"`
}

// Login runs the two-step bridge: code → access token → profile, then looks up
// or creates the local user keyed by provider id.
func (b *KakaoBridge) Login(ctx context.Context, code string) (*models.User, error) {
	accessToken, err := b.exchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	profile, err := b.fetchProfile(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	return b.upsertUser(ctx, profile)
}

func (b *KakaoBridge) exchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", b.clientID)
	if b.clientSecret != "" {
		form.Set("client_secret", b.clientSecret)
	}
	form.Set("redirect_uri", b.redirectURI)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", ErrProviderUnavailable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", ErrProviderUnavailable
	}

	var parsed kakaoTokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.AccessToken == "" {
		return "", ErrProviderToken
	}

	return parsed.AccessToken, nil
}

func (b *KakaoBridge) fetchProfile(ctx context.Context, accessToken string) (*kakaoProfileResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.profileURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, ErrProviderUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrProviderUnavailable
	}

	var profile kakaoProfileResponse
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil || profile.ID == 0 {
		return nil, ErrProviderUnavailable
	}

	return &profile, nil
}

// upsertUser reuses the local user for a known provider id and creates one
// with a derived username on first login.
func (b *KakaoBridge) upsertUser(ctx context.Context, profile *kakaoProfileResponse) (*models.User, error) {
	providerID := strconv.FormatInt(profile.ID, 10)

	var user models.User
	var avatarURL, region sql.NullString

	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT id, username, display_name, avatar_url, region, created_at, is_active
		FROM users WHERE provider = 'kakao' AND provider_id = $1
	`, providerID).Scan(&user.ID, &user.Username, &user.DisplayName, &avatarURL, &region, &user.CreatedAt, &user.IsActive)

	if err == nil {
		user.Provider = "kakao"
		user.ProviderID = providerID
		user.AvatarURL = avatarURL.String
		user.Region = region.String
		return &user, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	username := deriveUsername(providerID)
	userID := uuid.New()
	now := time.Now().UTC()

	_, err = database.PostgresDB.ExecContext(ctx, `
		INSERT INTO users (id, username, display_name, provider, provider_id, avatar_url, created_at, is_active)
		VALUES ($1, $2, $3, 'kakao', $4, $5, $6, TRUE)
	`, userID, username, profile.Properties.Nickname, providerID, profile.Properties.ProfileImage, now)
	if err != nil {
		return nil, err
	}

	return &models.User{
		ID:          userID,
		Username:    username,
		DisplayName: profile.Properties.Nickname,
		Provider:    "kakao",
		ProviderID:  providerID,
		AvatarURL:   profile.Properties.ProfileImage,
		CreatedAt:   now,
		IsActive:    true,
	}, nil
}

// deriveUsername builds a username from the provider id, keeping within the
// 20-character username column.
func deriveUsername(providerID string) string {
	username := fmt.Sprintf("kakao_%s", providerID)
	if len(username) > 20 {
		username = username[:20]
	}
	return username
}
