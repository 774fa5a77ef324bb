package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/gymtrack/pkg"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "gymtrack-session||"
	tokensSetKey     = "gymtrack-sessions"
	tokenBytes       = 32
)

var ErrWrongPassword = errors.New("wrong username or password")

// Admin is the single account allowed to log in; it is configured through
// the environment, never stored.
type Admin struct {
	Username     string
	PasswordHash string
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Service issues and revokes login tokens. A token lives in redis under its
// own key (value: login unix time, expiring after ttl) and in a set used to
// find tokens whose key already expired.
type Service struct {
	admin       *Admin
	redisClient *redis.Client
	ttl         time.Duration
	// token generator, replaceable in tests
	RandStringFunc func(n int) (string, error)
}

func NewAuthService(
	admin *Admin,
	ttl time.Duration,
	redisClient *redis.Client,
) *Service {
	return &Service{
		admin:          admin,
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.RandomToken,
	}
}

func (as *Service) Login(ctx context.Context, credentials Credentials, createdAt time.Time) (string, error) {
	if as.admin.Username == "" ||
		credentials.Username != as.admin.Username ||
		!pkg.CheckPasswordHash(credentials.Password, as.admin.PasswordHash) {
		return "", ErrWrongPassword
	}

	token, err := as.RandStringFunc(tokenBytes)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	if err := as.redisClient.Set(ctx, sessionKeyPrefix+token, createdAt.Unix(), as.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	if err := as.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return "", fmt.Errorf("index session: %w", err)
	}

	return token, nil
}

// Logout revokes the token. It reports false when the token was unknown or
// had already expired.
func (as *Service) Logout(ctx context.Context, token string) (bool, error) {
	removed, err := as.redisClient.Del(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return false, err
	}
	return removed > 0, nil
}

// ScanAndClean drops indexed tokens whose session key is gone, and returns
// how many were dropped.
func (as *Service) ScanAndClean(ctx context.Context) int {
	tokens, err := as.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		log.Errorf("auth scan and clean, list sessions: %s", err)
		return 0
	}
	if len(tokens) == 0 {
		log.Debugln("auth scan and clean: no sessions")
		return 0
	}

	cleaned := 0
	for _, token := range tokens {
		exists, err := as.redisClient.Exists(ctx, sessionKeyPrefix+token).Result()
		if err != nil {
			log.Errorf("auth scan and clean, check session: %s", err)
			continue
		}
		if exists > 0 {
			continue
		}
		if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
			log.Errorf("auth scan and clean, unindex session: %s", err)
			continue
		}
		cleaned++
	}

	log.Debugf("auth scan and clean: %d of %d sessions expired", cleaned, len(tokens))
	return cleaned
}

func parseCreatedAt(val string) (time.Time, error) {
	createdAtUnix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed session value [%s]: %w", val, err)
	}
	return time.Unix(createdAtUnix, 0), nil
}
