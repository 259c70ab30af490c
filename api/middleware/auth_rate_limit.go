package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agrogas/agrogas-backend/api/responses"
	pkgerrors "github.com/agrogas/agrogas-backend/pkg/errors"
	"github.com/agrogas/agrogas-backend/pkg/logger"
)

// maxThrottledBody caps how much of an auth body is buffered to find the phone.
const maxThrottledBody = 16 << 10

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy throttles one auth surface (login, password reset) per
// client address and per account phone number. A zero limit disables that
// counter; a zero window disables the policy.
type AuthRateLimitPolicy struct {
	Name       string
	Window     time.Duration
	IPLimit    int
	PhoneLimit int
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.Window > 0 && (p.IPLimit > 0 || p.PhoneLimit > 0)
}

func (p AuthRateLimitPolicy) name() string {
	if n := strings.ToLower(strings.TrimSpace(p.Name)); n != "" {
		return n
	}
	return "auth"
}

// counter is one throttled dimension of a request.
type counter struct {
	scope string
	value string
	limit int
}

func (c counter) key(policy string) string {
	return fmt.Sprintf("%s:%s:%s", c.scope, policy, c.value)
}

// AuthRateLimit rejects requests with RATE_LIMIT_EXCEEDED once either counter
// passes its limit inside the window. Phone numbers are normalized then hashed
// before they reach the store or the logs.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			counters := make([]counter, 0, 2)
			if ip := clientIP(r); policy.IPLimit > 0 && ip != "" {
				counters = append(counters, counter{scope: "ip", value: ip, limit: policy.IPLimit})
			}
			if policy.PhoneLimit > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxThrottledBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
					return
				}
				r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))

				if phone := normalizePhone(extractPhone(body)); phone != "" {
					counters = append(counters, counter{scope: "phone", value: hashValue(phone), limit: policy.PhoneLimit})
				}
			}

			for _, c := range counters {
				allowed, count, err := store.FixedWindowAllow(ctx, c.key(policy.name()), int64(c.limit), policy.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					respondRateLimited(ctx, logg, w, policy, c, count)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy AuthRateLimitPolicy, c counter, count int64) {
	retryAfter := int(policy.Window.Round(time.Second).Seconds())
	if logg != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"policy":         policy.name(),
			"scope":          c.scope,
			c.scope + "_key": c.value,
			"attempts":       count,
			"limit":          c.limit,
			"window_seconds": retryAfter,
		}), "auth.rate_limit.blocked")
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		first, _, _ := strings.Cut(header, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// extractPhone reads the account phone from login and reset bodies. Clients
// send it as a string, though some older ones post a bare number.
func extractPhone(payload []byte) string {
	var body struct {
		Phone json.RawMessage `json:"phone"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || len(body.Phone) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(body.Phone, &s); err == nil {
		return s
	}
	return string(body.Phone)
}

// normalizePhone keeps digits and a leading plus so formatting variants of
// one number share a counter.
func normalizePhone(value string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(value) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
