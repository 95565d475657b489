/*
Package media implements the media attestation service.

Attestation turns an untrusted media source URL into an opaque signed token
embedding its metadata. Verification of a source is asynchronous (it probes
the remote server); validation of an already-issued token is a local
signature check. The rest of the system stores and forwards tokens without
ever looking inside them.
*/
package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"

	"syncroom/internal/pkg/logx"
)

// VerifyTimeout bounds the remote probe of a media source.
const VerifyTimeout = 10 * time.Second

// MediaKindVideoFile is the only media kind currently attested.
const MediaKindVideoFile = "videoFile"

// Validation error kinds, mirrored on the wire for /media/check failures.
const (
	ErrInvalidSourceFormat = "invalidSourceFormat"
	ErrInvalidScheme       = "invalidScheme"
	ErrTimeout             = "timeout"
	ErrBadResponse         = "badResponse"
	ErrUnsupportedMime     = "unsupportedMime"
)

// supportedMimeTypes lists content types accepted as playable media sources.
var supportedMimeTypes = map[string]struct{}{
	"video/mp4":                     {},
	"video/webm":                    {},
	"video/ogg":                     {},
	"application/vnd.apple.mpegurl": {},
	"application/x-mpegurl":         {},
}

// ValidationError is a typed failure of source verification.
type ValidationError struct {
	Kind    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Claims is the payload embedded in an attestation token. StandardClaims
// carries the issue timestamp (iat).
type Claims struct {
	jwt.StandardClaims

	Kind      string  `json:"kind"`
	Title     string  `json:"title"`
	Source    string  `json:"source"`
	Thumbnail string  `json:"thumbnail,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
}

// Service verifies media sources and signs/validates attestation tokens.
type Service struct {
	secret []byte
	client *http.Client
}

// NewService constructs a Service signing with the given secret. When
// insecureFallback is set, the secret was generated at boot and a deployment
// hazard warning is logged: tokens will not validate across restarts or
// replicas.
func NewService(secret string, insecureFallback bool) *Service {
	if insecureFallback {
		logx.Warn("MEDIA_SIGNING_SECRET is not set. Using an insecure per-process secret; media tokens will not survive a restart.")
	}

	return &Service{
		secret: []byte(secret),
		client: &http.Client{Timeout: VerifyTimeout},
	}
}

// VerifySource validates a remote media source and returns a signed
// attestation token, or a *ValidationError describing why it was rejected.
// The probe is a HEAD request; servers answering it with 405 get one GET
// retry since some media hosts refuse HEAD.
func (s *Service) VerifySource(ctx context.Context, source string) (string, error) {
	parsed, err := url.Parse(source)
	if err != nil || parsed.Host == "" {
		return "", &ValidationError{Kind: ErrInvalidSourceFormat, Message: "source is not a valid URL"}
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", &ValidationError{Kind: ErrInvalidScheme, Message: fmt.Sprintf("unsupported scheme %q", parsed.Scheme)}
	}

	resp, err := s.probe(ctx, http.MethodHead, source)
	if err == nil && resp.StatusCode == http.StatusMethodNotAllowed {
		resp.Body.Close()
		resp, err = s.probe(ctx, http.MethodGet, source)
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", &ValidationError{Kind: ErrTimeout, Message: "media source did not respond in time"}
		}
		return "", &ValidationError{Kind: ErrBadResponse, Message: "media source is unreachable"}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ValidationError{Kind: ErrBadResponse, Message: fmt.Sprintf("media source answered HTTP %d", resp.StatusCode)}
	}

	mime := resp.Header.Get("Content-Type")
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = mime[:idx]
	}
	mime = strings.ToLower(strings.TrimSpace(mime))

	if _, ok := supportedMimeTypes[mime]; !ok {
		return "", &ValidationError{Kind: ErrUnsupportedMime, Message: fmt.Sprintf("unsupported content type %q", mime)}
	}

	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			IssuedAt: time.Now().Unix(),
		},
		Kind:   MediaKindVideoFile,
		Title:  titleFromURL(parsed),
		Source: source,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign media token: %w", err)
	}

	return signed, nil
}

// Validate checks the signature and claim shape of an attestation token.
// It is a local operation: no network access, safe to call from the hub loop.
func (s *Service) Validate(token string) error {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})

	if err != nil {
		return fmt.Errorf("invalid media token: %w", err)
	}

	if !parsed.Valid {
		return errors.New("invalid media token")
	}

	if claims.Kind != MediaKindVideoFile || claims.Source == "" {
		return errors.New("media token claims are incomplete")
	}

	return nil
}

func (s *Service) probe(ctx context.Context, method, source string) (*http.Response, error) {
	// the client's own Timeout bounds the probe; ctx carries caller cancellation
	req, err := http.NewRequestWithContext(ctx, method, source, nil)
	if err != nil {
		return nil, err
	}

	return s.client.Do(req)
}

func isTimeout(err error) bool {
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}

// titleFromURL derives a human-readable title from the last path segment.
func titleFromURL(u *url.URL) string {
	base := path.Base(u.Path)
	if base == "." || base == "/" || base == "" {
		return u.Host
	}

	if idx := strings.LastIndexByte(base, '.'); idx > 0 {
		base = base[:idx]
	}

	return base
}
