package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/itsneelabh/shopeasy/pkg/logger"
	"github.com/itsneelabh/shopeasy/pkg/telemetry"
)

// DefaultIdentityEndpoint is Google's Identity Toolkit REST host
const DefaultIdentityEndpoint = "https://identitytoolkit.googleapis.com"

// IdentityToolkit is a Provider backed by the Identity Toolkit REST API
type IdentityToolkit struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     logger.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// ToolkitOption configures an IdentityToolkit
type ToolkitOption func(*IdentityToolkit)

// WithEndpoint overrides the REST host, e.g. for the auth emulator
func WithEndpoint(endpoint string) ToolkitOption {
	return func(t *IdentityToolkit) {
		t.endpoint = strings.TrimRight(endpoint, "/")
	}
}

// WithToolkitHTTPClient replaces the HTTP client
func WithToolkitHTTPClient(hc *http.Client) ToolkitOption {
	return func(t *IdentityToolkit) {
		if hc != nil {
			t.httpClient = hc
		}
	}
}

// WithToolkitLogger sets the logger
func WithToolkitLogger(l logger.Logger) ToolkitOption {
	return func(t *IdentityToolkit) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithToolkitTracer sets the tracer
func WithToolkitTracer(tr trace.Tracer) ToolkitOption {
	return func(t *IdentityToolkit) {
		if tr != nil {
			t.tracer = tr
		}
	}
}

// NewIdentityToolkit creates a provider for the project owning apiKey
func NewIdentityToolkit(apiKey string, opts ...ToolkitOption) *IdentityToolkit {
	t := &IdentityToolkit{
		apiKey:     apiKey,
		endpoint:   DefaultIdentityEndpoint,
		httpClient: telemetry.NewTracedHTTPClient(nil, nil, 30*time.Second),
		logger:     logger.NewNopLogger(),
		tracer:     otel.Tracer(telemetry.InstrumentationName),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type updateRequest struct {
	IDToken           string `json:"idToken"`
	DisplayName       string `json:"displayName"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type oobRequest struct {
	RequestType string `json:"requestType"`
	IDToken     string `json:"idToken,omitempty"`
	Email       string `json:"email,omitempty"`
}

type tokenResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (t *IdentityToolkit) SignIn(ctx context.Context, creds Credentials) (*Session, error) {
	var resp tokenResponse
	req := passwordRequest{Email: creds.Email, Password: creds.Password, ReturnSecureToken: true}
	if err := t.call(ctx, "signInWithPassword", req, &resp); err != nil {
		return nil, err
	}
	return t.session(resp, nil), nil
}

// SignUp creates the account. The profile is applied separately through
// UpdateProfile, matching the REST API.
func (t *IdentityToolkit) SignUp(ctx context.Context, creds Credentials, _ Profile) (*Session, error) {
	var resp tokenResponse
	req := passwordRequest{Email: creds.Email, Password: creds.Password, ReturnSecureToken: true}
	if err := t.call(ctx, "signUp", req, &resp); err != nil {
		return nil, err
	}
	return t.session(resp, nil), nil
}

func (t *IdentityToolkit) UpdateProfile(ctx context.Context, session *Session, displayName string) (*Session, error) {
	if session == nil {
		return nil, errors.New("update profile: no session")
	}
	var resp tokenResponse
	req := updateRequest{IDToken: session.IDToken, DisplayName: displayName, ReturnSecureToken: true}
	if err := t.call(ctx, "update", req, &resp); err != nil {
		return nil, err
	}
	return t.session(resp, session), nil
}

func (t *IdentityToolkit) SendEmailVerification(ctx context.Context, session *Session) error {
	if session == nil {
		return errors.New("send verification: no session")
	}
	return t.call(ctx, "sendOobCode", oobRequest{RequestType: "VERIFY_EMAIL", IDToken: session.IDToken}, nil)
}

func (t *IdentityToolkit) SendPasswordReset(ctx context.Context, email string) error {
	return t.call(ctx, "sendOobCode", oobRequest{RequestType: "PASSWORD_RESET", Email: email}, nil)
}

// SignOut is local for password accounts; the REST API has no
// session to end and tokens simply expire.
func (t *IdentityToolkit) SignOut(ctx context.Context, session *Session) error {
	if session != nil {
		t.logger.Debug("Identity session released", "uid", session.UserID)
	}
	return nil
}

// session builds a Session from a token response, keeping fields of prev
// the response omits.
func (t *IdentityToolkit) session(resp tokenResponse, prev *Session) *Session {
	s := &Session{}
	if prev != nil {
		*s = *prev
	}
	if resp.LocalID != "" {
		s.UserID = resp.LocalID
	}
	if resp.Email != "" {
		s.Email = resp.Email
	}
	if resp.DisplayName != "" {
		s.DisplayName = resp.DisplayName
	}
	if resp.RefreshToken != "" {
		s.RefreshToken = resp.RefreshToken
	}
	if resp.IDToken != "" {
		s.IDToken = resp.IDToken
		s.ExpiresAt = time.Time{}
		if secs, err := strconv.Atoi(resp.ExpiresIn); err == nil && secs > 0 {
			s.ExpiresAt = t.now().Add(time.Duration(secs) * time.Second)
		}
		if claims, err := readClaims(resp.IDToken); err == nil {
			s.EmailVerified = claims.EmailVerified
			if s.UserID == "" {
				s.UserID = claims.Subject
			}
			if s.DisplayName == "" {
				s.DisplayName = claims.Name
			}
			if claims.ExpiresAt != nil {
				s.ExpiresAt = claims.ExpiresAt.Time
			}
		} else {
			t.logger.Warn("Could not read ID token claims", "error", err.Error())
		}
	}
	return s
}

func (t *IdentityToolkit) call(ctx context.Context, method string, body, out interface{}) error {
	ctx, span := t.tracer.Start(ctx, "auth."+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("auth.method", method)),
	)
	defer span.End()

	fail := func(err *AuthError) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(err.Category))
		t.logger.Warn("Identity request failed", telemetry.EnrichLogFields(ctx, map[string]interface{}{
			"method":   method,
			"category": string(err.Category),
			"code":     err.Code,
		}))
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fail(&AuthError{Category: CategoryUnknown, Code: "ENCODE", Err: err})
	}
	target := fmt.Sprintf("%s/v1/accounts:%s?key=%s", t.endpoint, method, url.QueryEscape(t.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return fail(&AuthError{Category: CategoryUnknown, Code: "REQUEST", Err: err})
	}
	req.Header.Set("Content-Type", "application/json")
	telemetry.InjectCorrelationHeaders(ctx, req.Header)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fail(&AuthError{Category: CategoryNetworkFailure, Code: CodeNetwork, Err: err})
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(&AuthError{Category: CategoryNetworkFailure, Code: CodeNetwork, Err: err})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(decodeFailure(resp.StatusCode, raw))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fail(&AuthError{Category: CategoryUnknown, Code: "DECODE", Err: err})
	}
	return nil
}

// decodeFailure maps an error body such as
// {"error":{"message":"WEAK_PASSWORD : Password should be at least 6 characters"}}
func decodeFailure(status int, raw []byte) *AuthError {
	var er errorResponse
	code := ""
	if err := json.Unmarshal(raw, &er); err == nil {
		code = er.Error.Message
		if i := strings.Index(code, " "); i > 0 {
			code = code[:i]
		}
		code = strings.TrimSpace(code)
	}
	cause := fmt.Errorf("identity toolkit returned status %d: %s", status, strings.TrimSpace(string(raw)))
	if status == http.StatusTooManyRequests {
		if code == "" {
			code = CodeTooManyAttempts
		}
		return &AuthError{Category: CategoryRateLimited, Code: code, Err: cause}
	}
	if code == "" {
		code = "HTTP_" + strconv.Itoa(status)
	}
	return &AuthError{Category: CategoryOf(code), Code: code, Err: cause}
}
