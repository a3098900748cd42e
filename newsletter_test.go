package psiweb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formRequest(a *App, path string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return a.Echo.NewContext(req, rec), rec
}

func TestNewsletterSubscribe(t *testing.T) {
	subs := &stubSubscriberStore{}
	a := newTestApp(nil, subs, nil)
	mailer := a.mailer.(*noopMailer)

	c, rec := formRequest(a, "/newsletter/", url.Values{"email": {"  Ana@Example.COM "}})
	require.NoError(t, a.handleNewsletterSubscribe(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), msgSubscribed)
	require.Equal(t, []string{"ana@example.com"}, subs.created, "email is normalized before storage")
	assert.Equal(t, []string{"ana@example.com"}, mailer.sent)
}

func TestNewsletterSubscribeInvalidEmail(t *testing.T) {
	subs := &stubSubscriberStore{}
	a := newTestApp(nil, subs, nil)

	for _, email := range []string{"", "   ", "sem-arroba"} {
		c, rec := formRequest(a, "/newsletter/", url.Values{"email": {email}})
		require.NoError(t, a.handleNewsletterSubscribe(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "email %q", email)
		assert.Contains(t, rec.Body.String(), msgInvalidEmail)
	}
	assert.Empty(t, subs.created)
}

// A broken lookup must not block the signup; the upsert decides.
func TestNewsletterSubscribeToleratesLookupFailure(t *testing.T) {
	subs := &stubSubscriberStore{
		getByEmail: func(ctx context.Context, email string) (Subscriber, error) {
			return Subscriber{}, errors.New("connection refused")
		},
	}
	a := newTestApp(nil, subs, nil)

	c, rec := formRequest(a, "/newsletter/", url.Values{"email": {"ana@example.com"}})
	require.NoError(t, a.handleNewsletterSubscribe(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), msgSubscribed)
	assert.Equal(t, []string{"ana@example.com"}, subs.created)
}

func TestNewsletterSubscribeAlreadyConfirmed(t *testing.T) {
	subs := &stubSubscriberStore{
		getByEmail: func(ctx context.Context, email string) (Subscriber, error) {
			return Subscriber{ID: 7, Email: email, Status: SubscriberConfirmed}, nil
		},
	}
	a := newTestApp(nil, subs, nil)
	mailer := a.mailer.(*noopMailer)

	c, rec := formRequest(a, "/newsletter/", url.Values{"email": {"ana@example.com"}})
	require.NoError(t, a.handleNewsletterSubscribe(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), msgAlreadyConfirmed)
	assert.Empty(t, subs.created, "no pending row is written for a confirmed address")
	assert.Empty(t, mailer.sent)
}

func TestNewsletterSubscribeRateLimited(t *testing.T) {
	subs := &stubSubscriberStore{}
	a := newTestApp(nil, subs, nil)
	a.subscribeLimiter = NewRateLimiter(2, time.Minute)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		c, rec := formRequest(a, "/newsletter/", url.Values{"email": {"ana@example.com"}})
		require.NoError(t, a.handleNewsletterSubscribe(c))
		last = rec
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Contains(t, last.Body.String(), msgTooManyRequests)
	assert.Len(t, subs.created, 2)
}

func confirmRequest(t *testing.T, a *App, token string) *httptest.ResponseRecorder {
	t.Helper()
	target := "/confirmar-newsletter"
	if token != "" {
		target += "?token=" + token
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := a.Echo.NewContext(req, rec)
	require.NoError(t, a.handleNewsletterConfirm(c))
	return rec
}

func TestNewsletterConfirm(t *testing.T) {
	token := "abc123"
	subs := &stubSubscriberStore{
		getByToken: func(ctx context.Context, got string) (Subscriber, error) {
			if got == token {
				return Subscriber{ID: 42, Status: SubscriberPending, Token: &token}, nil
			}
			return Subscriber{}, ErrNotFound
		},
	}
	a := newTestApp(nil, subs, nil)

	rec := confirmRequest(t, a, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), msgConfirmed)
	assert.Equal(t, []int{42}, subs.confirmed)
}

func TestNewsletterConfirmIsIdempotent(t *testing.T) {
	token := "abc123"
	subs := &stubSubscriberStore{
		getByToken: func(ctx context.Context, got string) (Subscriber, error) {
			return Subscriber{ID: 42, Status: SubscriberConfirmed}, nil
		},
	}
	a := newTestApp(nil, subs, nil)

	rec := confirmRequest(t, a, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), msgAlreadyConfirmed)
	assert.Empty(t, subs.confirmed, "a second confirm performs no write")
}

func TestNewsletterConfirmInvalidToken(t *testing.T) {
	subs := &stubSubscriberStore{}
	a := newTestApp(nil, subs, nil)

	rec := confirmRequest(t, a, "nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), msgInvalidToken)

	rec = confirmRequest(t, a, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), msgInvalidToken)
	assert.Empty(t, subs.confirmed)
}

func TestNewsletterUnsubscribe(t *testing.T) {
	token := "tok-1"
	subs := &stubSubscriberStore{
		getByEmail: func(ctx context.Context, email string) (Subscriber, error) {
			return Subscriber{ID: 9, Email: email, Status: SubscriberPending, Token: &token}, nil
		},
	}
	a := newTestApp(nil, subs, nil)

	c, rec := formRequest(a, "/cancelar-newsletter/", url.Values{
		"email": {"ana@example.com"},
		"token": {token},
	})
	require.NoError(t, a.handleNewsletterUnsubscribe(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code, "POST/redirect/GET")
	assert.Equal(t, "/cancelar-newsletter/", rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, []int{9}, subs.cancelled)
}

// A pending row still holds its confirmation token; cancelling it
// requires presenting that token.
func TestNewsletterUnsubscribePendingTokenMismatch(t *testing.T) {
	token := "tok-1"
	subs := &stubSubscriberStore{
		getByEmail: func(ctx context.Context, email string) (Subscriber, error) {
			return Subscriber{ID: 9, Email: email, Status: SubscriberPending, Token: &token}, nil
		},
	}
	a := newTestApp(nil, subs, nil)

	for _, wrong := range []string{"wrong", ""} {
		c, rec := formRequest(a, "/cancelar-newsletter/", url.Values{
			"email": {"ana@example.com"},
			"token": {wrong},
		})
		require.NoError(t, a.handleNewsletterUnsubscribe(c))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
	}
	assert.Empty(t, subs.cancelled)
}

// lifecycleSubscriberStore applies the real store's state transitions to
// a single row: confirmation flips the status and clears the token,
// cancellation flips the status.
type lifecycleSubscriberStore struct {
	sub Subscriber
}

func (s *lifecycleSubscriberStore) CreateSubscriber(ctx context.Context, email, token string) error {
	s.sub = Subscriber{ID: 1, Email: email, Status: SubscriberPending, Token: &token}
	return nil
}

func (s *lifecycleSubscriberStore) GetSubscriberByToken(ctx context.Context, token string) (Subscriber, error) {
	if s.sub.Token != nil && *s.sub.Token == token {
		return s.sub, nil
	}
	return Subscriber{}, ErrNotFound
}

func (s *lifecycleSubscriberStore) GetSubscriberByEmail(ctx context.Context, email string) (Subscriber, error) {
	if s.sub.Email == email {
		return s.sub, nil
	}
	return Subscriber{}, ErrNotFound
}

func (s *lifecycleSubscriberStore) ConfirmSubscriber(ctx context.Context, id int) error {
	now := time.Now()
	s.sub.Status = SubscriberConfirmed
	s.sub.ConfirmedAt = &now
	s.sub.Token = nil
	return nil
}

func (s *lifecycleSubscriberStore) CancelSubscriber(ctx context.Context, id int) error {
	s.sub.Status = SubscriberCancelled
	s.sub.Token = nil
	return nil
}

// Confirmation clears the token, so a confirmed subscriber must be able
// to cancel with the email alone.
func TestNewsletterConfirmThenUnsubscribe(t *testing.T) {
	token := "tok-1"
	store := &lifecycleSubscriberStore{
		sub: Subscriber{ID: 1, Email: "ana@example.com", Status: SubscriberPending, Token: &token},
	}
	a := newTestApp(nil, store, nil)

	rec := confirmRequest(t, a, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, SubscriberConfirmed, store.sub.Status)
	require.Nil(t, store.sub.Token, "confirmation clears the token")

	c, rec := formRequest(a, "/cancelar-newsletter/", url.Values{"email": {"ana@example.com"}})
	require.NoError(t, a.handleNewsletterUnsubscribe(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, SubscriberCancelled, store.sub.Status)
}

func TestNewsletterUnsubscribeIsIdempotent(t *testing.T) {
	subs := &stubSubscriberStore{
		getByEmail: func(ctx context.Context, email string) (Subscriber, error) {
			return Subscriber{ID: 9, Email: email, Status: SubscriberCancelled}, nil
		},
	}
	a := newTestApp(nil, subs, nil)

	c, rec := formRequest(a, "/cancelar-newsletter/", url.Values{
		"email": {"ana@example.com"},
		"token": {"anything"},
	})
	require.NoError(t, a.handleNewsletterUnsubscribe(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, subs.cancelled, "cancelling twice performs no write")
}

func TestNewSubscribeTokenIsUnique(t *testing.T) {
	a, err := newSubscribeToken()
	require.NoError(t, err)
	b, err := newSubscribeToken()
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
