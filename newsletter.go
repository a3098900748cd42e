package psiweb

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// SubscriberStore is the newsletter surface of the store.
type SubscriberStore interface {
	CreateSubscriber(ctx context.Context, email, token string) error
	GetSubscriberByToken(ctx context.Context, token string) (Subscriber, error)
	GetSubscriberByEmail(ctx context.Context, email string) (Subscriber, error)
	ConfirmSubscriber(ctx context.Context, id int) error
	CancelSubscriber(ctx context.Context, id int) error
}

// User-facing newsletter messages.
const (
	msgSubscribed       = "Quase lá! Enviamos um e-mail com o link de confirmação da sua inscrição."
	msgInvalidToken     = "Link de confirmação inválido. Verifique o endereço ou inscreva-se novamente."
	msgConfirmed        = "Inscrição confirmada com sucesso! Você passará a receber nossos conteúdos."
	msgAlreadyConfirmed = "Sua inscrição já estava confirmada."
	msgCancelled        = "Sua inscrição foi cancelada. Sentiremos sua falta."
	msgAlreadyCancelled = "Essa inscrição já estava cancelada."
	msgInvalidEmail     = "Informe um endereço de e-mail válido."
	msgTooManyRequests  = "Muitas tentativas de inscrição. Tente novamente em instantes."
)

func newSubscribeToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (a *App) handleNewsletterSubscribe(c echo.Context) error {
	if a.subscribeLimiter != nil && !a.subscribeLimiter.Allow(c.RealIP()) {
		return a.renderNewsletter(c, http.StatusTooManyRequests, "Newsletter", msgTooManyRequests)
	}

	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	if email == "" || !strings.Contains(email, "@") {
		return a.renderNewsletter(c, http.StatusBadRequest, "Newsletter", msgInvalidEmail)
	}

	ctx := c.Request().Context()
	sub, err := a.Subscribers.GetSubscriberByEmail(ctx, email)
	switch {
	case err == nil && sub.Status == SubscriberConfirmed:
		return a.renderNewsletter(c, http.StatusOK, "Newsletter", msgAlreadyConfirmed)
	case err != nil && err != ErrNotFound:
		// The upsert below decides; a failed lookup only costs a
		// possibly redundant confirmation mail.
		c.Logger().Errorf("newsletter: look up subscriber %s: %v", email, err)
	}

	token, err := newSubscribeToken()
	if err != nil {
		return err
	}
	if err := a.Subscribers.CreateSubscriber(ctx, email, token); err != nil {
		return err
	}

	link := a.Config.URL + "/confirmar-newsletter?token=" + token
	body := fmt.Sprintf(
		"<p>Olá!</p><p>Confirme sua inscrição na newsletter de %s clicando no link abaixo:</p><p><a href=%q>Confirmar inscrição</a></p>",
		a.Config.Name, link)
	if err := a.mailer.Send(ctx, email, "Confirme sua inscrição", body); err != nil {
		// The row stays pending; the visitor can submit again.
		c.Logger().Errorf("newsletter: send confirmation to %s: %v", email, err)
	}

	return a.renderNewsletter(c, http.StatusOK, "Newsletter", msgSubscribed)
}

func (a *App) handleNewsletterConfirm(c echo.Context) error {
	token := strings.TrimSpace(c.QueryParam("token"))
	if token == "" {
		return a.renderNewsletter(c, http.StatusBadRequest, "Confirmação", msgInvalidToken)
	}

	ctx := c.Request().Context()
	sub, err := a.Subscribers.GetSubscriberByToken(ctx, token)
	if err == ErrNotFound {
		return a.renderNewsletter(c, http.StatusNotFound, "Confirmação", msgInvalidToken)
	}
	if err != nil {
		return err
	}

	// Idempotent: a second confirm performs no write.
	if sub.Status == SubscriberConfirmed {
		return a.renderNewsletter(c, http.StatusOK, "Confirmação", msgAlreadyConfirmed)
	}

	if err := a.Subscribers.ConfirmSubscriber(ctx, sub.ID); err != nil {
		return err
	}
	return a.renderNewsletter(c, http.StatusOK, "Confirmação", msgConfirmed)
}

func (a *App) handleNewsletterUnsubscribe(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	token := strings.TrimSpace(c.FormValue("token"))
	if email == "" {
		return a.redirectWithFlash(c, msgInvalidEmail)
	}

	ctx := c.Request().Context()
	sub, err := a.Subscribers.GetSubscriberByEmail(ctx, email)
	if err == ErrNotFound {
		return a.redirectWithFlash(c, msgInvalidToken)
	}
	if err != nil {
		return err
	}

	if sub.Status == SubscriberCancelled {
		return a.redirectWithFlash(c, msgAlreadyCancelled)
	}
	// A pending row still holds its confirmation token and must present
	// it. Confirmation clears the token, so a confirmed subscriber
	// cancels by email alone.
	if sub.Token != nil && *sub.Token != token {
		return a.redirectWithFlash(c, msgInvalidToken)
	}

	if err := a.Subscribers.CancelSubscriber(ctx, sub.ID); err != nil {
		return err
	}
	return a.redirectWithFlash(c, msgCancelled)
}

// handleUnsubscribePage renders the unsubscribe form, or the outcome of
// a just-submitted form carried over in the session flash.
func (a *App) handleUnsubscribePage(c echo.Context) error {
	if msg := takeFlash(c, "newsletter"); msg != "" {
		return a.renderNewsletter(c, http.StatusOK, "Cancelar inscrição", msg)
	}
	d := a.pageData(c, PageMeta{
		Title:       "Cancelar inscrição — " + a.Config.Name,
		Description: "Cancele sua inscrição na newsletter.",
		URL:         BuildURL(a.Config.URL, "cancelar-newsletter"),
		OGType:      "website",
	}, []Crumb{{Name: "Início", Path: "/"}, {Name: "Cancelar inscrição", Path: "/cancelar-newsletter/"}})
	return Render(c, a.Views.Unsubscribe(d, CsrfToken(c)))
}

func (a *App) redirectWithFlash(c echo.Context, msg string) error {
	if err := setFlash(c, "newsletter", msg); err != nil {
		c.Logger().Errorf("newsletter: save flash: %v", err)
	}
	return c.Redirect(http.StatusSeeOther, "/cancelar-newsletter/")
}

func (a *App) renderNewsletter(c echo.Context, code int, title, msg string) error {
	d := a.pageData(c, PageMeta{
		Title:       title + " — " + a.Config.Name,
		Description: a.Config.Description,
		URL:         BuildURL(a.Config.URL, strings.TrimPrefix(c.Request().URL.Path, "/")),
		OGType:      "website",
	}, []Crumb{{Name: "Início", Path: "/"}, {Name: title, Path: c.Request().URL.Path}})
	return RenderStatus(c, code, a.Views.Newsletter(d, title, msg))
}
