package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/NasaVasa/pricewatch/internal/domain"
)

// Router picks a transport per recipient: numeric recipients are Telegram
// chat ids, anything else is an email address. A nil transport means that
// kind of recipient cannot be reached.
type Router struct {
	email    domain.Notifier
	telegram domain.Notifier
}

func NewRouter(email, telegram domain.Notifier) *Router {
	return &Router{email: email, telegram: telegram}
}

func (r *Router) Send(ctx context.Context, recipient string, drop domain.PriceDrop) error {
	if IsChatID(recipient) {
		if r.telegram == nil {
			return fmt.Errorf("%w: telegram delivery is not configured for %q", domain.ErrInvalidRecipient, recipient)
		}
		return r.telegram.Send(ctx, recipient, drop)
	}
	if r.email == nil {
		return fmt.Errorf("%w: email delivery is not configured for %q", domain.ErrInvalidRecipient, recipient)
	}
	return r.email.Send(ctx, recipient, drop)
}

func IsChatID(recipient string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(recipient), 10, 64)
	return err == nil
}
