package telegram

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const HelpText = `Commands:
/start - show this help
/help - show this help
/track <url> <store> <name> - start tracking a product page
/watch <product_id> <target_price> - get a message when the price drops below the target
/alerts - list your active alerts

Use - as the store to derive it from the url.
Example:
/track https://www.amazon.com/dp/B0C1 amazon Noise Cancelling Headphones
/watch 12 89.99
`

var ErrInvalidArguments = errors.New("invalid arguments")

func ParseTrackArgs(args string) (rawURL, store, name string, err error) {
	parts := strings.Fields(args)
	if len(parts) < 3 {
		return "", "", "", ErrInvalidArguments
	}
	store = parts[1]
	if store == "-" {
		store = ""
	}
	return parts[0], store, strings.Join(parts[2:], " "), nil
}

func ParseWatchArgs(args string) (uint, decimal.Decimal, error) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return 0, decimal.Zero, ErrInvalidArguments
	}
	productID, err := ParseProductID(parts[0])
	if err != nil {
		return 0, decimal.Zero, err
	}
	target, err := decimal.NewFromString(strings.TrimPrefix(parts[1], "$"))
	if err != nil {
		return 0, decimal.Zero, ErrInvalidArguments
	}
	return productID, target, nil
}

func ParseProductID(args string) (uint, error) {
	idStr := strings.TrimSpace(args)
	if idStr == "" {
		return 0, ErrInvalidArguments
	}
	value, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || value == 0 {
		return 0, ErrInvalidArguments
	}
	return uint(value), nil
}
