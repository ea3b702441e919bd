package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/NasaVasa/pricewatch/internal/domain"
)

func Subject(drop domain.PriceDrop) string {
	return fmt.Sprintf("Price Alert: %s dropped to $%s!", drop.ProductName, drop.CurrentPrice.StringFixed(2))
}

func PlainText(drop domain.PriceDrop) string {
	return fmt.Sprintf(
		"Price drop: %s (%s)\nYour target: $%s\nCurrent price: $%s\nYou save: $%s\n%s",
		drop.ProductName,
		drop.Store,
		drop.TargetPrice.StringFixed(2),
		drop.CurrentPrice.StringFixed(2),
		drop.Savings.StringFixed(2),
		drop.Link,
	)
}

var alertTemplate = template.Must(template.New("alert").Parse(`<html>
  <body>
    <h2>Price Drop Alert!</h2>
    <p>The price for <strong>{{.Name}}</strong> at {{.Store}} has dropped.</p>
    <ul>
      <li>Your Target Price: <b>${{.Target}}</b></li>
      <li>Current Price: <b style="color: green;">${{.Current}}</b></li>
      <li>You save: <b>${{.Savings}}</b>!</li>
    </ul>
    <p><a href="{{.Link}}" style="padding: 10px 20px; background-color: #007bff; color: white; text-decoration: none; border-radius: 5px;">View Deal Now</a></p>
    <p><i>This alert was triggered because the price is now below your set target.</i></p>
  </body>
</html>
`))

func HTMLBody(drop domain.PriceDrop) (string, error) {
	var buf bytes.Buffer
	err := alertTemplate.Execute(&buf, struct {
		Name, Store, Target, Current, Savings string
		Link                                  template.URL
	}{
		Name:    drop.ProductName,
		Store:   drop.Store,
		Target:  drop.TargetPrice.StringFixed(2),
		Current: drop.CurrentPrice.StringFixed(2),
		Savings: drop.Savings.StringFixed(2),
		Link:    template.URL(drop.Link),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
