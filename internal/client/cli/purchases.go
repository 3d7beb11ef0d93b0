package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/favisend/internal/client/models"
	"github.com/dmitrijs2005/favisend/internal/client/validation"
)

// Purchases lists the files bought with the verified guest email or the
// logged-in account.
func (a *App) Purchases(ctx context.Context) error {
	list, source, err := a.purchases.List(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.listed = list
	a.mu.Unlock()

	if len(list) == 0 {
		a.printf("No purchases yet.")
		return nil
	}

	a.printf("Purchases (%s):", source)
	for i, p := range list {
		line := strconv.Itoa(i+1) + ". " + p.File.Title
		if author := p.File.User.Name(); author != "" {
			line += " by " + author
		}
		line += " [" + string(p.File.Kind()) + "]"
		if !p.PurchaseDate.IsZero() {
			line += " " + p.PurchaseDate.Format("2006-01-02")
		}
		a.printf("%s", line)
	}
	a.printf("Use 'download <n>' to save a file.")
	return nil
}

// Checkout collects billing details for fileID and prints where to pay.
func (a *App) Checkout(ctx context.Context, fileID string) error {
	req := models.CheckoutRequest{FileID: fileID}

	if u := a.session.Snapshot().User; u != nil {
		req.FirstName, req.LastName = u.FirstName, u.LastName
		req.PhoneNumber, req.Country, req.City = u.PhoneNumber, u.Country, u.City
		req.Email = u.Email
	} else {
		req.Email = a.guestEmail(ctx)
	}

	fields := []struct {
		prompt string
		dst    *string
	}{
		{"First name", &req.FirstName},
		{"Last name", &req.LastName},
		{"Phone number", &req.PhoneNumber},
		{"City", &req.City},
		{"Email for the receipt", &req.Email},
	}
	for _, f := range fields {
		if err := a.promptDefault(f.prompt, f.dst); err != nil {
			return err
		}
	}
	if err := a.promptCountry(&req.Country); err != nil {
		return err
	}

	resp, err := a.checkout.Start(ctx, req)
	if err != nil {
		return err
	}

	if resp.OrderID != "" {
		a.printf("Order %s created.", resp.OrderID)
	}
	if resp.CheckoutURL != "" {
		a.printf("Complete the payment at: %s", resp.CheckoutURL)
	}
	a.printf("After paying, run 'open <return link>' or 'verify <paymentId>'.")
	return nil
}

// promptDefault keeps *dst when the answer is empty.
func (a *App) promptDefault(prompt string, dst *string) error {
	if *dst != "" {
		prompt += " [" + *dst + "]"
	}
	v, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if v != "" {
		*dst = v
	}
	return nil
}

// promptCountry accepts a country name or its number in the list.
func (a *App) promptCountry(dst *string) error {
	var b strings.Builder
	b.WriteString("Country:")
	for i, c := range validation.Countries {
		b.WriteString("\n  " + strconv.Itoa(i+1) + ". " + c)
	}
	if err := a.promptDefault(b.String(), dst); err != nil {
		return err
	}
	if n, err := strconv.Atoi(*dst); err == nil && n >= 1 && n <= len(validation.Countries) {
		*dst = validation.Countries[n-1]
	}
	return nil
}
