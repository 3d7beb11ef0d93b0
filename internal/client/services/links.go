package services

import (
	"net/url"
	"strings"
)

// ReturnLink is what the client reads from a redirect or deep link.
type ReturnLink struct {
	PaymentID  string
	FileID     string
	OpenUpload bool
}

// ParseReturnLink accepts a full URL, a bare query string ("?paymentId=…")
// or a bare payment id.
func ParseReturnLink(raw string) (ReturnLink, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ReturnLink{}, nil
	}

	if !strings.ContainsAny(raw, "?=/:") {
		return ReturnLink{PaymentID: raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ReturnLink{}, err
	}
	q := u.Query()
	if u.RawQuery == "" && strings.Contains(raw, "=") && !strings.Contains(raw, "://") {
		q, err = url.ParseQuery(strings.TrimPrefix(raw, "?"))
		if err != nil {
			return ReturnLink{}, err
		}
	}

	return ReturnLink{
		PaymentID:  strings.TrimSpace(q.Get("paymentId")),
		FileID:     strings.TrimSpace(q.Get("fileId")),
		OpenUpload: q.Get("upload") == "true",
	}, nil
}
