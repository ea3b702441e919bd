package domain

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrAlertInactive      = errors.New("alert already inactive")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrInvalidRecipient   = errors.New("invalid recipient")
)

// FetchError is returned when a product price could not be obtained.
// Timeouts are fetch errors too.
type FetchError struct {
	URL     string
	Proxy   *Proxy
	Err     error
	timeout bool
}

func NewFetchError(rawURL string, proxy *Proxy, err error) *FetchError {
	fe := &FetchError{URL: rawURL, Proxy: proxy, Err: err}
	var t interface{ Timeout() bool }
	if errors.As(err, &t) && t.Timeout() {
		fe.timeout = true
	}
	return fe
}

func NewFetchTimeout(rawURL string, proxy *Proxy, err error) *FetchError {
	return &FetchError{URL: rawURL, Proxy: proxy, Err: err, timeout: true}
}

func (e *FetchError) Error() string {
	if e.timeout {
		return fmt.Sprintf("fetch %s: timeout: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Timeout() bool { return e.timeout }

// StorageError wraps a persistence failure. It matches ErrStorageUnavailable.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorageUnavailable }

func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlertInactive) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

type NotificationError struct {
	AlertID   uint
	Recipient string
	Err       error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notify alert %d: %v", e.AlertID, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// RedactProxy returns the proxy host without credentials, for logs.
func RedactProxy(p *Proxy) string {
	if p == nil {
		return "direct"
	}
	u, err := url.Parse(p.URL)
	if err != nil || u.Host == "" {
		return "invalid"
	}
	return u.Host
}
