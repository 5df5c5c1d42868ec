// Package notify delivers the rendered report to a single recipient.
package notify

import (
	"context"
	"fmt"
	"io"
)

// Notifier sends one text message.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Writer prints the message. It is used when no chat backend is configured.
type Writer struct {
	W io.Writer
}

func (w Writer) Notify(_ context.Context, text string) error {
	_, err := fmt.Fprintln(w.W, text)
	return err
}
