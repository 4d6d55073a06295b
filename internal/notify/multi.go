package notify

import (
	"context"
	"errors"

	"github.com/msomdec/study-zen/internal/timer"
)

// Multi sends each notification to every wrapped notifier. One notifier
// failing does not stop the others.
type Multi []timer.Notifier

func (m Multi) Notify(ctx context.Context, userID int64, n timer.Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, userID, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
