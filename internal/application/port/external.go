package port

import "context"

// Notifier dispatches a message to every user holding one of the given roles.
// Dispatch is best-effort; callers must never roll back state on failure.
type Notifier interface {
	NotifyRoles(ctx context.Context, roles []string, subject string, offerID string) error
}

// LetterGenerator renders and dispatches an offer letter asynchronously. The
// generator advances the offer to LETTER_GENERATED through its completion
// callback; callers only trigger the request.
type LetterGenerator interface {
	RenderAndDispatch(ctx context.Context, offerID string) error
}
