package wikicode

import "errors"

// Errors returned by Tokenize and Parse. Input that merely fails to parse as
// markup never produces an error; it degrades to plain text instead. These
// mean the token stream or the tokenizer's own state went wrong, which given
// well-formed tokens should not happen.
var (
	// ErrUnexpectedSelfClose is returned when recovery of an unclosed
	// single-supporting tag runs into a self-closing token where an opening
	// tag was required.
	ErrUnexpectedSelfClose = errors.New("wikicode: got an unexpected self-closed tag while closing a single tag")

	// ErrMissedTagCloseOpen is returned when recovery of an unclosed
	// single-supporting tag cannot find the end of the tag's opening half.
	ErrMissedTagCloseOpen = errors.New("wikicode: missed the end of the opening tag while closing a single tag")

	// ErrOpenStack is returned when tokenization finishes with unclosed
	// parse frames left over.
	ErrOpenStack = errors.New("wikicode: tokenizer exited with a non-empty stack")

	// ErrFailedRoute is returned when the outermost parse route fails, which
	// can only happen under a caller-supplied starting context.
	ErrFailedRoute = errors.New("wikicode: tokenizer exited with a failed route")

	// ErrMissedCloseToken is returned by the tree builder when a token stream
	// ends in the middle of a structure.
	ErrMissedCloseToken = errors.New("wikicode: missed a close token while building the tree")

	// ErrUnexpectedToken is returned by the tree builder for a token that
	// cannot appear where it did.
	ErrUnexpectedToken = errors.New("wikicode: unexpected token while building the tree")
)

// badRoute aborts the current speculative parse route. It carries the
// context at the point of failure so style parsing can tell whether the
// route wants a second pass. Routes are caught and retried internally;
// a badRoute never escapes to callers.
type badRoute struct {
	context uint64
}

func (badRoute) Error() string {
	return "wikicode: bad parse route"
}

func isBadRoute(err error) bool {
	var br badRoute
	return errors.As(err, &br)
}

func routeContext(err error) uint64 {
	var br badRoute
	if errors.As(err, &br) {
		return br.context
	}

	return 0
}
