package hx

// SwapMode is an hx-swap strategy: how the response HTML is placed
// relative to the target element. The default is SwapOuter.
//
// See https://htmx.org/attributes/hx-swap/.
type SwapMode string

const (
	// SwapOuter replaces the target element itself (outerHTML). Components
	// render their own root, so this is what refreshes use.
	SwapOuter SwapMode = "outerHTML"

	// SwapInner replaces the children of the target and keeps its tag.
	SwapInner SwapMode = "innerHTML"

	// SwapBeforeEnd appends the response inside the target, after its last
	// child.
	SwapBeforeEnd SwapMode = "beforeend"

	// SwapAfterEnd inserts the response as the next sibling of the target.
	SwapAfterEnd SwapMode = "afterend"

	// SwapBeforeBegin inserts the response as the previous sibling of the
	// target.
	SwapBeforeBegin SwapMode = "beforebegin"

	// SwapAfterBegin prepends the response inside the target, before its
	// first child.
	SwapAfterBegin SwapMode = "afterbegin"

	// SwapDelete removes the target. The response body is ignored.
	SwapDelete SwapMode = "delete"

	// SwapNone discards the response body. Headers (events, flashes sent
	// out of band) are still processed, which is how intent actions that
	// only emit an event are wired.
	SwapNone SwapMode = "none"
)
