package process

import "errors"

// ErrMalformedAutomaton is reserved for a prebuilt provisioning mode, where
// a Matcher's automaton is deserialized from build-time bytes instead of
// compiled from mapdata at first use. Only the runtime mode is implemented
// by Registry today, so nothing in this package returns this error yet; it
// exists so a future prebuilt loader has a typed error to return without
// breaking callers that already errors.Is against it.
var ErrMalformedAutomaton = errors.New("process: malformed prebuilt automaton")
