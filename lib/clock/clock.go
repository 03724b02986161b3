// Copyright 2026 The Convos Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the current time for testability. Production code
// injects Real(); tests inject Fake() and advance it explicitly.
//
// The invite protocol only ever asks "what time is it" — expiry
// predicates compare Unix-second timestamps against Now. Components
// that evaluate expiries (the matcher, the join-request processor)
// take a Clock instead of calling time.Now directly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
