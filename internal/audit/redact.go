// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

package audit

// RedactSensitive withholds the network provenance of anonymous actors:
// actor_ip_address and actor_user_agent are blanked. Other actor types are
// returned unchanged. This is the rule applied to exports.
func RedactSensitive(
	e Entry,
) Entry {
	if e.ActorType != ActorAnonymous {
		return e
	}

	e.ActorIPAddress = ""
	e.ActorUserAgent = ""

	return e
}

// RedactAnonymous withholds every provenance field of anonymous actors
// except actor_type. This is the rule applied to query and get results.
func RedactAnonymous(
	e Entry,
) Entry {
	if e.ActorType != ActorAnonymous {
		return e
	}

	e = RedactSensitive(e)
	e.ActorID = ""
	e.ActorEmail = ""

	return e
}
