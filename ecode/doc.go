// Package ecode defines the error codes and the typed *Error returned across
// the feedsync client.
//
// # Error Code Convention
//
//   - 0: Success (OK)
//   - -100 to -199: Authentication errors (NoLogin, AuthFailed)
//   - -400 to -499: Request and resource errors (ParamErr, NotFound, Conflict)
//   - -500+: Store and server errors (ServerErr, ServiceUnavailable, Deadline)
//
// # Kinds
//
// Three kinds of failure reach the shell:
//
//	ecode.AuthError("", err)          // sign-in/sign-up failure
//	ecode.StoreUnavailable(err)       // document store read/write failure
//	ecode.ValidationError(fields)     // local rejection before any write
//
// Match them with errors.Is against the sentinels:
//
//	if errors.Is(err, ecode.ErrStoreUnavailable) { ... }
//
// # Messages
//
//	message := ecode.Text(ecode.AuthFailed)
//	// Returns: "Invalid email or password."
//
//	ecode.Register(-1001, "Custom failure")
package ecode
