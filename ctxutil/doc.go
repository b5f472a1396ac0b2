// Package ctxutil carries request-scoped values (trace id, signed-in user,
// session token, feed scope) through context.Context.
//
//	ctx, traceID := ctxutil.EnsureTraceID(ctx)
//	ctx = ctxutil.SetUserID(ctx, session.UID)
//	uid := ctxutil.GetUserID(ctx)
package ctxutil
