package middlewares

const (
	CtxRequestID = "request_id"

	ctxIdentityKey = "auth.identity"
)
