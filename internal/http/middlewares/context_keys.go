package middlewares

const (
	CtxRequestID   = "request_id"
	CtxCurrentUser = "auth.currentUser"
)
