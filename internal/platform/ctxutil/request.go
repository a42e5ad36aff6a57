package ctxutil

import "context"

type requestDataKey struct{}

// RequestData carries identifiers for log correlation only. Authorization
// decisions never read it; the resolved caller is passed explicitly.
type RequestData struct {
	UserID    string
	SessionID string
	GuestID   string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}
