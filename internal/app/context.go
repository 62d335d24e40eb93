package app

import "context"

// contextKey is used to store App in context
type contextKey struct{}

// GetAppFromContext retrieves the App from context
func GetAppFromContext(ctx context.Context) *App {
	if ctx == nil {
		return nil
	}
	application, _ := ctx.Value(contextKey{}).(*App)
	return application
}

// SetAppInContext stores the App in context
func SetAppInContext(ctx context.Context, application *App) context.Context {
	return context.WithValue(ctx, contextKey{}, application)
}
