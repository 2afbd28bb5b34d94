// Package authapi is the client for the back-office authentication endpoints.
//
// Three calls are supported, all JSON over POST:
//
//	POST /api/auth/login    {"username","password"} -> {"accessToken","refreshToken"}
//	POST /api/auth/refresh  {"refreshToken"}        -> {"accessToken","refreshToken"}
//	POST /api/auth/logout   {"refreshToken"}        -> ignored
//
// Non-2xx responses are returned as *APIError. A request that never got an
// HTTP response (DNS, refused connection, reset) is an *APIError with
// Status 0 and matches ErrUnreachable:
//
//	pair, err := client.Login(ctx, "alice", "secret")
//	var apiErr *authapi.APIError
//	switch {
//	case errors.As(err, &apiErr) && apiErr.IsClientError():
//		// rejected credentials
//	case errors.Is(err, authapi.ErrUnreachable):
//		// offline
//	}
package authapi
