// Package jwt decodes and issues JSON Web Tokens for the back-office client.
//
// The client never holds the backend's signing key, so the primary entry
// point is Decode: it reads the claims of an access token without verifying
// its signature. The token is trusted only as far as the backend that
// issued it; the claims drive UI decisions (menus, guards), while the
// backend remains the authority for every request.
//
// # Decoding
//
//	claims, err := jwt.Decode(accessToken)
//	if err != nil {
//		// treat as "not authenticated"
//	}
//	if claims.Expired(time.Now()) {
//		// refresh
//	}
//	fmt.Println(claims.DisplayName(), claims.Permissions)
//
// Expiry follows the backend's contract: a token is expired once
// exp*1000 is less than the current time in milliseconds. A token without
// an exp claim counts as expired, so it is only good for a refresh.
//
// # Issuing
//
// Service signs and verifies HMAC-SHA256 tokens. The client itself only
// decodes; Service is for stub backends and tests that stand in for the
// real session backend and need to mint realistic access tokens:
//
//	svc, err := jwt.NewFromString("secret")
//	token, err := svc.Generate(jwt.Claims{
//		RegisteredClaims: gojwt.RegisteredClaims{
//			Subject:   "alice",
//			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
//		},
//		Permissions: []string{"orders.read"},
//	})
//
// # Errors
//
//   - ErrMalformedToken: the token cannot be decoded at all
//   - ErrInvalidSignature: Parse could not verify the signature
//   - ErrExpiredToken: Parse found an expired token
//   - ErrMissingSigningKey: Service created without a key
package jwt
