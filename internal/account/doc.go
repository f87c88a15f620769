// Package account provides an HTTP client for the Roborock account service.
//
// The client implements the email verification code login flow used by the
// mobile app: the global endpoint resolves a per-account regional base URL,
// a one-time code is emailed to the account, and the code is exchanged for
// a session token (UserData) that callers persist.
//
// # Usage Example
//
//	client := account.NewClient("user@example.com")
//
//	// Ask the service to email a verification code
//	if err := client.RequestCode(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Exchange the emailed code for a session token
//	userData, err := client.CodeLogin(ctx, "123456")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Rate Limiting
//
// The account service throttles verification code emails. RequestCode
// enforces a local minimum spacing between requests (CodeRequestInterval)
// and fails fast with a rate-limited error instead of tripping the
// server-side limit.
//
// # Error Handling
//
// All failures are returned as *ServiceError with a classified type
// (network, auth, API, parse, rate limited, timeout). Network and 5xx
// failures are retried with exponential backoff; auth and parse failures
// are not. GetTroubleshootingHint turns any error into user-facing advice.
package account
