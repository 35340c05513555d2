// Package auth is the authentication adapter. A Manager validates sign-in
// and sign-up forms locally, delegates to a Provider and keeps the current
// session, caching it in durable storage under "currentSession" so it
// survives restarts until the ID token expires.
//
// IdentityToolkit implements Provider over Google's Identity Toolkit REST
// API. Every failure surfaces as an *AuthError with one of a closed set of
// categories; UserMessage gives the text to show.
package auth
