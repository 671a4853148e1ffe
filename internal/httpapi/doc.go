// Package httpapi serves the authentication engine over JSON and HTTP.
//
// Routes:
//
//	POST /signup        {email, password, requires2FA}
//	POST /login         {email, password}
//	POST /verify-2fa    {email, loginAttemptId, 2FACode | twoFACode}
//	POST /logout        session cookie
//	POST /verify-token  {token}
//	GET  /session       session cookie or Bearer token
//	GET  /metrics       Prometheus text format, when configured
//
// Errors are written as {"error": "<reason>"}. A body that is not JSON or
// lacks a field fails with 422 before the engine is called.
package httpapi
