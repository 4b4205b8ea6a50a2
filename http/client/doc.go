/*
Package client builds the HTTP clients gravepaint talks to its backends through.

Each [Client] is bound to one base URL and one timeout.
Every request it sends passes through a chain of [Interceptor]s first;
[InjectIdentity] is the one attaching the logged-in user's ID
as the userId header, and leaves the request alone when no user is logged in.

Responses and errors are handed back to the caller as they are.
A Client does not retry, cache or otherwise reshape either.
*/
package client
