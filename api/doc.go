/*
Package api exposes the calls gravepaint makes to its backends.

The primary backend answers every call with an envelope:

	{"code": 1, "msg": "", "data": ...}

A code of 1 means the call succeeded and data holds the result.
Any other code, or a non-2xx status, becomes an [*Error].

The assistant backend answers with plain JSON,
reporting failures as {"error": "..."} alongside a non-2xx status.
*/
package api
