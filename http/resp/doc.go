/*
Package resp provides a high-level API for responding to HTTP requests
with an easy way to configure the responses application-wide.

resp provides four ways of responding to an HTTP request:
  - rendering a page of the Vue client, or its props as JSON when the request asks for JSON
  - rendering JSON data
  - redirecting
  - failing with an error

Each way is tailored for a specific request through [Fn] options.
*/
package resp
