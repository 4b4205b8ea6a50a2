/*
Package identity supplies the user ID attached to outgoing backend requests.

A [Source] is handed to an HTTP client when it is constructed.
Each request asks the Source for the current user ID;
when none is available the request is sent without one.

These Sources are available:
  - [Static]: a fixed ID
  - [FromContext]: the ID placed in a [context.Context] by [github.com/gravepaint/gravepaint.NewIdentityContext]
  - [*Store]: an ID set at login and cleared at logout, held in memory
  - [*RedisStore]: an ID held in Redis, surviving restarts
  - [First]: the first of several Sources to yield an ID
*/
package identity
