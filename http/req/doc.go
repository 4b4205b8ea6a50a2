/*
Package req decodes and validates what an HTTP request carries.

A [*Parser] fills a pointer to a struct from a JSON body, from form values
or from query parameters.
JSON keys are matched against the "json" struct tag,
form and query values against the "schema" struct tag.
Afterwards, the "validate" struct tags are checked;
the "enum" rule accepts any valid [gravepaint.Enumerable].

Every failure caused by the request wraps [gravepaint.ErrNotValid],
with [ValidationErrors] detailing which fields broke which rule.
Failures caused by the calling code, like passing a non-pointer,
wrap [gravepaint.ErrBadConfig].
*/
package req
