/*
Package validation implements the field validation engine.

Fields declare an ordered list of validator specs (a registry name, a named
function, or a full {type, fn, arguments} record). Specs are resolved once,
at compile time, into domain.Rule values; all malformed configuration
(unknown names, unnamed functions) fails there with a ConfigurationError.

At request time, Validate applies a field's rules to a value (or each value
of a sequence) and returns the first failure as a domain.ValidationError, or
nil when valid. IsAllowedDependent gates fields whose applicability depends
on another field's current value.
*/
package validation
