// Package ledger records fetch outcomes in durable text files so repeated
// runs over the same library skip work already done.
//
// Three files live in the ledger directory: success.log, failed.log, and
// fallback.log. Each is pipe-delimited with a commented header, readable and
// editable by hand. A success supersedes earlier failed and fallback entries
// for the same folder; failed and fallback entries replace rather than
// duplicate. The directory is guarded by a file lock so concurrent runs
// cannot interleave writes.
package ledger
