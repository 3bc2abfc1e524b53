// Package batch drives artwork fetching across release folders.
//
// For each folder it derives candidate identities (folder name, parent
// folder name for disc subfolders, audio tags), looks them up in the
// catalog, resolves the best match, downloads the artwork, and records the
// outcome in the ledger. Runs cover a directory of releases or an explicit
// list file; skip gates keep already-handled folders from being refetched
// unless the run asks for retries.
package batch
