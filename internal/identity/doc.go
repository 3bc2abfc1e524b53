// Package identity derives (artist, album) release identities from the
// sources available on disk.
//
// Three derivations exist, in the precedence the resolver applies them:
// parsing an "Artist - Album" folder name (with audio-quality and format
// noise stripped), parsing the parent folder name when the child looks like
// a disc subfolder ("CD1", "Disc 2"), and reading audio tags from the first
// audio file in the folder. Tag values are normalized through a flattening
// adapter because real libraries carry multi-valued and separator-embedded
// fields.
package identity
