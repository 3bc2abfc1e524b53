// Command artfetch downloads cover art for music release folders from the
// iTunes catalog.
package main
