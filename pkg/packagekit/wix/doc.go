/*
Package wix generates WiX include fragments from a staged directory
tree.

It is a small, hand-run relative of wix's own `heat` harvester. Where
heat emits a complete fragment with its own naming, this package emits
two `.wxi` include files that a hand-maintained product wxs pulls in:

 1. a directories fragment, with a Directory block per directory and a
    Component (wrapping a single File) per file, nested to match the
    tree on disk.
 2. a features fragment, with a ComponentRef for every Component in
    (1), in the same order.

Background and Theory Of Operations

The staging tree is scanned into an explicit Dir tree first. The
fragment writer then walks it depth first, opening a Directory when it
is visited and closing it once every subdirectory recorded at visit
time has been consumed. Output is produced with encoding/xml tokens, so
an unbalanced block is an encoder error rather than a silently broken
file.

Identifiers are derived from file and directory names (see Sanitize)
and suffixed with the pre-order step of the directory being visited.
This keeps two `readme.txt` files in different directories from
colliding.

Component GUIDs are random and issued fresh on every run. wix uses the
component GUID to track a file across upgrades, so the operator is
expected to check the output into version control and keep any GUID
that has already shipped.

References

 1. http://wixtoolset.org/documentation/manual/v3/xsd/wix/component.html
 2. http://wixtoolset.org/documentation/manual/v3/overview/preprocessor.html
*/
package wix
