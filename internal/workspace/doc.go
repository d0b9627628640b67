// Package workspace confines all request-supplied paths to the shared folder.
//
// Every input file, cutlist, and output folder named by an API request is
// resolved through a Workspace so the daemon never reads or writes outside
// its shared root, no matter what the request contains.
package workspace
