// Package cutlist parses the plain-text cut description format and owns the
// naming rules applied to cut outputs and job titles.
//
// A cutlist is a line-oriented document: one cut per line as
// "START END OUTPUT_NAME", with blank lines and #-comments ignored. Lines
// that do not carry exactly three fields are skipped rather than rejected so
// a stray annotation never aborts a batch. Timecodes are kept verbatim for
// ffmpeg and validated separately just before each cut runs.
package cutlist
