// Package extract post-processes R_admin (IRRSEQ00) extract result buffers.
//
// Ownership boundary:
//   - bounds-checked, offset-based reads over an immutable result buffer
//   - the generic segment/field descriptor format (user, group, connection,
//     resource, data set)
//   - the fixed-frame options format (racf-options)
//   - the fixed-offset RRSF record (racf-rrsf)
//   - decoding of found-profile name lists returned by searches
//
// Every field name goes through keymap.Registry, so all three formats share
// the segment:field and experimental:field key conventions. A decode either
// returns a complete document or an error; partial documents never escape.
package extract
