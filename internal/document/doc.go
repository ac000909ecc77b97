// Package document parses simulator result files.
//
// A result file is an XML tree with, somewhere below the root:
//   - executable_name, simulation_date, free_comment metadata
//   - one initial_configuration declaring modules; a parameter element
//     that contains a global_variable child is forwarded from a global
//   - repeated configuration blocks holding global/variable[@name] entries
//     and module sections of named parameter elements
//   - repeated result blocks holding module[@name]/status_out[@name]/value
//     entries, where a value's first attribute names its inner dimension
//
// Sections are located by element name anywhere in the tree. A missing
// initial_configuration makes the document malformed; missing metadata
// does not.
package document
