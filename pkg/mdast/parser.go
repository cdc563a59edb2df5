// Package mdast provides the core Markdown AST representation.
//
// Note: The Parser interface has been moved to the lint package (lint.Parser)
// following the gobible principle of defining interfaces in the consumer package.
// Parser implementations should implement lint.Parser instead.
package mdast
