package nav

import "github.com/yaklabco/astnav/pkg/document"

// Project maps a cursor to the range the host should highlight. A nil cursor
// projects to the zero range.
func Project(c *Cursor) document.Range {
	if c == nil || c.Node == nil {
		return document.Range{}
	}
	return c.Node.Range
}
