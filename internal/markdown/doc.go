// Package markdown renders CMS description fields to HTML with goldmark.
package markdown
