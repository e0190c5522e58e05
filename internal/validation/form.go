package validation

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// FieldErrors maps a form field to its validation messages.
type FieldErrors map[string][]string

// Add records msg against field.
func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Empty reports whether no field has errors.
func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

// Join flattens every message into one string, fields in name order.
func (e FieldErrors) Join(sep string) string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var msgs []string
	for _, f := range fields {
		msgs = append(msgs, e[f]...)
	}
	return strings.Join(msgs, sep)
}

// First returns the first message of each field.
func (e FieldErrors) First() map[string]string {
	out := make(map[string]string, len(e))
	for f, msgs := range e {
		if len(msgs) > 0 {
			out[f] = msgs[0]
		}
	}
	return out
}

// MaxCommentLength bounds comment bodies.
const MaxCommentLength = 2000

// CommentForm is the bound input of comment create and modify.
type CommentForm struct {
	Content string `json:"content" form:"content"`
}

// Validate trims the content in place and reports per-field errors.
func (f *CommentForm) Validate() FieldErrors {
	errs := FieldErrors{}
	f.Content = strings.TrimSpace(f.Content)
	switch {
	case f.Content == "":
		errs.Add("content", "content: This field is required.")
	case utf8.RuneCountInString(f.Content) > MaxCommentLength:
		errs.Add("content", "content: Ensure this value has at most 2000 characters.")
	}
	return errs
}

// PostForm is the bound input of post create and update.
type PostForm struct {
	Content string `json:"content" form:"content"`
}

// MaxPostContentLength bounds post captions.
const MaxPostContentLength = 5000

// Validate trims the content in place and reports per-field errors.
func (f *PostForm) Validate() FieldErrors {
	errs := FieldErrors{}
	f.Content = strings.TrimSpace(f.Content)
	if utf8.RuneCountInString(f.Content) > MaxPostContentLength {
		errs.Add("content", "content: Ensure this value has at most 5000 characters.")
	}
	return errs
}
