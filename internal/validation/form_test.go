package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommentForm_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		wantErr bool
		trimmed string
	}{
		{"Valid", "nice shot", false, "nice shot"},
		{"Trimmed", "  hi  ", false, "hi"},
		{"Empty", "", true, ""},
		{"Whitespace Only", " \n\t ", true, ""},
		{"Too Long", strings.Repeat("a", MaxCommentLength+1), true, ""},
		{"Exactly Max", strings.Repeat("é", MaxCommentLength), false, strings.Repeat("é", MaxCommentLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := CommentForm{Content: tt.content}
			errs := f.Validate()
			if tt.wantErr {
				assert.False(t, errs.Empty())
				assert.Contains(t, errs, "content")
			} else {
				assert.True(t, errs.Empty())
				assert.Equal(t, tt.trimmed, f.Content)
			}
		})
	}
}

func TestFieldErrors_Join(t *testing.T) {
	t.Parallel()
	errs := FieldErrors{}
	errs.Add("content", "content: required")
	errs.Add("author", "author: invalid")
	errs.Add("content", "content: too short")

	assert.Equal(t, "author: invalid\ncontent: required\ncontent: too short", errs.Join("\n"))
	assert.Equal(t, map[string]string{"author": "author: invalid", "content": "content: required"}, errs.First())
	assert.Equal(t, "", FieldErrors{}.Join("\n"))
}

func TestPostForm_Validate(t *testing.T) {
	t.Parallel()
	f := PostForm{Content: "  caption "}
	assert.True(t, f.Validate().Empty())
	assert.Equal(t, "caption", f.Content)

	long := PostForm{Content: strings.Repeat("x", MaxPostContentLength+1)}
	assert.False(t, long.Validate().Empty())
}
