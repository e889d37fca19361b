package verify

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/startcommunity/startbot/src/forum"
)

func TestClassifyComments(t *testing.T) {
	tests := []struct {
		name     string
		comments []forum.Comment
		want     CommentClassification
	}{
		{
			name:     "no comments",
			comments: nil,
			want:     CommentClassification{},
		},
		{
			name:     "valid handle by the forum user",
			comments: []forum.Comment{{Author: "alice", Text: "  Alice#1234\n"}},
			want:     CommentClassification{MatchedHandle: "Alice#1234"},
		},
		{
			name:     "author match is case-insensitive",
			comments: []forum.Comment{{Author: " ALICE ", Text: "Alice#1234"}},
			want:     CommentClassification{MatchedHandle: "Alice#1234"},
		},
		{
			name: "first valid handle wins",
			comments: []forum.Comment{
				{Author: "alice", Text: "Alice#1234"},
				{Author: "alice", Text: "Alice#9999"},
			},
			want: CommentClassification{MatchedHandle: "Alice#1234"},
		},
		{
			name: "valid handle after an invalid one clears the invalid text",
			comments: []forum.Comment{
				{Author: "alice", Text: "not-a-handle"},
				{Author: "alice", Text: "Alice#1234"},
			},
			want: CommentClassification{MatchedHandle: "Alice#1234"},
		},
		{
			name: "first invalid text is kept",
			comments: []forum.Comment{
				{Author: "alice", Text: "not-a-handle"},
				{Author: "alice", Text: "also wrong"},
			},
			want: CommentClassification{InvalidHandleText: "not-a-handle"},
		},
		{
			name:     "empty text is absent, not invalid",
			comments: []forum.Comment{{Author: "alice", Text: "   "}},
			want:     CommentClassification{},
		},
		{
			name:     "comment by someone else only",
			comments: []forum.Comment{{Author: "bob", Text: "Alice#1234"}},
			want:     CommentClassification{},
		},
		{
			name:     "handle posted on a thread by another user",
			comments: []forum.Comment{{Author: "carl → alice", Text: "Alice#1234"}},
			want:     CommentClassification{MismatchedAuthor: "carl"},
		},
		{
			name:     "arrow with the forum user first names the other side",
			comments: []forum.Comment{{Author: "alice → carl", Text: "Alice#1234"}},
			want:     CommentClassification{MismatchedAuthor: "carl"},
		},
		{
			name:     "arrowed comment without a valid handle is ignored",
			comments: []forum.Comment{{Author: "carl → alice", Text: "hello"}},
			want:     CommentClassification{},
		},
		{
			name: "author mismatch dropped when the forum user commented",
			comments: []forum.Comment{
				{Author: "carl → alice", Text: "Alice#1234"},
				{Author: "alice", Text: "nope"},
			},
			want: CommentClassification{InvalidHandleText: "nope"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyComments("alice", tt.comments)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ClassifyComments() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
