package verify

import (
	"strings"

	"github.com/startcommunity/startbot/src/forum"
	"github.com/startcommunity/startbot/src/handle"
)

// commentArrow separates the two names on a comment posted to someone
// else's profile, e.g. "carl → alice".
const commentArrow = "→"

// CommentClassification summarises what a profile's comments say about the
// forum user's Discord handle.
type CommentClassification struct {
	MatchedHandle     string
	InvalidHandleText string
	MismatchedAuthor  string
}

// ClassifyComments walks comments in document order. The first comment by
// forumUsername holding a valid handle wins; the other fields only explain a
// failure.
func ClassifyComments(forumUsername string, comments []forum.Comment) CommentClassification {
	var (
		out        CommentClassification
		sawAuthor  bool
		invalid    string
		hasInvalid bool
		mismatch   string
	)

	for _, c := range comments {
		text := strings.TrimSpace(c.Text)

		if handle.SameAuthor(c.Author, forumUsername) {
			sawAuthor = true
			switch handle.Classify(text) {
			case handle.Valid:
				out.MatchedHandle = text
				return out
			case handle.Invalid:
				if !hasInvalid {
					invalid, hasInvalid = text, true
				}
			}
			continue
		}

		if mismatch == "" && handle.IsValid(text) {
			mismatch = otherParty(c.Author, forumUsername)
		}
	}

	if hasInvalid {
		out.InvalidHandleText = invalid
	}
	if !sawAuthor {
		out.MismatchedAuthor = mismatch
	}
	return out
}

// otherParty returns the name on an arrowed author label that is not the
// profile owner. Labels without an arrow are not reassigned threads.
func otherParty(label, forumUsername string) string {
	parts := strings.SplitN(label, commentArrow, 2)
	if len(parts) != 2 {
		return ""
	}
	from, to := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if handle.SameAuthor(from, forumUsername) {
		return to
	}
	return from
}
