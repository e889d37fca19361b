// Package forum reads Start forum profile pages.
package forum

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	membershipTitle = "Oculus Start"
	membershipLabel = "Oculus Start Member"
	notFoundPhrase  = "user not found"

	selSplash     = "div.Center.SplashInfo"
	selRank       = "span.Rank"
	selPhoto      = "img.ProfilePhotoLarge"
	selActivity   = "div.ItemContent.Activity"
	selTitle      = "div.Title"
	selExcerpt    = "div.Excerpt"
	pictureScheme = "https:"
)

// ErrParse is returned by Parse when the markup cannot be read at all.
var ErrParse = errors.New("forum: unreadable profile page")

// Comment is one activity-feed entry on a profile.
type Comment struct {
	Author string
	Text   string
}

// ProfileSnapshot holds the fields read from one fetch of a profile page.
type ProfileSnapshot struct {
	Username          string
	Exists            bool
	IsProgramMember   bool
	ProfilePictureURL string
	Comments          []Comment
}

// Parse reads a profile page. Missing elements leave fields empty; only a
// failing reader produces an error.
func Parse(r io.Reader, username string) (ProfileSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return ProfileSnapshot{Username: username}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return extractDocument(doc, username), nil
}

// Extract is Parse for callers that already hold the full page. Unreadable
// input yields a snapshot with Exists false.
func Extract(r io.Reader, username string) ProfileSnapshot {
	snap, _ := Parse(r, username)
	return snap
}

// ExtractString extracts from markup held in memory.
func ExtractString(markup, username string) ProfileSnapshot {
	return Extract(strings.NewReader(markup), username)
}

func extractDocument(doc *goquery.Document, username string) ProfileSnapshot {
	snap := ProfileSnapshot{Username: username}

	// A page exists unless the forum rendered its not-found splash.
	notFound := false
	doc.Find(selSplash).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(s.Text()), notFoundPhrase) {
			notFound = true
			return false
		}
		return true
	})
	if notFound {
		return snap
	}
	snap.Exists = true

	snap.IsProgramMember = hasMembershipBadge(doc)
	if !snap.IsProgramMember {
		return snap
	}

	if src, ok := doc.Find(selPhoto).First().Attr("src"); ok {
		snap.ProfilePictureURL = NormalizePictureURL(src)
	}
	snap.Comments = extractComments(doc)
	return snap
}

func hasMembershipBadge(doc *goquery.Document) bool {
	found := false
	doc.Find(selRank).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if title, ok := s.Attr("title"); ok && strings.TrimSpace(title) == membershipTitle {
			found = true
		} else if strings.TrimSpace(s.Text()) == membershipLabel {
			found = true
		}
		return !found
	})
	return found
}

func extractComments(doc *goquery.Document) []Comment {
	var comments []Comment
	doc.Find(selActivity).Each(func(_ int, item *goquery.Selection) {
		author := item.ChildrenFiltered(selTitle).First()
		excerpt := item.ChildrenFiltered(selExcerpt).First()
		if author.Length() == 0 || excerpt.Length() == 0 {
			return
		}
		comments = append(comments, Comment{
			Author: author.Text(),
			Text:   excerpt.Text(),
		})
	})
	return comments
}

// NormalizePictureURL rewrites protocol-relative URLs to https. Default
// avatars are served that way.
func NormalizePictureURL(src string) string {
	src = strings.TrimSpace(src)
	if strings.HasPrefix(src, "//") {
		return pictureScheme + src
	}
	return src
}
