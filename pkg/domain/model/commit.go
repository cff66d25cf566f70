package model

import (
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ci-preview/pkg/domain/types"
)

// SkipMarkers suppress commit caching when found in a head commit message
var SkipMarkers = []string{
	"[skip ci]",
	"[ci skip]",
	"[no ci]",
	"[skip actions]",
	"[actions skip]",
}

// HasSkipMarker reports whether message contains any skip marker (case-sensitive)
func HasSkipMarker(message string) bool {
	for _, marker := range SkipMarkers {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}

// CommitRecord is a commit received in a push event
type CommitRecord struct {
	SHA            types.CommitSHA `json:"sha" firestore:"sha"`
	Message        string          `json:"message" firestore:"message"`
	AuthorUsername string          `json:"author_username" firestore:"author_username"`
	URL            string          `json:"url" firestore:"url"`
}

// Title returns the first line of the commit message
func (x CommitRecord) Title() string {
	title, _, _ := strings.Cut(x.Message, "\n")
	return strings.TrimSpace(title)
}

// CommitsFromPush converts push payload commits in payload order
func CommitsFromPush(event *github.PushEvent) []CommitRecord {
	commits := make([]CommitRecord, 0, len(event.Commits))
	for _, c := range event.Commits {
		if c == nil {
			continue
		}

		username := c.GetAuthor().GetLogin()
		if username == "" {
			username = c.GetCommitter().GetLogin()
		}

		commits = append(commits, CommitRecord{
			SHA:            types.CommitSHA(c.GetID()),
			Message:        c.GetMessage(),
			AuthorUsername: username,
			URL:            c.GetURL(),
		})
	}
	return commits
}
