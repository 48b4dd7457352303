package service

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/itchan-dev/studyboard/internal/domain"
)

const (
	minAnswerLen   = 20
	minAnswerWords = 5
	csvHeader      = "Student,Answers Posted,Peers Helped,Flagged/Unreasonable Answers\n"
)

// trivial acknowledgements that never count as an answer
var trivialAnswers = []string{"yes", "thanks", "ok", "no", "maybe", "i don't know"}

func (b *Board) IsAnswerReasonable(reply domain.Reply) bool {
	return IsAnswerReasonable(reply.Content)
}

// IsAnswerReasonable needs at least 20 characters and 5 words after trimming,
// and rejects the trivial acknowledgements.
func IsAnswerReasonable(content string) bool {
	c := strings.ToLower(strings.TrimSpace(content))
	if len([]rune(c)) < minAnswerLen {
		return false
	}
	if len(strings.Fields(c)) < minAnswerWords {
		return false
	}
	return !slices.Contains(trivialAnswers, c)
}

// CalculateStudentHelpedPeers maps each reply author to the sorted distinct
// authors of the posts they answered. Replies to one's own post do not count,
// and neither do replies whose parent no longer exists.
func (b *Board) CalculateStudentHelpedPeers() map[domain.Username][]domain.Username {
	helped := make(map[domain.Username]map[domain.Username]struct{})
	for _, r := range b.allReplies() {
		parent, ok := b.storage.FindById(r.ParentPostId)
		if !ok || parent.Author() == r.Author {
			continue
		}
		peers, ok := helped[r.Author]
		if !ok {
			peers = make(map[domain.Username]struct{})
			helped[r.Author] = peers
		}
		peers[parent.Author()] = struct{}{}
	}

	out := make(map[domain.Username][]domain.Username, len(helped))
	for student, peers := range helped {
		out[student] = slices.Sorted(maps.Keys(peers))
	}
	return out
}

// StudentsWhoHelpedAtLeast returns, sorted, the students who helped minPeers or more distinct peers.
func (b *Board) StudentsWhoHelpedAtLeast(minPeers int) []domain.Username {
	var out []domain.Username
	for student, peers := range b.CalculateStudentHelpedPeers() {
		if len(peers) >= minPeers {
			out = append(out, student)
		}
	}
	slices.Sort(out)
	return out
}

// ExportGradingSummaryCSV renders one row per student who replied or helped a peer.
// Rows are sorted by student name, lines end with "\n" and fields are never quoted.
func (b *Board) ExportGradingSummaryCSV() string {
	posted := make(map[domain.Username]int)
	unreasonable := make(map[domain.Username]int)
	for _, r := range b.allReplies() {
		posted[r.Author]++
		if !IsAnswerReasonable(r.Content) {
			unreasonable[r.Author]++
		}
	}
	helped := b.CalculateStudentHelpedPeers()

	students := make(map[domain.Username]struct{}, len(posted))
	for s := range posted {
		students[s] = struct{}{}
	}
	for s := range helped {
		students[s] = struct{}{}
	}

	var sb strings.Builder
	sb.WriteString(csvHeader)
	for _, s := range slices.Sorted(maps.Keys(students)) {
		fmt.Fprintf(&sb, "%s,%d,%d,%d\n", s, posted[s], len(helped[s]), unreasonable[s])
	}
	return sb.String()
}
