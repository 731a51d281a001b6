package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/openscholar/paper-search-service/internal/domain"
)

const (
	// minTokenLength is the minimum token length for clustering; shorter
	// tokens are too generic to group on.
	minTokenLength = 4

	// maxTokensPerTitle caps how many leading tokens of a title participate.
	maxTokensPerTitle = 5

	// minClusterSize is the minimum number of papers sharing a token for
	// the token to form a cluster.
	minClusterSize = 2

	// maxClusters caps how many clusters a response carries.
	maxClusters = 5
)

// nonWordRegex splits titles into word tokens.
var nonWordRegex = regexp.MustCompile(`\W+`)

// ClusterPapers groups papers by shared title tokens. It is a deliberately
// cheap heuristic, not semantic clustering: no stemming and no stopword list
// beyond the token length cutoff.
//
// For each paper, the title is split on non-word characters, tokens shorter
// than four characters are dropped, and at most the first five tokens are
// kept. Tokens shared by at least two papers become clusters, largest first,
// capped at five.
func ClusterPapers(papers []*domain.Paper) []domain.Cluster {
	// Inverted index: token -> ids of papers whose title contains it.
	index := make(map[string][]string)
	// tokenOrder keeps first-seen order for deterministic tie-breaking.
	tokenOrder := make([]string, 0)

	for _, paper := range papers {
		seen := make(map[string]struct{})
		kept := 0
		for _, raw := range nonWordRegex.Split(paper.Title, -1) {
			if kept >= maxTokensPerTitle {
				break
			}
			token := strings.ToLower(raw)
			if len(token) < minTokenLength {
				continue
			}
			kept++
			if _, dup := seen[token]; dup {
				continue
			}
			seen[token] = struct{}{}

			if _, ok := index[token]; !ok {
				tokenOrder = append(tokenOrder, token)
			}
			index[token] = append(index[token], paper.ID)
		}
	}

	clusters := make([]domain.Cluster, 0)
	for _, token := range tokenOrder {
		ids := index[token]
		if len(ids) < minClusterSize {
			continue
		}
		clusters = append(clusters, domain.Cluster{
			Name:     capitalize(token),
			Count:    len(ids),
			PaperIDs: ids,
		})
	}

	// Largest first; first-seen order breaks ties.
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Count > clusters[j].Count
	})

	if len(clusters) > maxClusters {
		clusters = clusters[:maxClusters]
	}
	return clusters
}

// capitalize upper-cases the first letter of an ASCII-lowered token.
func capitalize(token string) string {
	if token == "" {
		return token
	}
	return strings.ToUpper(token[:1]) + token[1:]
}
