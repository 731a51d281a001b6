package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openscholar/paper-search-service/internal/domain"
)

func TestClusterPapersSharedToken(t *testing.T) {
	papers := []*domain.Paper{
		paper("1", "Neural Machine Translation", 0),
		paper("2", "Neural Architecture Search", 0),
		paper("3", "Bayesian Optimization Methods", 0),
	}

	clusters := ClusterPapers(papers)
	require.Len(t, clusters, 1, "only tokens shared by two papers form clusters")

	assert.Equal(t, "Neural", clusters[0].Name)
	assert.Equal(t, 2, clusters[0].Count)
	assert.Equal(t, []string{"1", "2"}, clusters[0].PaperIDs)
}

func TestClusterPapersSingleSharedTokenAcrossAll(t *testing.T) {
	papers := make([]*domain.Paper, 0, 10)
	for i := 0; i < 10; i++ {
		papers = append(papers, paper(
			fmt.Sprintf("p%d", i),
			fmt.Sprintf("neural q%dx w%dy", i, i), // only "neural" repeats and exceeds 3 chars
			0,
		))
	}

	clusters := ClusterPapers(papers)
	require.Len(t, clusters, 1)
	assert.Equal(t, "Neural", clusters[0].Name)
	assert.Equal(t, 10, clusters[0].Count)
}

func TestClusterPapersShortTokensIgnored(t *testing.T) {
	papers := []*domain.Paper{
		paper("1", "The Art of War", 0),
		paper("2", "The Art of Go", 0),
	}

	// "The", "Art", "War" are all three characters or fewer.
	clusters := ClusterPapers(papers)
	assert.Empty(t, clusters)
}

func TestClusterPapersLargestFirstCappedAtFive(t *testing.T) {
	papers := make([]*domain.Paper, 0)
	// "alpha" shared by 4 papers, "gamma" by 3, then four more tokens shared
	// by 2 papers each: six candidate clusters total. Filler tokens stay
	// under four characters so they never cluster.
	for i := 0; i < 4; i++ {
		papers = append(papers, paper(fmt.Sprintf("a%d", i), fmt.Sprintf("alpha n%dx", i), 0))
	}
	for i := 0; i < 3; i++ {
		papers = append(papers, paper(fmt.Sprintf("g%d", i), fmt.Sprintf("gamma n%dy", i), 0))
	}
	for _, token := range []string{"delta", "omega", "sigma", "kappa"} {
		papers = append(papers,
			paper(token+"-1", token+" one", 0),
			paper(token+"-2", token+" two", 0),
		)
	}

	clusters := ClusterPapers(papers)
	require.Len(t, clusters, 5, "at most five clusters")
	assert.Equal(t, "Alpha", clusters[0].Name)
	assert.Equal(t, 4, clusters[0].Count)
	assert.Equal(t, "Gamma", clusters[1].Name)
	assert.Equal(t, 3, clusters[1].Count)
	assert.Equal(t, "Delta", clusters[2].Name, "ties keep first-seen token order")
	assert.Equal(t, "Omega", clusters[3].Name)
	assert.Equal(t, "Sigma", clusters[4].Name)
}

func TestClusterPapersFirstFiveTokensOnly(t *testing.T) {
	papers := []*domain.Paper{
		paper("1", "first second third fourth fifth shared", 0),
		paper("2", "other words here entirely shared distinct", 0),
	}

	// "shared" is the sixth qualifying token of the first title, so it does
	// not participate for paper 1.
	clusters := ClusterPapers(papers)
	assert.Empty(t, clusters)
}

func TestClusterPapersRepeatedTokenInOneTitleCountsOnce(t *testing.T) {
	papers := []*domain.Paper{
		paper("1", "graph graph methods", 0),
		paper("2", "graph theory intro", 0),
	}

	clusters := ClusterPapers(papers)
	require.Len(t, clusters, 1)
	assert.Equal(t, "Graph", clusters[0].Name)
	assert.Equal(t, 2, clusters[0].Count, "a token counts once per paper")
}

func TestClusterPapersEmpty(t *testing.T) {
	assert.Empty(t, ClusterPapers(nil))
}
